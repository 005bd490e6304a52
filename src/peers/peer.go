package peers

import (
	"github.com/mosaicnetworks/vault/src/common"
)

// Peer is a member of a section.
type Peer struct {
	NetAddr   string
	PubKeyHex string
	Moniker   string
}

// NewPeer ...
func NewPeer(pubKeyHex, netAddr, moniker string) *Peer {
	return &Peer{
		PubKeyHex: pubKeyHex,
		NetAddr:   netAddr,
		Moniker:   moniker,
	}
}

// PubKeyBytes decodes PubKeyHex. It returns nil if the hex is malformed.
func (p *Peer) PubKeyBytes() []byte {
	b, _ := common.DecodeFromString(p.PubKeyHex)
	return b
}

// Name is the 32-bit name of the peer in the network's address space.
func (p *Peer) Name() uint32 {
	return common.Hash32(p.PubKeyBytes())
}
