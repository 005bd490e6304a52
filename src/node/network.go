package node

import (
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/peers"
)

// Snapshot is a consistent view of the node's section.
type Snapshot struct {
	Prefix          peers.Prefix
	Elders          *peers.PeerSet
	SectionChainLen int
}

// Network is what the node knows about the network it belongs to. It is
// implemented by the routing layer.
type Network interface {
	// PublicKey is the node's own public key.
	PublicKey() []byte

	// Snapshot reads the prefix, elders and section chain length at once.
	Snapshot() Snapshot

	// ElderIdentity binds the node's secret key share to k.
	ElderIdentity(k peers.ElderKnowledge) (peers.ElderIdentity, error)

	// GenesisElderKnowledge is the knowledge of the designated genesis node,
	// which becomes the only elder of the first section.
	GenesisElderKnowledge() (peers.ElderKnowledge, error)

	// SignAsElder signs payload with the key share of identity.
	SignAsElder(identity peers.ElderIdentity, payload []byte) (threshold.SignatureShare, error)

	// Adults lists the adults of the node's section.
	Adults() []*peers.Peer

	// Lookup resolves a node name.
	Lookup(name uint32) (*peers.Peer, bool)
}
