package routing

import (
	"crypto/ecdsa"

	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/peers"
)

// Network is one node's view of a Section. It implements node.Network.
type Network struct {
	section *Section
	self    *peers.Peer
	key     *ecdsa.PrivateKey
}

var _ node.Network = (*Network)(nil)

// PublicKey ...
func (n *Network) PublicKey() []byte {
	return keys.FromPublicKey(&n.key.PublicKey)
}

// Snapshot ...
func (n *Network) Snapshot() node.Snapshot {
	return n.section.Snapshot()
}

// ElderIdentity binds the node's share of the key in k.
func (n *Network) ElderIdentity(k peers.ElderKnowledge) (peers.ElderIdentity, error) {
	secret, err := n.section.secret(k)
	if err != nil {
		return peers.ElderIdentity{}, err
	}
	return peers.NewElderIdentity(k, secret, n.self)
}

// GenesisElderKnowledge ...
func (n *Network) GenesisElderKnowledge() (peers.ElderKnowledge, error) {
	return n.section.GenesisKnowledge(n.self)
}

// SignAsElder ...
func (n *Network) SignAsElder(identity peers.ElderIdentity, payload []byte) (threshold.SignatureShare, error) {
	return identity.SignShare(payload)
}

// Adults ...
func (n *Network) Adults() []*peers.Peer {
	return n.section.Adults()
}

// Lookup ...
func (n *Network) Lookup(name uint32) (*peers.Peer, bool) {
	return n.section.Lookup(name)
}
