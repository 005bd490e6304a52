package peers

import (
	"fmt"

	"github.com/mosaicnetworks/vault/src/crypto/threshold"
)

// ElderKnowledge is what the routing layer tells a node about the section it
// became an elder of.
type ElderKnowledge struct {
	Prefix Prefix
	Elders *PeerSet
	KeySet *threshold.PublicKeySet
	// KeyIndex is this node's share index in KeySet.
	KeyIndex int
	// SectionChain lists the section keys, oldest first. The last entry is
	// the current key.
	SectionChain []threshold.PublicKey
}

// SectionKey ...
func (k ElderKnowledge) SectionKey() threshold.PublicKey {
	return k.KeySet.PublicKey()
}

// ElderIdentity is a node's role within the section's threshold scheme.
type ElderIdentity struct {
	prefix        Prefix
	elders        *PeerSet
	keySet        *threshold.PublicKeySet
	keyIndex      int
	chain         []threshold.PublicKey
	secret        *threshold.SecretKeyShare
	nodePublicKey []byte
	nodeName      uint32
	nodeMoniker   string
}

// NewElderIdentity binds the node's secret key share to the section knowledge.
func NewElderIdentity(k ElderKnowledge, secret *threshold.SecretKeyShare, node *Peer) (ElderIdentity, error) {
	if k.KeySet == nil || secret == nil {
		return ElderIdentity{}, fmt.Errorf("missing key material")
	}
	if secret.Index() != k.KeyIndex {
		return ElderIdentity{}, fmt.Errorf("secret share %d does not match key index %d", secret.Index(), k.KeyIndex)
	}
	if k.Elders == nil || !k.Elders.Contains(node.PubKeyHex) {
		return ElderIdentity{}, fmt.Errorf("%s is not an elder of %s", node.PubKeyHex, k.Prefix)
	}

	chain := make([]threshold.PublicKey, len(k.SectionChain))
	copy(chain, k.SectionChain)

	return ElderIdentity{
		prefix:        k.Prefix,
		elders:        k.Elders,
		keySet:        k.KeySet,
		keyIndex:      k.KeyIndex,
		chain:         chain,
		secret:        secret,
		nodePublicKey: node.PubKeyBytes(),
		nodeName:      node.Name(),
		nodeMoniker:   node.Moniker,
	}, nil
}

// Prefix ...
func (e ElderIdentity) Prefix() Prefix { return e.prefix }

// Elders ...
func (e ElderIdentity) Elders() *PeerSet { return e.elders }

// KeyIndex ...
func (e ElderIdentity) KeyIndex() int { return e.keyIndex }

// PublicKeySet ...
func (e ElderIdentity) PublicKeySet() *threshold.PublicKeySet { return e.keySet }

// PublicKeyShare returns this elder's public key share.
func (e ElderIdentity) PublicKeyShare() threshold.PublicKey {
	return e.keySet.PublicKeyShare(e.keyIndex)
}

// SectionPublicKey ...
func (e ElderIdentity) SectionPublicKey() threshold.PublicKey {
	return e.keySet.PublicKey()
}

// SectionChain returns a copy of the section key history.
func (e ElderIdentity) SectionChain() []threshold.PublicKey {
	res := make([]threshold.PublicKey, len(e.chain))
	copy(res, e.chain)
	return res
}

// NodeName ...
func (e ElderIdentity) NodeName() uint32 { return e.nodeName }

// NodePublicKey ...
func (e ElderIdentity) NodePublicKey() []byte { return e.nodePublicKey }

// NodeMoniker ...
func (e ElderIdentity) NodeMoniker() string { return e.nodeMoniker }

// IsZero reports whether the identity was never built.
func (e ElderIdentity) IsZero() bool {
	return e.keySet == nil
}

// SignShare produces this elder's signature share over msg.
func (e ElderIdentity) SignShare(msg []byte) (threshold.SignatureShare, error) {
	return e.secret.Sign(msg)
}
