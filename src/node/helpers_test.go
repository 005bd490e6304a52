package node

import (
	"crypto/ecdsa"
	"sync"
	"testing"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/stretchr/testify/require"
)

// testSection is an in-test network: one section whose elders are promoted in
// order, each taking the next share of a key set dealt upfront.
type testSection struct {
	sync.Mutex

	prefix  peers.Prefix
	keys    *threshold.PublicKeySet
	chain   []threshold.PublicKey
	secrets map[string][]*threshold.SecretKeyShare
	elders  []*peers.Peer
	adults  []*peers.Peer
	nodes   map[uint32]*peers.Peer
}

func newTestSection(t testing.TB, prefix string) *testSection {
	p, err := peers.ParsePrefix(prefix)
	require.NoError(t, err)

	pks, secrets, err := threshold.GenerateKeySet(peers.ThresholdFor(5), 5)
	require.NoError(t, err)

	return &testSection{
		prefix:  p,
		keys:    pks,
		chain:   []threshold.PublicKey{pks.PublicKey()},
		secrets: map[string][]*threshold.SecretKeyShare{pks.PublicKey().Hex(): secrets},
		nodes:   make(map[uint32]*peers.Peer),
	}
}

type testNode struct {
	key  *ecdsa.PrivateKey
	peer *peers.Peer
}

func (s *testSection) newNode(t testing.TB, addr string) testNode {
	key, err := keys.GenerateECDSAKey()
	require.NoError(t, err)

	peer := peers.NewPeer(keys.PublicKeyHex(&key.PublicKey), addr, "")

	s.Lock()
	defer s.Unlock()
	s.nodes[peer.Name()] = peer

	return testNode{key: key, peer: peer}
}

func (s *testSection) addAdult(p *peers.Peer) {
	s.Lock()
	defer s.Unlock()
	s.adults = append(s.adults, p)
}

// promote makes p the next elder and returns its knowledge.
func (s *testSection) promote(p *peers.Peer) peers.ElderKnowledge {
	s.Lock()
	defer s.Unlock()

	s.elders = append(s.elders, p)

	return peers.ElderKnowledge{
		Prefix:       s.prefix,
		Elders:       peers.NewPeerSet(s.elders),
		KeySet:       s.keys,
		KeyIndex:     len(s.elders) - 1,
		SectionChain: s.chain,
	}
}

// retire removes p from the elders.
func (s *testSection) retire(p *peers.Peer) {
	s.Lock()
	defer s.Unlock()

	var elders []*peers.Peer
	for _, e := range s.elders {
		if e.PubKeyHex != p.PubKeyHex {
			elders = append(elders, e)
		}
	}
	s.elders = elders
}

// ageChain extends the section chain by n entries without changing the key.
func (s *testSection) ageChain(n int) {
	s.Lock()
	defer s.Unlock()

	for i := 0; i < n; i++ {
		s.chain = append(s.chain, s.keys.PublicKey())
	}
}

// sign produces the share of elder i over msg.
func (s *testSection) sign(t testing.TB, i int, msg []byte) threshold.SignatureShare {
	share, err := s.secrets[s.keys.PublicKey().Hex()][i].Sign(msg)
	require.NoError(t, err)
	return share
}

// rekey deals a new key set for the current elders under prefix and returns
// the knowledge of elder p.
func (s *testSection) rekey(t testing.TB, prefix string, p *peers.Peer) peers.ElderKnowledge {
	s.Lock()
	defer s.Unlock()

	newPrefix, err := peers.ParsePrefix(prefix)
	require.NoError(t, err)

	pks, secrets, err := threshold.GenerateKeySet(peers.ThresholdFor(len(s.elders)), len(s.elders))
	require.NoError(t, err)

	s.secrets[pks.PublicKey().Hex()] = secrets

	index := 0
	for i, e := range s.elders {
		if e.PubKeyHex == p.PubKeyHex {
			index = i
		}
	}

	return peers.ElderKnowledge{
		Prefix:       newPrefix,
		Elders:       peers.NewPeerSet(s.elders),
		KeySet:       pks,
		KeyIndex:     index,
		SectionChain: append(append([]threshold.PublicKey{}, s.chain...), pks.PublicKey()),
	}
}

// testNetwork is the view of the section from one node.
type testNetwork struct {
	section *testSection
	node    testNode
}

func (n *testNetwork) PublicKey() []byte {
	return keys.FromPublicKey(&n.node.key.PublicKey)
}

func (n *testNetwork) Snapshot() Snapshot {
	n.section.Lock()
	defer n.section.Unlock()

	return Snapshot{
		Prefix:          n.section.prefix,
		Elders:          peers.NewPeerSet(n.section.elders),
		SectionChainLen: len(n.section.chain),
	}
}

func (n *testNetwork) ElderIdentity(k peers.ElderKnowledge) (peers.ElderIdentity, error) {
	n.section.Lock()
	secrets := n.section.secrets[k.KeySet.PublicKey().Hex()]
	n.section.Unlock()

	return peers.NewElderIdentity(k, secrets[k.KeyIndex], n.node.peer)
}

func (n *testNetwork) GenesisElderKnowledge() (peers.ElderKnowledge, error) {
	pks, secrets, err := threshold.GenerateKeySet(0, 1)
	if err != nil {
		return peers.ElderKnowledge{}, err
	}

	n.section.Lock()
	defer n.section.Unlock()

	n.section.secrets[pks.PublicKey().Hex()] = secrets

	return peers.ElderKnowledge{
		Elders:       peers.NewPeerSet([]*peers.Peer{n.node.peer}),
		KeySet:       pks,
		SectionChain: []threshold.PublicKey{pks.PublicKey()},
	}, nil
}

func (n *testNetwork) SignAsElder(identity peers.ElderIdentity, payload []byte) (threshold.SignatureShare, error) {
	return identity.SignShare(payload)
}

func (n *testNetwork) Adults() []*peers.Peer {
	n.section.Lock()
	defer n.section.Unlock()
	return append([]*peers.Peer{}, n.section.adults...)
}

func (n *testNetwork) Lookup(name uint32) (*peers.Peer, bool) {
	n.section.Lock()
	defer n.section.Unlock()
	p, ok := n.section.nodes[name]
	return p, ok
}

var testRewardKey = token.PublicKey("reward")

func newTestDuties(t testing.TB, section *testSection, node testNode, genesisNode bool) *NodeDuties {
	info := NodeInfo{
		Genesis:     genesisNode,
		RewardKey:   testRewardKey,
		MaxCapacity: 1000,
	}
	network := &testNetwork{section: section, node: node}
	return NewNodeDuties(info, network, ledger.NewInmemStore(), cm.NewTestEntry(t, cm.TestLogLevel))
}
