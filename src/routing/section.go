// Package routing is an in-process stand-in for the routing layer. A Section
// deals the section key, promotes elders and answers the questions a node
// asks about the network.
package routing

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSectionFull is returned when every key share was handed out.
	ErrSectionFull = errors.New("section has all its elders")
	// ErrUnknownPeer is returned for peers that did not join the section.
	ErrUnknownPeer = errors.New("peer is not a member of the section")
	// ErrUnknownKey is returned when no share was dealt for a section key.
	ErrUnknownKey = errors.New("no key shares for section key")
)

// Section holds the membership and the key history of one section. The key
// set is dealt upfront for size elders, which are promoted one at a time.
type Section struct {
	sync.RWMutex

	prefix  peers.Prefix
	size    int
	keys    *threshold.PublicKeySet
	secrets map[string][]*threshold.SecretKeyShare
	chain   []threshold.PublicKey
	elders  []*peers.Peer
	members map[uint32]*peers.Peer

	logger *logrus.Entry
}

// NewSection deals the key of a section of size elders.
func NewSection(prefix peers.Prefix, size int, logger *logrus.Entry) (*Section, error) {
	pks, secrets, err := threshold.GenerateKeySet(peers.ThresholdFor(size), size)
	if err != nil {
		return nil, err
	}

	return &Section{
		prefix:  prefix,
		size:    size,
		keys:    pks,
		secrets: map[string][]*threshold.SecretKeyShare{pks.PublicKey().Hex(): secrets},
		chain:   []threshold.PublicKey{pks.PublicKey()},
		members: make(map[uint32]*peers.Peer),
		logger:  logger.WithField("prefix", prefix.String()),
	}, nil
}

// Join adds p to the section as an adult.
func (s *Section) Join(p *peers.Peer) {
	s.Lock()
	defer s.Unlock()

	s.members[p.Name()] = p

	s.logger.WithFields(logrus.Fields{
		"name":    p.Name(),
		"moniker": p.Moniker,
	}).Debug("Peer joined")
}

// PromoteElder makes p the next elder and returns what p needs to know to
// act as one. Promoting an elder again returns its current knowledge.
func (s *Section) PromoteElder(p *peers.Peer) (peers.ElderKnowledge, error) {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.members[p.Name()]; !ok {
		return peers.ElderKnowledge{}, ErrUnknownPeer
	}

	if i := s.elderIndex(p); i >= 0 {
		return s.knowledge(i), nil
	}

	if len(s.elders) >= s.keys.Size() {
		return peers.ElderKnowledge{}, ErrSectionFull
	}

	s.elders = append(s.elders, p)

	s.logger.WithFields(logrus.Fields{
		"name":   p.Name(),
		"elders": len(s.elders),
	}).Info("Promoted elder")

	return s.knowledge(len(s.elders) - 1), nil
}

// Rekey deals a new section key for the current elders, under prefix, and
// returns the knowledge of every elder by name. The new key is appended to
// the section chain.
func (s *Section) Rekey(prefix peers.Prefix) (map[uint32]peers.ElderKnowledge, error) {
	s.Lock()
	defer s.Unlock()

	if len(s.elders) == 0 {
		return nil, fmt.Errorf("rekeying section %s: no elders", s.prefix)
	}

	pks, secrets, err := threshold.GenerateKeySet(peers.ThresholdFor(len(s.elders)), len(s.elders))
	if err != nil {
		return nil, err
	}

	s.keys = pks
	s.secrets[pks.PublicKey().Hex()] = secrets
	s.chain = append(s.chain, pks.PublicKey())
	s.prefix = prefix

	res := make(map[uint32]peers.ElderKnowledge, len(s.elders))
	for i, e := range s.elders {
		res[e.Name()] = s.knowledge(i)
	}

	s.logger.WithFields(logrus.Fields{
		"new_prefix": prefix.String(),
		"key":        pks.PublicKey().Hex(),
		"chain":      len(s.chain),
	}).Info("Rekeyed section")

	return res, nil
}

// GenesisKnowledge turns the section into a one-elder section led by p,
// under a freshly dealt key.
func (s *Section) GenesisKnowledge(p *peers.Peer) (peers.ElderKnowledge, error) {
	pks, secrets, err := threshold.GenerateKeySet(0, 1)
	if err != nil {
		return peers.ElderKnowledge{}, err
	}

	s.Lock()
	defer s.Unlock()

	s.members[p.Name()] = p
	s.keys = pks
	s.secrets[pks.PublicKey().Hex()] = secrets
	s.chain = []threshold.PublicKey{pks.PublicKey()}
	s.elders = []*peers.Peer{p}

	return s.knowledge(0), nil
}

// SectionKey is the current section key.
func (s *Section) SectionKey() threshold.PublicKey {
	s.RLock()
	defer s.RUnlock()
	return s.keys.PublicKey()
}

// Prefix ...
func (s *Section) Prefix() peers.Prefix {
	s.RLock()
	defer s.RUnlock()
	return s.prefix
}

// Elders returns the elders in promotion order.
func (s *Section) Elders() []*peers.Peer {
	s.RLock()
	defer s.RUnlock()
	return append([]*peers.Peer{}, s.elders...)
}

// Adults returns the members that are not elders, sorted by name.
func (s *Section) Adults() []*peers.Peer {
	s.RLock()
	defer s.RUnlock()

	res := []*peers.Peer{}
	for _, m := range s.members {
		if s.elderIndex(m) < 0 {
			res = append(res, m)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })

	return res
}

// Lookup finds a member by name.
func (s *Section) Lookup(name uint32) (*peers.Peer, bool) {
	s.RLock()
	defer s.RUnlock()
	p, ok := s.members[name]
	return p, ok
}

// Snapshot reads the prefix, the elders and the chain length at once.
func (s *Section) Snapshot() node.Snapshot {
	s.RLock()
	defer s.RUnlock()

	return node.Snapshot{
		Prefix:          s.prefix,
		Elders:          peers.NewPeerSet(s.elders),
		SectionChainLen: len(s.chain),
	}
}

// Network returns the view of the section of the node holding key.
func (s *Section) Network(self *peers.Peer, key *ecdsa.PrivateKey) *Network {
	return &Network{
		section: s,
		self:    self,
		key:     key,
	}
}

func (s *Section) secret(k peers.ElderKnowledge) (*threshold.SecretKeyShare, error) {
	s.RLock()
	defer s.RUnlock()

	secrets, ok := s.secrets[k.SectionKey().Hex()]
	if !ok {
		return nil, ErrUnknownKey
	}
	if k.KeyIndex < 0 || k.KeyIndex >= len(secrets) {
		return nil, fmt.Errorf("key index %d out of range", k.KeyIndex)
	}

	return secrets[k.KeyIndex], nil
}

func (s *Section) knowledge(index int) peers.ElderKnowledge {
	return peers.ElderKnowledge{
		Prefix:       s.prefix,
		Elders:       peers.NewPeerSet(s.elders),
		KeySet:       s.keys,
		KeyIndex:     index,
		SectionChain: append([]threshold.PublicKey{}, s.chain...),
	}
}

func (s *Section) elderIndex(p *peers.Peer) int {
	for i, e := range s.elders {
		if e.PubKeyHex == p.PubKeyHex {
			return i
		}
	}
	return -1
}
