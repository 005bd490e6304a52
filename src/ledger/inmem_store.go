package ledger

import (
	"sync"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/token"
)

// InmemStore implements the Store interface in memory.
type InmemStore struct {
	sync.RWMutex
	credits map[string][]token.CreditProof
	ids     map[string]string
	meta    map[string][]byte
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		credits: make(map[string][]token.CreditProof),
		ids:     make(map[string]string),
		meta:    make(map[string][]byte),
	}
}

// AddCredit implements the Store interface.
func (s *InmemStore) AddCredit(proof token.CreditProof) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.ids[proof.ID()]; ok {
		return cm.NewStoreErr("Credit", cm.KeyAlreadyExists, proof.ID())
	}

	wallet := proof.Recipient().Hex()
	s.credits[wallet] = append(s.credits[wallet], proof)
	s.ids[proof.ID()] = wallet

	return nil
}

// HasCredit implements the Store interface.
func (s *InmemStore) HasCredit(id string) (bool, error) {
	s.RLock()
	defer s.RUnlock()
	_, ok := s.ids[id]
	return ok, nil
}

// Credits implements the Store interface.
func (s *InmemStore) Credits(wallet token.PublicKey) ([]token.CreditProof, error) {
	s.RLock()
	defer s.RUnlock()

	credits := s.credits[wallet.Hex()]
	res := make([]token.CreditProof, len(credits))
	copy(res, credits)

	return res, nil
}

// Wallets implements the Store interface.
func (s *InmemStore) Wallets() ([]token.PublicKey, error) {
	s.RLock()
	defer s.RUnlock()

	res := []token.PublicKey{}
	for _, credits := range s.credits {
		if len(credits) > 0 {
			res = append(res, credits[0].Recipient())
		}
	}

	return res, nil
}

// RemoveWallet implements the Store interface.
func (s *InmemStore) RemoveWallet(wallet token.PublicKey) error {
	s.Lock()
	defer s.Unlock()

	for _, c := range s.credits[wallet.Hex()] {
		delete(s.ids, c.ID())
	}
	delete(s.credits, wallet.Hex())

	return nil
}

// SetMeta implements the Store interface.
func (s *InmemStore) SetMeta(key string, value []byte) error {
	s.Lock()
	defer s.Unlock()
	s.meta[key] = value
	return nil
}

// Meta implements the Store interface.
func (s *InmemStore) Meta(key string) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()
	v, ok := s.meta[key]
	if !ok {
		return nil, cm.NewStoreErr("Meta", cm.KeyNotFound, key)
	}
	return v, nil
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
