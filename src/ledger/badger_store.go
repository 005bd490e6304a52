package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

const (
	creditPrefix = "credit"
	indexPrefix  = "index"
	countPrefix  = "count"
	metaPrefix   = "meta"
)

// BadgerStore implements the Store interface with a badger database.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

//==============================================================================
//Keys

func walletCreditPrefix(wallet string) []byte {
	return []byte(fmt.Sprintf("%s_%s_", creditPrefix, wallet))
}

func creditKey(wallet string, index uint64) []byte {
	return []byte(fmt.Sprintf("%s_%s_%020d", creditPrefix, wallet, index))
}

func creditIndexKey(id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", indexPrefix, id))
}

func walletCountKey(wallet string) []byte {
	return []byte(fmt.Sprintf("%s_%s", countPrefix, wallet))
}

func metaKey(key string) []byte {
	return []byte(fmt.Sprintf("%s_%s", metaPrefix, key))
}

//==============================================================================
//Implement the Store interface

// AddCredit implements the Store interface. The credit, its id index and the
// wallet's count are written in one transaction.
func (s *BadgerStore) AddCredit(proof token.CreditProof) error {
	val, err := token.Marshal(&proof)
	if err != nil {
		return err
	}

	wallet := proof.Recipient().Hex()

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(creditIndexKey(proof.ID()))
		if err == nil {
			return cm.NewStoreErr("Credit", cm.KeyAlreadyExists, proof.ID())
		}
		if !isDBKeyNotFound(err) {
			return err
		}

		count := uint64(0)
		item, err := txn.Get(walletCountKey(wallet))
		switch {
		case err == nil:
			b, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			count = binary.BigEndian.Uint64(b)
		case !isDBKeyNotFound(err):
			return err
		}

		if err := txn.Set(creditKey(wallet, count), val); err != nil {
			return err
		}

		if err := txn.Set(creditIndexKey(proof.ID()), []byte(wallet)); err != nil {
			return err
		}

		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, count+1)

		return txn.Set(walletCountKey(wallet), next)
	})
}

// HasCredit implements the Store interface.
func (s *BadgerStore) HasCredit(id string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(creditIndexKey(id))
		return err
	})
	if err != nil {
		if isDBKeyNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Credits implements the Store interface.
func (s *BadgerStore) Credits(wallet token.PublicKey) ([]token.CreditProof, error) {
	res := []token.CreditProof{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := walletCreditPrefix(wallet.Hex())
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(data []byte) error {
				var proof token.CreditProof
				if err := token.Unmarshal(data, &proof); err != nil {
					return err
				}
				res = append(res, proof)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return res, err
}

// Wallets implements the Store interface.
func (s *BadgerStore) Wallets() ([]token.PublicKey, error) {
	res := []token.PublicKey{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(countPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hex := string(it.Item().Key()[len(prefix):])
			wallet, err := cm.DecodeFromString(hex)
			if err != nil {
				return err
			}
			res = append(res, wallet)
		}
		return nil
	})

	return res, err
}

// RemoveWallet implements the Store interface.
func (s *BadgerStore) RemoveWallet(wallet token.PublicKey) error {
	credits, err := s.Credits(wallet)
	if err != nil {
		return err
	}

	hex := wallet.Hex()

	return s.db.Update(func(txn *badger.Txn) error {
		for i, c := range credits {
			if err := txn.Delete(creditKey(hex, uint64(i))); err != nil {
				return err
			}
			if err := txn.Delete(creditIndexKey(c.ID())); err != nil {
				return err
			}
		}
		return txn.Delete(walletCountKey(hex))
	})
}

// SetMeta implements the Store interface.
func (s *BadgerStore) SetMeta(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(key), value)
	})
}

// Meta implements the Store interface.
func (s *BadgerStore) Meta(key string) ([]byte, error) {
	var res []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(key))
		if err != nil {
			return err
		}
		res, err = item.ValueCopy(nil)
		return err
	})
	return res, mapError(err, "Meta", key)
}

// StorePath implements the Store interface.
func (s *BadgerStore) StorePath() string {
	return s.path
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil && isDBKeyNotFound(err) {
		return cm.NewStoreErr(name, cm.KeyNotFound, key)
	}
	return err
}
