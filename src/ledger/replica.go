package ledger

import (
	"errors"
	"fmt"
	"sync"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotResponsible is returned for wallets outside the section's prefix.
	ErrNotResponsible = errors.New("wallet is not managed by this section")
	// ErrNotGenesis is returned when seeding the ledger with something other
	// than the whole supply.
	ErrNotGenesis = errors.New("not a genesis credit")
	// ErrUnknownReplicas is returned for proofs signed by replicas whose key
	// is not in the section chain.
	ErrUnknownReplicas = errors.New("credit proof signed by unknown replicas")
)

// ReplicaInfo is what a replica needs to know about its section.
type ReplicaInfo struct {
	KeySet       *threshold.PublicKeySet
	KeyIndex     int
	Prefix       peers.Prefix
	SectionChain []threshold.PublicKey
}

// ReplicaInfoFrom extracts the replica info from an elder identity.
func ReplicaInfoFrom(id peers.ElderIdentity) ReplicaInfo {
	return ReplicaInfo{
		KeySet:       id.PublicKeySet(),
		KeyIndex:     id.KeyIndex(),
		Prefix:       id.Prefix(),
		SectionChain: id.SectionChain(),
	}
}

// Replica holds the wallets of a section.
type Replica struct {
	sync.RWMutex

	store  Store
	info   ReplicaInfo
	logger *logrus.Entry
}

// NewReplica ...
func NewReplica(store Store, info ReplicaInfo, logger *logrus.Entry) *Replica {
	return &Replica{
		store:  store,
		info:   info,
		logger: logger.WithField("component", "ledger"),
	}
}

// Info ...
func (r *Replica) Info() ReplicaInfo {
	r.RLock()
	defer r.RUnlock()
	return r.info
}

// InitGenesis seeds the ledger with the genesis credit proof. The section
// wallet becomes the genesis recipient. Seeding twice with the same proof is
// a no-op.
func (r *Replica) InitGenesis(genesis token.TransferPropagated) error {
	proof := genesis.CreditProof

	if proof.Amount() != token.MaxSupply {
		return ErrNotGenesis
	}

	if err := r.record(proof, false); err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"credit": proof.ID(),
		"amount": proof.Amount().String(),
	}).Info("Genesis credit recorded")

	return r.store.SetMeta(metaSectionWallet, proof.Recipient())
}

// InitFromHistory seeds the ledger with the section wallet history received
// from the other elders.
func (r *Replica) InitFromHistory(wallet token.WalletInfo) error {
	for _, proof := range wallet.History.Credits {
		if err := r.record(proof, false); err != nil {
			return err
		}
	}

	if !wallet.History.IsEmpty() {
		first := wallet.History.Credits[0]
		if err := r.store.SetMeta(metaSectionWallet, first.Recipient()); err != nil {
			return err
		}
	}

	if len(wallet.Replicas) > 0 {
		if err := r.store.SetMeta(metaReplicas, wallet.Replicas); err != nil {
			return err
		}
	}

	r.logger.WithField("credits", len(wallet.History.Credits)).Debug("Section wallet history recorded")

	return nil
}

// ReceivePropagated records a credit proof for a wallet under our prefix.
// Replays are ignored.
func (r *Replica) ReceivePropagated(tp token.TransferPropagated) error {
	return r.record(tp.CreditProof, true)
}

func (r *Replica) record(proof token.CreditProof, checkPrefix bool) error {
	r.Lock()
	defer r.Unlock()

	if checkPrefix && !r.info.Prefix.Matches(proof.Recipient().Name()) {
		return ErrNotResponsible
	}

	if err := proof.Verify(); err != nil {
		return fmt.Errorf("credit %s: %w", proof.ID(), err)
	}

	keys, err := proof.ReplicaKeys()
	if err != nil {
		return fmt.Errorf("credit %s: %w", proof.ID(), err)
	}
	if !r.knownKey(keys.PublicKey()) {
		return fmt.Errorf("credit %s: %w", proof.ID(), ErrUnknownReplicas)
	}

	err = r.store.AddCredit(proof)
	if err != nil && !cm.IsStore(err, cm.KeyAlreadyExists) {
		return err
	}

	return nil
}

func (r *Replica) knownKey(key threshold.PublicKey) bool {
	for _, k := range r.info.SectionChain {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

// Balance sums the credits of wallet.
func (r *Replica) Balance(wallet token.PublicKey) (token.Token, error) {
	r.RLock()
	defer r.RUnlock()

	credits, err := r.store.Credits(wallet)
	if err != nil {
		return 0, err
	}

	var sum token.Token
	for _, c := range credits {
		next, ok := sum.CheckedAdd(c.Amount())
		if !ok {
			return 0, fmt.Errorf("balance of %s overflows", wallet.Hex())
		}
		sum = next
	}

	return sum, nil
}

// History returns the credits of wallet, oldest first.
func (r *Replica) History(wallet token.PublicKey) (token.ActorHistory, error) {
	r.RLock()
	defer r.RUnlock()

	credits, err := r.store.Credits(wallet)
	if err != nil {
		return token.ActorHistory{}, err
	}

	return token.ActorHistory{Credits: credits}, nil
}

// SectionWallet returns the key of the section wallet, if seeded.
func (r *Replica) SectionWallet() (token.PublicKey, error) {
	return r.store.Meta(metaSectionWallet)
}

// SectionWalletInfo is the answer to a promoted elder's history query.
func (r *Replica) SectionWalletInfo() (token.WalletInfo, error) {
	replicas, err := r.Info().KeySet.MarshalBinary()
	if err != nil {
		return token.WalletInfo{}, err
	}

	wallet, err := r.SectionWallet()
	if err != nil {
		if cm.IsStore(err, cm.KeyNotFound) {
			return token.WalletInfo{Replicas: replicas}, nil
		}
		return token.WalletInfo{}, err
	}

	history, err := r.History(wallet)
	if err != nil {
		return token.WalletInfo{}, err
	}

	return token.WalletInfo{
		Replicas: replicas,
		History:  history,
	}, nil
}

// UpdateReplicaInfo switches the replica to the keys of a new elder set.
func (r *Replica) UpdateReplicaInfo(info ReplicaInfo) error {
	r.Lock()
	defer r.Unlock()

	replicas, err := info.KeySet.MarshalBinary()
	if err != nil {
		return err
	}

	if err := r.store.SetMeta(metaReplicas, replicas); err != nil {
		return err
	}

	r.info = info

	return nil
}

// SplitSection drops the wallets that fall outside prefix. The section wallet
// is kept on both sides of the split.
func (r *Replica) SplitSection(prefix peers.Prefix) error {
	r.Lock()
	defer r.Unlock()

	sectionWallet, err := r.store.Meta(metaSectionWallet)
	if err != nil && !cm.IsStore(err, cm.KeyNotFound) {
		return err
	}

	wallets, err := r.store.Wallets()
	if err != nil {
		return err
	}

	dropped := 0
	for _, w := range wallets {
		if prefix.Matches(w.Name()) || w.Hex() == token.PublicKey(sectionWallet).Hex() {
			continue
		}
		if err := r.store.RemoveWallet(w); err != nil {
			return err
		}
		dropped++
	}

	r.info.Prefix = prefix

	r.logger.WithFields(logrus.Fields{
		"prefix":  prefix.String(),
		"dropped": dropped,
	}).Info("Split ledger")

	return nil
}

// Close closes the underlying store.
func (r *Replica) Close() error {
	return r.store.Close()
}
