package ledger

import (
	"github.com/mosaicnetworks/vault/src/token"
)

const (
	metaReplicas      = "replicas"
	metaSectionWallet = "section_wallet"
)

// Store persists credit proofs per wallet and a few metadata values.
type Store interface {
	// AddCredit appends proof to its recipient's history. It returns a
	// KeyAlreadyExists StoreErr if a credit with the same id was recorded.
	AddCredit(proof token.CreditProof) error
	HasCredit(id string) (bool, error)
	// Credits returns the wallet's credits, oldest first.
	Credits(wallet token.PublicKey) ([]token.CreditProof, error)
	Wallets() ([]token.PublicKey, error)
	RemoveWallet(wallet token.PublicKey) error
	SetMeta(key string, value []byte) error
	// Meta returns a KeyNotFound StoreErr if nothing was set under key.
	Meta(key string) ([]byte, error)
	StorePath() string
	Close() error
}
