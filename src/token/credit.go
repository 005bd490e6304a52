package token

import (
	"fmt"

	"github.com/mosaicnetworks/vault/src/crypto/threshold"
)

// Credit is an amount made available to Recipient.
type Credit struct {
	ID        string
	Amount    Token
	Recipient PublicKey
	Msg       string
}

// Bytes returns the canonical encoding of the credit, which is what actors sign.
func (c Credit) Bytes() []byte {
	b, err := Marshal(c)
	if err != nil {
		// only plain fields, encoding cannot fail
		panic(err)
	}
	return b
}

// SignedCredit is a Credit with the signature of the actor that issued it.
// For the genesis credit, the actor is the genesis section itself.
type SignedCredit struct {
	Credit         Credit
	ActorSignature threshold.Signature
}

// Bytes returns the canonical encoding of the signed credit.
func (sc SignedCredit) Bytes() []byte {
	b, err := Marshal(sc)
	if err != nil {
		panic(err)
	}
	return b
}

// ID ...
func (sc SignedCredit) ID() string {
	return sc.Credit.ID
}

// CreditProof is a SignedCredit counter-signed by the replicas that debited
// the actor. It is verifiable on its own.
type CreditProof struct {
	SignedCredit         SignedCredit
	DebitingReplicasSig  threshold.Signature
	DebitingReplicasKeys []byte
}

// ID ...
func (p CreditProof) ID() string {
	return p.SignedCredit.Credit.ID
}

// Amount ...
func (p CreditProof) Amount() Token {
	return p.SignedCredit.Credit.Amount
}

// Recipient ...
func (p CreditProof) Recipient() PublicKey {
	return p.SignedCredit.Credit.Recipient
}

// ReplicaKeys decodes the key set of the debiting replicas.
func (p CreditProof) ReplicaKeys() (*threshold.PublicKeySet, error) {
	return threshold.UnmarshalPublicKeySet(p.DebitingReplicasKeys)
}

// Verify checks the actor signature over the credit and the replicas'
// signature over the signed credit, both under the replica keys.
func (p CreditProof) Verify() error {
	keys, err := p.ReplicaKeys()
	if err != nil {
		return err
	}

	if err := keys.Verify(p.SignedCredit.Credit.Bytes(), p.SignedCredit.ActorSignature); err != nil {
		return fmt.Errorf("actor signature: %w", err)
	}

	if err := keys.Verify(p.SignedCredit.Bytes(), p.DebitingReplicasSig); err != nil {
		return fmt.Errorf("replicas signature: %w", err)
	}

	return nil
}

// TransferPropagated notifies a wallet's replicas of a credit proof.
type TransferPropagated struct {
	CreditProof CreditProof
}

// ActorHistory is the list of credits a wallet received, oldest first.
type ActorHistory struct {
	Credits []CreditProof
}

// IsEmpty ...
func (h ActorHistory) IsEmpty() bool {
	return len(h.Credits) == 0
}

// WalletInfo is what elders hand to a newly promoted elder: the key set of
// the section replicas and the history of the section wallet.
type WalletInfo struct {
	Replicas []byte
	History  ActorHistory
}
