package net

import (
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/token"
)

// Message is the payload of an Envelope.
type Message interface {
	Kind() string
}

// ProposeGenesis carries the genesis credit and the sender's share over it.
type ProposeGenesis struct {
	Credit token.Credit
	Share  threshold.SignatureShare
}

// AccumulateGenesis carries the signed genesis credit and the sender's share
// over it.
type AccumulateGenesis struct {
	SignedCredit token.SignedCredit
	Share        threshold.SignatureShare
}

// GetSectionWalletHistory is sent by a promoted elder to the section's elders.
type GetSectionWalletHistory struct{}

// SectionWalletHistory answers GetSectionWalletHistory.
type SectionWalletHistory struct {
	Wallet token.WalletInfo
}

// RegisterWallet asks the section to pay the node's rewards to Wallet.
type RegisterWallet struct {
	Wallet token.PublicKey
}

// StorageFull tells the section the sender has run out of space.
type StorageFull struct{}

// GetStoreCost asks the section what storing Bytes would cost.
type GetStoreCost struct {
	Bytes uint64
}

// StoreCost answers GetStoreCost.
type StoreCost struct {
	Bytes uint64
	Cost  token.Token
}

// GetBalance asks the replicas of Wallet for its balance.
type GetBalance struct {
	Wallet token.PublicKey
}

// Balance answers GetBalance.
type Balance struct {
	Wallet token.PublicKey
	Amount token.Token
}

// PropagateTransfer delivers a credit proof to the replicas of its recipient.
type PropagateTransfer struct {
	Proof token.CreditProof
}

// Kind ...
func (ProposeGenesis) Kind() string { return "ProposeGenesis" }

// Kind ...
func (AccumulateGenesis) Kind() string { return "AccumulateGenesis" }

// Kind ...
func (GetSectionWalletHistory) Kind() string { return "GetSectionWalletHistory" }

// Kind ...
func (SectionWalletHistory) Kind() string { return "SectionWalletHistory" }

// Kind ...
func (RegisterWallet) Kind() string { return "RegisterWallet" }

// Kind ...
func (StorageFull) Kind() string { return "StorageFull" }

// Kind ...
func (GetStoreCost) Kind() string { return "GetStoreCost" }

// Kind ...
func (StoreCost) Kind() string { return "StoreCost" }

// Kind ...
func (GetBalance) Kind() string { return "GetBalance" }

// Kind ...
func (Balance) Kind() string { return "Balance" }

// Kind ...
func (PropagateTransfer) Kind() string { return "PropagateTransfer" }
