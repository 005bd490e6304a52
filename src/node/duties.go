package node

import (
	"github.com/google/uuid"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
)

// NetworkDuty is anything NodeDuties.Process consumes or produces.
type NetworkDuty interface {
	Kind() string
}

// NetworkDuties is an ordered list of duties.
type NetworkDuties []NetworkDuty

// NodeDuty is a duty every node handles, whatever its stage.
type NodeDuty interface {
	NetworkDuty
	nodeDuty()
}

// ElderDuty is a duty only elders can run. It is queued while the node is
// being promoted.
type ElderDuty interface {
	NetworkDuty
	elderDuty()
}

// AdultDuty is a duty only adults can run.
type AdultDuty interface {
	NetworkDuty
	adultDuty()
}

// Origin identifies the request an elder duty answers.
type Origin struct {
	Node    uint32
	Request uuid.UUID
}

// Send is an outbound message.
type Send struct {
	Msg           net.Message
	Dst           net.Location
	CorrelationID uuid.UUID
}

// Kind ...
func (s Send) Kind() string { return "Send(" + s.Msg.Kind() + ")" }

//==============================================================================
// Node duties

// AssumeAdultDuties promotes an Infant to Adult.
type AssumeAdultDuties struct{}

// AssumeElderDuties starts the promotion to Elder.
type AssumeElderDuties struct {
	Knowledge peers.ElderKnowledge
}

// ReceiveGenesisProposal carries a peer's share over the genesis credit.
type ReceiveGenesisProposal struct {
	Credit token.Credit
	Share  threshold.SignatureShare
}

// ReceiveGenesisAccumulation carries a peer's share over the signed genesis
// credit.
type ReceiveGenesisAccumulation struct {
	SignedCredit token.SignedCredit
	Share        threshold.SignatureShare
}

// InitSectionWallet completes an ordinary promotion with the section wallet
// history returned by the elders. From names the elder that sent it.
type InitSectionWallet struct {
	Wallet token.WalletInfo
	From   uint32
}

// InitiateElderChange announces the knowledge of an upcoming elder set.
type InitiateElderChange struct {
	Knowledge peers.ElderKnowledge
}

// FinishElderChange switches the elder duties to the new section key.
type FinishElderChange struct {
	PreviousKey threshold.PublicKey
	NewKey      threshold.PublicKey
}

// RegisterWallet tells the section where to pay this node's rewards.
type RegisterWallet struct {
	Wallet token.PublicKey
}

// StorageFull tells the section this node has no space left.
type StorageFull struct{}

func (AssumeAdultDuties) nodeDuty()          {}
func (AssumeElderDuties) nodeDuty()          {}
func (ReceiveGenesisProposal) nodeDuty()     {}
func (ReceiveGenesisAccumulation) nodeDuty() {}
func (InitSectionWallet) nodeDuty()          {}
func (InitiateElderChange) nodeDuty()        {}
func (FinishElderChange) nodeDuty()          {}
func (RegisterWallet) nodeDuty()             {}
func (StorageFull) nodeDuty()                {}

// Kind ...
func (AssumeAdultDuties) Kind() string { return "AssumeAdultDuties" }

// Kind ...
func (AssumeElderDuties) Kind() string { return "AssumeElderDuties" }

// Kind ...
func (ReceiveGenesisProposal) Kind() string { return "ReceiveGenesisProposal" }

// Kind ...
func (ReceiveGenesisAccumulation) Kind() string { return "ReceiveGenesisAccumulation" }

// Kind ...
func (InitSectionWallet) Kind() string { return "InitSectionWallet" }

// Kind ...
func (InitiateElderChange) Kind() string { return "InitiateElderChange" }

// Kind ...
func (FinishElderChange) Kind() string { return "FinishElderChange" }

// Kind ...
func (RegisterWallet) Kind() string { return "RegisterWallet" }

// Kind ...
func (StorageFull) Kind() string { return "StorageFull" }

//==============================================================================
// Elder duties

// AddNewNode registers a node with the rewards subsystem.
type AddNewNode struct {
	Node uint32
}

// SetNodeWallet sets the reward wallet of a node.
type SetNodeWallet struct {
	Node   uint32
	Wallet token.PublicKey
}

// ReceiveStorageFull records that an adult ran out of space.
type ReceiveStorageFull struct {
	Node uint32
}

// GetStoreCost prices a write.
type GetStoreCost struct {
	Bytes  uint64
	Origin Origin
}

// GetBalance queries the balance of a wallet.
type GetBalance struct {
	Wallet token.PublicKey
	Origin Origin
}

// GetSectionWalletHistory answers a promoted elder's history query.
type GetSectionWalletHistory struct {
	Origin Origin
}

// ReceivePropagated records a credit proof in the ledger.
type ReceivePropagated struct {
	Transfer token.TransferPropagated
}

func (AddNewNode) elderDuty()              {}
func (SetNodeWallet) elderDuty()           {}
func (ReceiveStorageFull) elderDuty()      {}
func (GetStoreCost) elderDuty()            {}
func (GetBalance) elderDuty()              {}
func (GetSectionWalletHistory) elderDuty() {}
func (ReceivePropagated) elderDuty()       {}

// Kind ...
func (AddNewNode) Kind() string { return "AddNewNode" }

// Kind ...
func (SetNodeWallet) Kind() string { return "SetNodeWallet" }

// Kind ...
func (ReceiveStorageFull) Kind() string { return "ReceiveStorageFull" }

// Kind ...
func (GetStoreCost) Kind() string { return "GetStoreCost" }

// Kind ...
func (GetBalance) Kind() string { return "GetBalance" }

// Kind ...
func (GetSectionWalletHistory) Kind() string { return "GetSectionWalletHistory" }

// Kind ...
func (ReceivePropagated) Kind() string { return "ReceivePropagated" }

//==============================================================================
// Adult duties

// RecordUsage adds written bytes to the node's used space.
type RecordUsage struct {
	Bytes uint64
}

// CheckStorage reports the node as full once its used space crosses
// MaxStorageUsageRatio.
type CheckStorage struct{}

func (RecordUsage) adultDuty()  {}
func (CheckStorage) adultDuty() {}

// Kind ...
func (RecordUsage) Kind() string { return "RecordUsage" }

// Kind ...
func (CheckStorage) Kind() string { return "CheckStorage" }
