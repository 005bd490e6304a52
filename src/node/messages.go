package node

import (
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/token"
)

// dutyFromEnvelope turns an inbound message into the duty that handles it.
// Responses to client queries produce no duty.
func dutyFromEnvelope(env *net.Envelope) (NetworkDuty, bool) {
	origin := Origin{
		Node:    env.SenderName(),
		Request: env.ID,
	}

	switch msg := env.Msg.(type) {
	case net.ProposeGenesis:
		return ReceiveGenesisProposal{Credit: msg.Credit, Share: msg.Share}, true
	case net.AccumulateGenesis:
		return ReceiveGenesisAccumulation{SignedCredit: msg.SignedCredit, Share: msg.Share}, true
	case net.GetSectionWalletHistory:
		return GetSectionWalletHistory{Origin: origin}, true
	case net.SectionWalletHistory:
		return InitSectionWallet{Wallet: msg.Wallet, From: origin.Node}, true
	case net.RegisterWallet:
		return SetNodeWallet{Node: origin.Node, Wallet: msg.Wallet}, true
	case net.StorageFull:
		return ReceiveStorageFull{Node: origin.Node}, true
	case net.GetStoreCost:
		return GetStoreCost{Bytes: msg.Bytes, Origin: origin}, true
	case net.GetBalance:
		return GetBalance{Wallet: msg.Wallet, Origin: origin}, true
	case net.PropagateTransfer:
		return ReceivePropagated{Transfer: token.TransferPropagated{CreditProof: msg.Proof}}, true
	default:
		return nil, false
	}
}
