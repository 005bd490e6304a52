package node

import (
	"errors"

	"github.com/mosaicnetworks/vault/src/capacity"
	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/rewards"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

// ElderDuties is the section-leading subsystem: the ledger replica, the
// capacity tracker and the rewards registry.
type ElderDuties struct {
	identity  peers.ElderIdentity
	wallet    token.WalletInfo
	replica   *ledger.Replica
	rateLimit *capacity.RateLimit
	rewards   *rewards.Rewards
	logger    *logrus.Entry
}

// NewElderDuties builds the elder subsystem for identity. The ledger is not
// seeded until Initiate is called.
func NewElderDuties(identity peers.ElderIdentity,
	wallet token.WalletInfo,
	store ledger.Store,
	network Network,
	logger *logrus.Entry) *ElderDuties {

	logger = logger.WithField("duties", "elder")

	return &ElderDuties{
		identity:  identity,
		wallet:    wallet,
		replica:   ledger.NewReplica(store, ledger.ReplicaInfoFrom(identity), logger),
		rateLimit: capacity.NewRateLimit(capacity.NewCapacity(), network, identity.Prefix(), logger),
		rewards:   rewards.NewRewards(logger),
		logger:    logger,
	}
}

// Initiate seeds the ledger, with the genesis proof if there is one and with
// the section wallet history otherwise.
func (e *ElderDuties) Initiate(genesis *token.TransferPropagated) (NetworkDuties, error) {
	if genesis != nil {
		if err := e.replica.InitGenesis(*genesis); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := e.replica.InitFromHistory(e.wallet); err != nil {
		return nil, err
	}

	return nil, nil
}

// Identity ...
func (e *ElderDuties) Identity() peers.ElderIdentity {
	return e.identity
}

// Replica ...
func (e *ElderDuties) Replica() *ledger.Replica {
	return e.replica
}

// RateLimit ...
func (e *ElderDuties) RateLimit() *capacity.RateLimit {
	return e.rateLimit
}

// Rewards ...
func (e *ElderDuties) Rewards() *rewards.Rewards {
	return e.rewards
}

// Process runs an elder duty.
func (e *ElderDuties) Process(duty ElderDuty) (NetworkDuties, error) {
	switch d := duty.(type) {
	case AddNewNode:
		e.rewards.AddNewNode(d.Node)
		return nil, nil
	case SetNodeWallet:
		e.rewards.SetNodeWallet(d.Node, d.Wallet)
		return nil, nil
	case ReceiveStorageFull:
		return e.receiveStorageFull(d)
	case GetStoreCost:
		cost := e.rateLimit.From(d.Bytes)
		return respond(d.Origin, net.StoreCost{Bytes: d.Bytes, Cost: cost}), nil
	case GetBalance:
		balance, err := e.replica.Balance(d.Wallet)
		if err != nil {
			return nil, err
		}
		return respond(d.Origin, net.Balance{Wallet: d.Wallet, Amount: balance}), nil
	case GetSectionWalletHistory:
		info, err := e.replica.SectionWalletInfo()
		if err != nil {
			return nil, err
		}
		return respond(d.Origin, net.SectionWalletHistory{Wallet: info}), nil
	case ReceivePropagated:
		return nil, e.replica.ReceivePropagated(d.Transfer)
	default:
		return nil, unknownDuty(duty)
	}
}

func (e *ElderDuties) receiveStorageFull(d ReceiveStorageFull) (NetworkDuties, error) {
	if !e.rateLimit.IncreaseFullNodeCount(d.Node) {
		return nil, nil
	}

	if e.rateLimit.CheckNetworkStorage() {
		e.logger.WithFields(logrus.Fields{
			"prefix":     e.rateLimit.Prefix().String(),
			"full_nodes": e.rateLimit.FullNodes(),
		}).Warn("Section storage is running out, more adults are needed")
	}

	return nil, nil
}

// UpdateIdentity switches the subsystem to a new elder set. If the prefix
// grew, the section split and the wallets and nodes of the sibling are
// dropped.
func (e *ElderDuties) UpdateIdentity(identity peers.ElderIdentity) error {
	previous := e.identity.Prefix()
	prefix := identity.Prefix()

	if err := e.replica.UpdateReplicaInfo(ledger.ReplicaInfoFrom(identity)); err != nil {
		return err
	}

	if prefix.IsExtensionOf(previous) {
		if err := e.replica.SplitSection(prefix); err != nil {
			return err
		}
		e.rewards.SplitSection(prefix)
	}

	e.rateLimit.SetPrefix(prefix)
	e.identity = identity

	return nil
}

// GenesisProof returns the first credit of the section wallet.
func (e *ElderDuties) GenesisProof() (*token.CreditProof, error) {
	info, err := e.replica.SectionWalletInfo()
	if err != nil {
		return nil, err
	}
	if info.History.IsEmpty() {
		return nil, errNoGenesis
	}
	proof := info.History.Credits[0]
	return &proof, nil
}

var errNoGenesis = errors.New("no genesis credit recorded")

func respond(origin Origin, msg net.Message) NetworkDuties {
	return NetworkDuties{Send{
		Msg:           msg,
		Dst:           net.ToNode(origin.Node),
		CorrelationID: origin.Request,
	}}
}

func unknownDuty(duty NetworkDuty) error {
	return cm.NewNodeErr("Process", cm.UnknownDuty, duty.Kind())
}
