package node

import (
	"fmt"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/genesis"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

// NodeInfo is the static configuration of a node's duties.
type NodeInfo struct {
	// Genesis marks the node allowed to become an elder straight from the
	// Infant stage.
	Genesis bool
	// RewardKey is the wallet the node's rewards are paid to.
	RewardKey token.PublicKey
	// MaxCapacity is the number of bytes the node can store.
	MaxCapacity uint64
}

// NodeDuties owns the node's stage and processes duties one at a time. It is
// not safe for concurrent use.
type NodeDuties struct {
	info      NodeInfo
	network   Network
	store     ledger.Store
	usedSpace *UsedSpace
	stage     stage
	logger    *logrus.Entry
}

// NewNodeDuties returns the duties of an Infant node. store backs the ledger
// once the node becomes an elder.
func NewNodeDuties(info NodeInfo, network Network, store ledger.Store, logger *logrus.Entry) *NodeDuties {
	return &NodeDuties{
		info:      info,
		network:   network,
		store:     store,
		usedSpace: NewUsedSpace(info.MaxCapacity),
		stage:     infant{},
		logger:    logger,
	}
}

// Stage ...
func (d *NodeDuties) Stage() state.Stage {
	return d.stage.tag()
}

// ElderDuties returns the elder subsystem, or nil before the node is an elder.
func (d *NodeDuties) ElderDuties() *ElderDuties {
	if e, ok := d.stage.(elder); ok {
		return e.constellation.Duties()
	}
	return nil
}

// QueueLen is the number of elder duties waiting for the promotion to finish.
func (d *NodeDuties) QueueLen() int {
	if q, ok := transitionQueue(d.stage); ok {
		return q.Len()
	}
	return 0
}

// UsedSpace ...
func (d *NodeDuties) UsedSpace() *UsedSpace {
	return d.usedSpace
}

// Process handles one duty to completion and returns the duties it produced,
// in order.
func (d *NodeDuties) Process(duty NetworkDuty) (NetworkDuties, error) {
	switch duty := duty.(type) {
	case NodeDuty:
		return d.processNodeDuty(duty)
	case ElderDuty:
		return d.processElderDuty(duty)
	case AdultDuty:
		a, ok := d.stage.(adult)
		if !ok {
			return nil, cm.NewNodeErr(duty.Kind(), cm.NotAdult, "stage is "+d.Stage().String())
		}
		return a.duties.Process(duty)
	default:
		return nil, unknownDuty(duty)
	}
}

func (d *NodeDuties) processElderDuty(duty ElderDuty) (NetworkDuties, error) {
	if e, ok := d.stage.(elder); ok {
		return e.constellation.Duties().Process(duty)
	}

	if q, ok := transitionQueue(d.stage); ok && q.Enqueue(duty) {
		d.logger.WithFields(logrus.Fields{
			"duty":  duty.Kind(),
			"queue": q.Len(),
		}).Debug("Enqueued elder duty")
		return nil, nil
	}

	return nil, cm.NewNodeErr(duty.Kind(), cm.NotElder, "stage is "+d.Stage().String())
}

func (d *NodeDuties) processNodeDuty(duty NodeDuty) (NetworkDuties, error) {
	d.logger.WithFields(logrus.Fields{
		"duty":  duty.Kind(),
		"stage": d.Stage().String(),
	}).Debug("Processing node duty")

	switch duty := duty.(type) {
	case AssumeAdultDuties:
		return d.assumeAdultDuties()
	case AssumeElderDuties:
		return d.assumeElderDuties(duty.Knowledge)
	case ReceiveGenesisProposal:
		return d.receiveGenesisProposal(duty.Credit, duty.Share)
	case ReceiveGenesisAccumulation:
		return d.receiveGenesisAccumulation(duty.SignedCredit, duty.Share)
	case InitSectionWallet:
		return d.initSectionWallet(duty.Wallet, duty.From)
	case InitiateElderChange:
		if e, ok := d.stage.(elder); ok {
			return e.constellation.InitiateElderChange(duty.Knowledge)
		}
		return nil, nil
	case FinishElderChange:
		if e, ok := d.stage.(elder); ok {
			return e.constellation.FinishElderChange(duty.PreviousKey, duty.NewKey)
		}
		return nil, nil
	case RegisterWallet:
		return d.registerWallet(duty.Wallet)
	case StorageFull:
		return NetworkDuties{Send{
			Msg: net.StorageFull{},
			Dst: net.ToSection(d.nodeName()),
		}}, nil
	default:
		return nil, unknownDuty(duty)
	}
}

func (d *NodeDuties) nodeName() uint32 {
	return peers.NewPeer(cm.EncodeToString(d.network.PublicKey()), "", "").Name()
}

func (d *NodeDuties) assumeAdultDuties() (NetworkDuties, error) {
	if _, ok := d.stage.(infant); !ok {
		return nil, nil
	}

	duties := NewAdultDuties(d.usedSpace, d.logger)
	d.usedSpace.Reset()
	d.stage = adult{duties: duties}

	d.logger.Info("Adult duties assumed")

	return NetworkDuties{RegisterWallet{Wallet: d.info.RewardKey}}, nil
}

func (d *NodeDuties) registerWallet(wallet token.PublicKey) (NetworkDuties, error) {
	switch d.stage.(type) {
	case adult, elder:
	default:
		return nil, cm.NewNodeErr("RegisterWallet", cm.InvalidOperation, "stage is "+d.Stage().String())
	}

	d.logger.WithField("wallet", wallet.Hex()).Info("Registering wallet")

	return NetworkDuties{Send{
		Msg: net.RegisterWallet{Wallet: wallet},
		Dst: net.ToSection(wallet.Name()),
	}}, nil
}

func (d *NodeDuties) assumeElderDuties(k peers.ElderKnowledge) (NetworkDuties, error) {
	switch d.stage.(type) {
	case elder, assumingElderDuties, genesisStage:
		return nil, nil
	case infant:
		if !d.info.Genesis {
			return nil, cm.NewNodeErr("AssumeElderDuties", cm.InvalidOperation,
				"only the genesis node can become an elder as an Infant")
		}
	}

	snap := d.network.Snapshot()

	elders := 0
	if snap.Elders != nil {
		elders = snap.Elders.Len()
	}
	firstSection := snap.Prefix.IsEmpty()
	earlyChain := snap.SectionChainLen <= genesis.MaxSectionChainLen
	_, isAdult := d.stage.(adult)

	d.logger.WithFields(logrus.Fields{
		"first_section":     firstSection,
		"elders":            elders,
		"section_chain_len": snap.SectionChainLen,
	}).Debug("Assuming elder duties")

	identity, err := d.network.ElderIdentity(k)
	if err != nil {
		return nil, err
	}

	switch {
	case firstSection && elders == genesis.ElderCount && isAdult && earlyChain:
		return d.proposeGenesis(identity)
	case firstSection && elders < genesis.ElderCount && earlyChain:
		d.stage = genesisStage{sub: awaitingThreshold{identity: identity, duties: NewDutyQueue()}}
		d.logger.Info("Awaiting genesis threshold")
		return nil, nil
	}

	d.stage = assumingElderDuties{identity: identity, duties: NewDutyQueue()}

	d.logger.Info("Querying section wallet history")

	return NetworkDuties{toSection(identity, net.GetSectionWalletHistory{})}, nil
}

func (d *NodeDuties) initSectionWallet(wallet token.WalletInfo, from uint32) (NetworkDuties, error) {
	switch s := d.stage.(type) {
	case elder:
		return nil, nil
	case infant:
		if !d.info.Genesis {
			return nil, cm.NewNodeErr("InitSectionWallet", cm.InvalidOperation, "cannot become an elder as an Infant")
		}
		k, err := d.network.GenesisElderKnowledge()
		if err != nil {
			return nil, err
		}
		identity, err := d.network.ElderIdentity(k)
		if err != nil {
			return nil, err
		}
		return d.finishTransitionToElder(identity, NewDutyQueue(), wallet, nil)
	case genesisStage:
		acc, ok := s.sub.(accumulatingGenesis)
		if !ok {
			return nil, cm.NewNodeErr("InitSectionWallet", cm.InvalidOperation, "stage is "+d.Stage().String())
		}
		if err := checkHistorySender(acc.accumulation.Identity(), from); err != nil {
			return nil, err
		}
		return d.finishTransitionToElder(acc.accumulation.Identity(), acc.duties, wallet, nil)
	case assumingElderDuties:
		if err := checkHistorySender(s.identity, from); err != nil {
			return nil, err
		}
		return d.finishTransitionToElder(s.identity, s.duties, wallet, nil)
	default:
		return nil, cm.NewNodeErr("InitSectionWallet", cm.InvalidOperation, "stage is "+d.Stage().String())
	}
}

// checkHistorySender accepts a section wallet history only from one of the
// other elders of identity.
func checkHistorySender(identity peers.ElderIdentity, from uint32) error {
	if from != identity.NodeName() {
		for _, name := range identity.Elders().Names() {
			if name == from {
				return nil
			}
		}
	}
	return cm.NewNodeErr("InitSectionWallet", cm.InvalidOperation,
		fmt.Sprintf("section wallet history from %d, not an elder", from))
}

// finishTransitionToElder builds the elder subsystem, replays the queued
// duties into it and registers the node with the rewards subsystem. Queued
// duties that fail are logged and dropped; only a failure to initiate the
// elder duties leaves the stage unchanged.
func (d *NodeDuties) finishTransitionToElder(identity peers.ElderIdentity,
	queue *DutyQueue,
	wallet token.WalletInfo,
	genesis *token.TransferPropagated) (NetworkDuties, error) {

	duties := NewElderDuties(identity, wallet, d.store, d.network, d.logger)

	ops, err := duties.Initiate(genesis)
	if err != nil {
		return nil, fmt.Errorf("initiating elder duties: %w", err)
	}

	queued := queue.Len()

	failed := 0
	replayed := queue.DrainInto(duties.Process, func(duty ElderDuty, err error) {
		failed++
		d.logger.WithError(err).WithField("duty", duty.Kind()).Error("Replaying queued duty")
	})
	ops = append(ops, replayed...)

	d.usedSpace.Reset()
	d.stage = elder{constellation: NewElderConstellation(duties, d.network, d.logger)}

	d.logger.WithFields(logrus.Fields{
		"prefix":  identity.Prefix().String(),
		"genesis": genesis != nil,
		"queued":  queued,
		"failed":  failed,
	}).Info("Elder duties assumed")

	ops = append(ops,
		AddNewNode{Node: identity.NodeName()},
		SetNodeWallet{Node: identity.NodeName(), Wallet: d.info.RewardKey},
	)

	return ops, nil
}

func toSection(identity peers.ElderIdentity, msg net.Message) Send {
	return Send{
		Msg: msg,
		Dst: net.ToSection(token.PublicKey(identity.SectionPublicKey()).Name()),
	}
}
