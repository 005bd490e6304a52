package node

import (
	"errors"
	"fmt"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/genesis"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

// proposeGenesis is run by the fifth elder of the first section. It creates
// the one genesis credit and starts the first round.
func (d *NodeDuties) proposeGenesis(identity peers.ElderIdentity) (NetworkDuties, error) {
	credit := genesis.NewCredit(identity.SectionPublicKey())

	proposal, err := genesis.NewProposal(identity, credit)
	if err != nil {
		return nil, err
	}

	share, err := proposal.SignOwn(d.network)
	if err != nil {
		return nil, err
	}

	d.stage = genesisStage{sub: proposingGenesis{proposal: proposal, duties: NewDutyQueue()}}

	d.logger.WithField("credit", credit.ID).Info("Proposing genesis")

	return NetworkDuties{toSection(identity, net.ProposeGenesis{Credit: credit, Share: share})}, nil
}

func (d *NodeDuties) receiveGenesisProposal(credit token.Credit, share threshold.SignatureShare) (NetworkDuties, error) {
	g, ok := d.stage.(genesisStage)
	if !ok {
		if _, isElder := d.stage.(elder); isElder {
			return nil, nil
		}
		return nil, invalidStage("ReceiveGenesisProposal", d.Stage().String())
	}

	switch s := g.sub.(type) {
	case accumulatingGenesis:
		return nil, nil

	case awaitingThreshold:
		proposal, err := genesis.NewProposal(s.identity, credit)
		if err != nil {
			return nil, cm.WrapNodeErr("ReceiveGenesisProposal", cm.InvalidOperation, err)
		}
		if _, err := proposal.Add(share); err != nil {
			return nil, shareErr("ReceiveGenesisProposal", err)
		}
		own, err := proposal.SignOwn(d.network)
		if err != nil {
			return nil, err
		}

		ops := NetworkDuties{toSection(s.identity, net.ProposeGenesis{Credit: credit, Share: own})}

		d.logger.WithFields(logrus.Fields{
			"credit": credit.ID,
			"shares": proposal.Round().Len(),
		}).Info("Joined genesis proposal")

		if signed := proposal.Signed(); signed != nil {
			more, err := d.startAccumulation(s.identity, *signed, s.duties, nil)
			if err != nil {
				return nil, err
			}
			return append(ops, more...), nil
		}

		d.stage = genesisStage{sub: proposingGenesis{proposal: proposal, duties: s.duties}}

		return ops, nil

	case proposingGenesis:
		if credit.ID != s.proposal.Credit().ID {
			return nil, conflictErr("ReceiveGenesisProposal", s.proposal.Credit().ID, credit.ID)
		}

		signed, err := s.proposal.Add(share)
		if err != nil {
			return nil, shareErr("ReceiveGenesisProposal", err)
		}
		if signed == nil {
			return nil, nil
		}

		return d.startAccumulation(s.proposal.Identity(), *signed, s.duties, nil)
	}

	return nil, invalidStage("ReceiveGenesisProposal", d.Stage().String())
}

func (d *NodeDuties) receiveGenesisAccumulation(signed token.SignedCredit, share threshold.SignatureShare) (NetworkDuties, error) {
	g, ok := d.stage.(genesisStage)
	if !ok {
		if _, isElder := d.stage.(elder); isElder {
			return nil, nil
		}
		return nil, invalidStage("ReceiveGenesisAccumulation", d.Stage().String())
	}

	switch s := g.sub.(type) {
	case awaitingThreshold:
		return d.startAccumulation(s.identity, signed, s.duties, &share)

	case proposingGenesis:
		if signed.ID() != s.proposal.Credit().ID {
			return nil, conflictErr("ReceiveGenesisAccumulation", s.proposal.Credit().ID, signed.ID())
		}
		return d.startAccumulation(s.proposal.Identity(), signed, s.duties, &share)

	case accumulatingGenesis:
		if signed.ID() != s.accumulation.SignedCredit().ID() {
			return nil, conflictErr("ReceiveGenesisAccumulation", s.accumulation.SignedCredit().ID(), signed.ID())
		}

		proof, err := s.accumulation.Add(share)
		if err != nil {
			return nil, shareErr("ReceiveGenesisAccumulation", err)
		}
		if proof == nil {
			return nil, nil
		}

		return d.finishGenesis(s.accumulation.Identity(), *proof, s.duties)
	}

	return nil, invalidStage("ReceiveGenesisAccumulation", d.Stage().String())
}

// startAccumulation enters the second round over signed. The node's own
// share is always broadcast. A peer share that came with signed is recorded
// first.
func (d *NodeDuties) startAccumulation(identity peers.ElderIdentity,
	signed token.SignedCredit,
	queue *DutyQueue,
	incoming *threshold.SignatureShare) (NetworkDuties, error) {

	accumulation, err := genesis.NewAccumulation(identity, signed)
	if err != nil {
		return nil, cm.WrapNodeErr("Accumulation", cm.InvalidOperation, err)
	}

	if incoming != nil {
		if _, err := accumulation.Add(*incoming); err != nil {
			return nil, shareErr("Accumulation", err)
		}
	}

	own, err := accumulation.SignOwn(d.network)
	if err != nil {
		return nil, err
	}

	ops := NetworkDuties{toSection(identity, net.AccumulateGenesis{SignedCredit: signed, Share: own})}

	d.logger.WithFields(logrus.Fields{
		"credit": signed.ID(),
		"shares": accumulation.Round().Len(),
	}).Info("Accumulating genesis")

	proof, err := accumulation.Proof()
	if err != nil {
		return nil, err
	}
	if proof != nil {
		more, err := d.finishGenesis(identity, *proof, queue)
		if err != nil {
			return nil, err
		}
		return append(ops, more...), nil
	}

	d.stage = genesisStage{sub: accumulatingGenesis{accumulation: accumulation, duties: queue}}

	return ops, nil
}

func (d *NodeDuties) finishGenesis(identity peers.ElderIdentity, proof token.CreditProof, queue *DutyQueue) (NetworkDuties, error) {
	d.logger.WithField("credit", proof.ID()).Info("Genesis credit proven")

	tp := token.TransferPropagated{CreditProof: proof}
	wallet := token.WalletInfo{
		Replicas: proof.DebitingReplicasKeys,
		History:  token.ActorHistory{Credits: []token.CreditProof{proof}},
	}

	return d.finishTransitionToElder(identity, queue, wallet, &tp)
}

func invalidStage(op, stage string) error {
	return cm.NewNodeErr(op, cm.InvalidOperation, "stage is "+stage)
}

func conflictErr(op, ours, theirs string) error {
	return cm.NewNodeErr(op, cm.InvalidOperation,
		fmt.Sprintf("genesis credit %s conflicts with %s", theirs, ours))
}

func shareErr(op string, err error) error {
	if errors.Is(err, threshold.ErrInvalidShare) {
		return cm.WrapNodeErr(op, cm.InvalidShare, err)
	}
	return err
}
