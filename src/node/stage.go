package node

import (
	"github.com/mosaicnetworks/vault/src/genesis"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/peers"
)

// stage is the node's current level of responsibility. NodeDuties replaces
// its stage on every transition.
type stage interface {
	tag() state.Stage
}

type infant struct{}

type adult struct {
	duties *AdultDuties
}

// genesisStage is only entered by elders of the network's first section.
type genesisStage struct {
	sub genesisSubStage
}

type genesisSubStage interface {
	tag() state.Stage
	queue() *DutyQueue
}

type awaitingThreshold struct {
	identity peers.ElderIdentity
	duties   *DutyQueue
}

type proposingGenesis struct {
	proposal *genesis.Proposal
	duties   *DutyQueue
}

type accumulatingGenesis struct {
	accumulation *genesis.Accumulation
	duties       *DutyQueue
}

type assumingElderDuties struct {
	identity peers.ElderIdentity
	duties   *DutyQueue
}

type elder struct {
	constellation *ElderConstellation
}

func (infant) tag() state.Stage              { return state.Infant }
func (adult) tag() state.Stage               { return state.Adult }
func (g genesisStage) tag() state.Stage      { return g.sub.tag() }
func (assumingElderDuties) tag() state.Stage { return state.AssumingElderDuties }
func (elder) tag() state.Stage               { return state.Elder }

func (awaitingThreshold) tag() state.Stage   { return state.AwaitingGenesisThreshold }
func (proposingGenesis) tag() state.Stage    { return state.ProposingGenesis }
func (accumulatingGenesis) tag() state.Stage { return state.AccumulatingGenesis }

func (s awaitingThreshold) queue() *DutyQueue   { return s.duties }
func (s proposingGenesis) queue() *DutyQueue    { return s.duties }
func (s accumulatingGenesis) queue() *DutyQueue { return s.duties }

// transitionQueue returns the duty queue of a transitional stage.
func transitionQueue(s stage) (*DutyQueue, bool) {
	switch s := s.(type) {
	case genesisStage:
		return s.sub.queue(), true
	case assumingElderDuties:
		return s.duties, true
	default:
		return nil, false
	}
}
