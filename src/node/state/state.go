package state

import (
	"sync"
	"sync/atomic"
)

// State captures the state of the node runner: Running or Shutdown.
type State uint32

const (
	// Running is the state in which the node consumes messages from the
	// transport and processes duties.
	Running State = iota

	// Shutdown is the state in which a node stops responding to external events
	// and closes its transport.
	Shutdown
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Stage is the lifecycle stage of a node within its section.
type Stage uint32

const (
	// Infant is the stage of a node that has not been given any role yet.
	Infant Stage = iota

	// Adult is the stage of a node that stores data for its section.
	Adult

	// AwaitingGenesisThreshold is the stage of an elder of the first section
	// waiting for enough elders to run the genesis rounds.
	AwaitingGenesisThreshold

	// ProposingGenesis is the stage in which an elder collects signature
	// shares over the genesis credit.
	ProposingGenesis

	// AccumulatingGenesis is the stage in which an elder collects signature
	// shares over the signed genesis credit.
	AccumulatingGenesis

	// AssumingElderDuties is the stage of a promoted node waiting for the
	// section wallet history.
	AssumingElderDuties

	// Elder is the stage of a node running the section's elder duties.
	Elder
)

// String returns the string representation of a Stage
func (s Stage) String() string {
	switch s {
	case Infant:
		return "Infant"
	case Adult:
		return "Adult"
	case AwaitingGenesisThreshold:
		return "AwaitingGenesisThreshold"
	case ProposingGenesis:
		return "ProposingGenesis"
	case AccumulatingGenesis:
		return "AccumulatingGenesis"
	case AssumingElderDuties:
		return "AssumingElderDuties"
	case Elder:
		return "Elder"
	default:
		return "Unknown"
	}
}

// IsGenesis reports whether the stage is one of the genesis sub-stages.
func (s Stage) IsGenesis() bool {
	return s == AwaitingGenesisThreshold || s == ProposingGenesis || s == AccumulatingGenesis
}

// IsTransitioning reports whether the node is on its way to becoming an elder.
func (s Stage) IsTransitioning() bool {
	return s.IsGenesis() || s == AssumingElderDuties
}

// WGLIMIT is the maximum number of goroutines that can be launched through
// state.GoFunc
const WGLIMIT = 20

// Manager wraps a State and a Stage with get and set methods. It is also used
// to limit the number of goroutines launched by the node, and to wait for all
// of them to complete.
type Manager struct {
	state   State
	stage   Stage
	wg      sync.WaitGroup
	wgCount int32
}

// GetState returns the current state.
func (b *Manager) GetState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

// SetState sets the state.
func (b *Manager) SetState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// GetStage returns the last published stage.
func (b *Manager) GetStage() Stage {
	stageAddr := (*uint32)(&b.stage)
	return Stage(atomic.LoadUint32(stageAddr))
}

// SetStage publishes the stage for concurrent readers.
func (b *Manager) SetStage(s Stage) {
	stageAddr := (*uint32)(&b.stage)
	atomic.StoreUint32(stageAddr, uint32(s))
}

// GoFunc launches a goroutine for a given function, if there are currently
// less than WGLIMIT running. It increments the waitgroup.
func (b *Manager) GoFunc(f func()) bool {
	tempWgCount := atomic.LoadInt32(&b.wgCount)
	if tempWgCount >= WGLIMIT {
		return false
	}
	b.wg.Add(1)
	atomic.AddInt32(&b.wgCount, 1)
	go func() {
		defer b.wg.Done()
		defer atomic.AddInt32(&b.wgCount, -1)
		f()
	}()
	return true
}

// WaitRoutines waits for all the goroutines in the waitgroup.
func (b *Manager) WaitRoutines() {
	b.wg.Wait()
}
