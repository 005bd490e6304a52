package node

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

// ErrNotElder is returned by the queries that only elders can answer.
var ErrNotElder = errors.New("node is not an elder")

// Node defines a vault node
type Node struct {
	state.Manager

	conf   *Config
	logger *logrus.Entry

	key  *ecdsa.PrivateKey
	self *peers.Peer

	network Network
	store   ledger.Store

	duties     *NodeDuties
	dutiesLock sync.Mutex

	trans net.Transport
	netCh <-chan *net.Envelope

	submitCh   chan NetworkDuty
	shutdownCh chan struct{}
	seen       *lru.Cache[uuid.UUID, struct{}]

	metrics *Metrics

	start     time.Time
	processed int
	failed    int
}

// NewNode is a factory method that returns a Node instance
func NewNode(conf *Config,
	info NodeInfo,
	key *ecdsa.PrivateKey,
	self *peers.Peer,
	network Network,
	store ledger.Store,
	trans net.Transport,
) (*Node, error) {

	seen, err := lru.New[uuid.UUID, struct{}](conf.CacheSize)
	if err != nil {
		return nil, err
	}

	logger := conf.Logger.WithFields(logrus.Fields{
		"this_id": self.Name(),
		"moniker": self.Moniker,
	})

	node := Node{
		conf:       conf,
		logger:     logger,
		key:        key,
		self:       self,
		network:    network,
		store:      store,
		duties:     NewNodeDuties(info, network, store, logger),
		trans:      trans,
		netCh:      trans.Consumer(),
		submitCh:   make(chan NetworkDuty, 64),
		shutdownCh: make(chan struct{}),
		seen:       seen,
		metrics:    NewMetrics(strconv.FormatUint(uint64(self.Name()), 10)),
		start:      time.Now(),
	}

	return &node, nil
}

// ID is the node's name.
func (n *Node) ID() uint32 {
	return n.self.Name()
}

// Peer ...
func (n *Node) Peer() *peers.Peer {
	return n.self
}

// Metrics ...
func (n *Node) Metrics() *Metrics {
	return n.metrics
}

// RunAsync calls Run as a separate thread. Shutdown waits for it to return.
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")
	n.GoFunc(n.Run)
}

// Run invokes the main loop of the node. Envelopes and submitted duties are
// handled one at a time, each to completion.
func (n *Node) Run() {
	n.trans.Listen()

	for {
		select {
		case env := <-n.netCh:
			n.handleEnvelope(env)
		case duty := <-n.submitCh:
			n.process(duty)
		case <-n.shutdownCh:
			return
		}
	}
}

// Submit hands a duty to the run loop. It is how the routing layer delivers
// lifecycle events such as AssumeAdultDuties.
func (n *Node) Submit(duty NetworkDuty) {
	select {
	case n.submitCh <- duty:
	case <-n.shutdownCh:
	}
}

// Stage returns the node's current stage.
func (n *Node) Stage() state.Stage {
	return n.GetStage()
}

func (n *Node) handleEnvelope(env *net.Envelope) {
	kind := "nil"
	if env.Msg != nil {
		kind = env.Msg.Kind()
	}

	if n.seen.Contains(env.ID) {
		n.metrics.duplicates.Inc()
		n.logger.WithField("id", env.ID).Debug("Dropping duplicate envelope")
		return
	}
	n.seen.Add(env.ID, struct{}{})

	if err := env.Verify(); err != nil {
		n.logger.WithError(err).WithField("kind", kind).Warn("Dropping envelope")
		return
	}

	n.metrics.received.WithLabelValues(kind).Inc()

	duty, ok := dutyFromEnvelope(env)
	if !ok {
		n.logger.WithFields(logrus.Fields{
			"kind": kind,
			"from": env.SenderName(),
		}).Debug("Received response")
		return
	}

	n.process(duty)
}

// process runs duty and then every local duty it produces, breadth first.
// Outbound messages are sent as they come up.
func (n *Node) process(duty NetworkDuty) {
	pending := NetworkDuties{duty}

	for len(pending) > 0 {
		d := pending[0]
		pending = pending[1:]

		if s, ok := d.(Send); ok {
			if err := n.send(s); err != nil {
				n.logger.WithError(err).WithField("msg", s.Msg.Kind()).Error("Sending")
			}
			continue
		}

		n.dutiesLock.Lock()
		out, err := n.duties.Process(d)
		stage := n.duties.Stage()
		queued := n.duties.QueueLen()
		if err != nil {
			n.failed++
		} else {
			n.processed++
		}
		n.dutiesLock.Unlock()

		n.SetStage(stage)
		n.metrics.stage.Set(float64(stage))
		n.metrics.queueLen.Set(float64(queued))

		if err != nil {
			n.metrics.dutyErrors.WithLabelValues(d.Kind()).Inc()
			n.logger.WithError(err).WithFields(logrus.Fields{
				"duty":  d.Kind(),
				"stage": stage.String(),
			}).Error("Processing duty")
			continue
		}

		n.metrics.dutiesProcessed.WithLabelValues(d.Kind()).Inc()

		pending = append(pending, out...)
	}
}

func (n *Node) send(s Send) error {
	env := net.NewEnvelope(s.Msg, s.Dst)
	env.CorrelationID = s.CorrelationID

	if err := env.Sign(n.key); err != nil {
		return err
	}

	n.metrics.sent.WithLabelValues(s.Msg.Kind()).Inc()

	if !s.Dst.Section {
		peer, ok := n.network.Lookup(s.Dst.Name)
		if !ok {
			return fmt.Errorf("unknown node %s", s.Dst)
		}
		return n.trans.Send(peer.NetAddr, env)
	}

	snap := n.network.Snapshot()
	if snap.Elders == nil {
		return nil
	}

	targets := []string{}
	for _, p := range snap.Elders.Peers {
		if p.PubKeyHex == n.self.PubKeyHex {
			continue
		}
		targets = append(targets, p.NetAddr)
	}

	n.logger.WithFields(logrus.Fields{
		"msg":     s.Msg.Kind(),
		"targets": len(targets),
	}).Debug("Broadcasting to section")

	ctx, cancel := context.WithTimeout(context.Background(), n.conf.SendTimeout)
	defer cancel()

	return n.trans.Broadcast(ctx, targets, env)
}

// GenesisProof returns the genesis credit proof recorded in the node's ledger.
func (n *Node) GenesisProof() (*token.CreditProof, error) {
	n.dutiesLock.Lock()
	duties := n.duties.ElderDuties()
	n.dutiesLock.Unlock()

	if duties == nil {
		return nil, ErrNotElder
	}
	return duties.GenesisProof()
}

// Balance returns the balance of wallet in the node's ledger.
func (n *Node) Balance(wallet token.PublicKey) (token.Token, error) {
	n.dutiesLock.Lock()
	duties := n.duties.ElderDuties()
	n.dutiesLock.Unlock()

	if duties == nil {
		return 0, ErrNotElder
	}
	return duties.Replica().Balance(wallet)
}

// Shutdown the node
func (n *Node) Shutdown() {
	if n.GetState() != state.Shutdown {
		n.logger.Debug("Shutdown")

		n.SetState(state.Shutdown)

		close(n.shutdownCh)

		n.WaitRoutines()

		n.trans.Close()

		n.store.Close()
	}
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	n.dutiesLock.Lock()
	stage := n.duties.Stage()
	queued := n.duties.QueueLen()
	used := n.duties.UsedSpace().Used()
	processed := n.processed
	failed := n.failed
	n.dutiesLock.Unlock()

	s := map[string]string{
		"id":         fmt.Sprint(n.self.Name()),
		"moniker":    n.self.Moniker,
		"state":      n.GetState().String(),
		"stage":      stage.String(),
		"duty_queue": strconv.Itoa(queued),
		"processed":  strconv.Itoa(processed),
		"failed":     strconv.Itoa(failed),
		"used_space": strconv.FormatUint(used, 10),
		"uptime":     time.Since(n.start).Round(time.Second).String(),
		"num_elders": "0",
		"store":      n.store.StorePath(),
	}

	if snap := n.network.Snapshot(); snap.Elders != nil {
		s["num_elders"] = strconv.Itoa(snap.Elders.Len())
		s["prefix"] = snap.Prefix.String()
	}

	return s
}
