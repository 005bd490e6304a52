package net

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultInmemBuffer is the capacity of an InmemTransport's consumer channel.
const DefaultInmemBuffer = 1024

// NewInmemAddr returns a new in-memory addr with
// a randomly generate UUID as the ID.
func NewInmemAddr() string {
	return uuid.New().String()
}

// InmemTransport implements the Transport interface, to allow vaults to be run
// in-memory without going over a network.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan *Envelope
	localAddr  string
	peers      map[string]*InmemTransport
	timeout    time.Duration
	closed     bool
}

// NewInmemTransport is used to initialize a new transport
// and generates a random local address if none is specified
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan *Envelope, DefaultInmemBuffer),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		timeout:    time.Second,
	}
	return addr, trans
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan *Envelope {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Send implements the Transport interface.
func (i *InmemTransport) Send(target string, env *Envelope) error {
	return i.send(context.Background(), target, env)
}

// Broadcast implements the Transport interface.
func (i *InmemTransport) Broadcast(ctx context.Context, targets []string, env *Envelope) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			return i.send(ctx, target, env)
		})
	}

	return g.Wait()
}

func (i *InmemTransport) send(ctx context.Context, target string, env *Envelope) error {
	i.RLock()
	peer, ok := i.peers[target]
	closed := i.closed
	i.RUnlock()

	if closed {
		return fmt.Errorf("transport %s is closed", i.localAddr)
	}

	if !ok {
		return fmt.Errorf("failed to connect to peer: %v", target)
	}

	if err := peer.deliver(ctx, env, i.timeout); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	return nil
}

func (i *InmemTransport) deliver(ctx context.Context, env *Envelope, timeout time.Duration) error {
	i.RLock()
	defer i.RUnlock()

	if i.closed {
		return fmt.Errorf("peer closed")
	}

	select {
	case i.consumerCh <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("command timed out")
	}
}

// Connect is used to connect this transport to another transport for
// a given peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport. Envelopes already in the
// consumer channel can still be drained.
func (i *InmemTransport) Close() error {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
	i.closed = true
	return nil
}

// Listen is an empty function as there is no need to defer
// initialisation of the InMem service
func (i *InmemTransport) Listen() {
}
