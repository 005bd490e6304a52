package net

import "context"

// Transport provides an interface for network transports
// to allow a node to communicate with other nodes.
type Transport interface {

	// Starts the transport listening
	Listen()

	// Consumer returns a channel of inbound envelopes.
	Consumer() <-chan *Envelope

	// LocalAddr is used to return our local address
	LocalAddr() string

	// Send delivers env to the node at target.
	Send(target string, env *Envelope) error

	// Broadcast delivers env to every target concurrently. It returns the
	// first error encountered, after all deliveries were attempted.
	Broadcast(ctx context.Context, targets []string, env *Envelope) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
