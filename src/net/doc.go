// Package net carries messages between vaults.
//
// Vaults exchange signed Envelopes. An Envelope names its destination as a
// Location: a single node, or the section responsible for a name, in which case
// the sender fans the Envelope out to that section's elders. Messages are one
// way; a response is a new Envelope whose CorrelationID is the ID of the
// request.
//
// The Transport interface abstracts the medium. InmemTransport connects vaults
// running in the same process and is what local sections and tests use.
// Routing between sections, retries and NAT traversal belong to the routing
// layer and are not implemented here.
package net
