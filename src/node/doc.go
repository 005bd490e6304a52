// Package node implements the reactive component of a vault node.
//
// # Stages
//
// A node moves through increasing levels of responsibility within its
// section. It joins as an Infant, starts storing data as an Adult, and is
// eventually promoted to Elder, at which point it runs the section's ledger,
// capacity and reward duties. NodeDuties is the state machine that owns the
// current stage and routes every duty to the right handler. The stage tags
// are defined in the state package.
//
// Promotion takes one of three paths, decided from a single snapshot of the
// network state:
//
//   - The fifth elder of the network's first section originates the genesis
//     credit and starts the genesis rounds.
//   - Earlier elders of the first section wait for the proposal.
//   - Elders of any other section ask the current elders for the section
//     wallet history and finish the promotion when it arrives.
//
// # Genesis
//
// The genesis credit mints the whole supply to the first section's key. It
// is agreed in two threshold signature rounds. In the first, elders sign the
// credit itself; once T+1 shares are combined the resulting SignedCredit is
// broadcast along with a share over it, and the second round accumulates
// those into a CreditProof. Every elder of the first section finishes the
// second round independently and seeds its ledger with the same proof.
//
// # Duty Queue
//
// Elder duties that arrive while the node is still on its way to becoming an
// elder are queued, and replayed in arrival order once the promotion
// completes. The queue is drained before the node registers itself and its
// reward wallet with the rewards subsystem.
//
// # Runner
//
// Node glues NodeDuties to a transport. It consumes envelopes, turns messages
// into duties, processes one duty at a time to completion, feeds the local
// duties it produces back into the state machine, and sends the outbound
// messages.
package node
