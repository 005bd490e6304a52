// Package genesis implements the two rounds of threshold signing through which
// the first elders of the network mint the total supply.
//
// The fifth elder of the first section builds the one genesis Credit and
// proposes it. In the first round (Proposal) the elders sign the Credit until
// T+1 shares combine into a SignedCredit. In the second round (Accumulation)
// they sign the SignedCredit itself, and T+1 shares of that produce the
// CreditProof which seeds the section wallet. Both rounds share the Round
// accumulator: shares are verified before they are stored, stored by signer
// index so redelivery is harmless, and combined once, after which further
// shares are ignored.
package genesis
