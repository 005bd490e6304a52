// Package threshold wraps the BLS threshold signatures elders use to sign on
// behalf of their section.
//
// A section of n elders shares a PublicKeySet of threshold T: each elder holds
// one SecretKeyShare and any T+1 valid SignatureShares over the same message
// combine into a single Signature that verifies under the section's
// PublicKey. Fewer than T+1 shares never combine. Signatures are deterministic,
// so every subset of T+1 shares yields the same Signature.
//
// The scheme runs over the bn256 pairing: keys in G2, signatures in G1.
package threshold
