// Package token defines the accounting artefacts exchanged by vaults: amounts,
// credits and the proofs that a section agreed on them.
package token
