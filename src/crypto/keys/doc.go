// Package keys implements the node keys of a vault.
//
// Every vault owns a secp256k1 key-pair. The public key identifies the node
// within its section: its name is a 32-bit hash of the compressed public key,
// and the section elders check envelope signatures against it. The key-pair
// is distinct from the BLS key share a node receives when it becomes an
// elder, which lives in the threshold package.
package keys
