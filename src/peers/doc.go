// Package peers describes the members of a section and the role a vault plays
// in it.
//
// A section is the group of vaults responsible for the part of the network's
// address space named by its Prefix. Its elders hold shares of the section's
// BLS key. When a vault is promoted, the routing layer hands it an
// ElderKnowledge snapshot (prefix, elders, key set, own share index and the
// chain of section keys) from which the node builds an ElderIdentity. An
// identity is a value: a change of role builds a new one.
package peers
