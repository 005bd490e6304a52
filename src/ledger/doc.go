// Package ledger keeps the wallets a section is responsible for.
//
// Elders run a Replica over a Store. The replica is seeded either with the
// genesis credit proof or with the section wallet history obtained from the
// other elders, and then records every credit proof propagated to wallets
// under the section's prefix. Balances are the sum of a wallet's credits.
//
// Two stores are provided: InmemStore, and BadgerStore which persists the
// ledger in a badger database under the node's data directory.
package ledger
