// Package config defines the configuration for a vault node.
//
// Regardless of how a vault is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// options, a vault relies on a data directory, defined by Config.DataDir,
// where it expects to find a few additional files:
//
//	priv_key // a plain text file containing the raw private key (cf. vault keygen).
//	vault.toml // (optional) configuration file, read by the CLI.
//	badger_db // the ledger database, when Store is set.
package config
