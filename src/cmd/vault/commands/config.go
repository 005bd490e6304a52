package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddConfigFlags adds the flags shared by run and testnet
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Also write logs to this file")
	cmd.Flags().String("moniker", _config.Moniker, "Optional name")

	// Network
	cmd.Flags().DurationP("timeout", "t", _config.SendTimeout, "Timeout of section broadcasts")
	cmd.Flags().Int("cache-size", _config.CacheSize, "Number of message ids remembered to drop duplicates")

	// Service
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB for the ledger")
	cmd.Flags().String("db", _config.DatabaseDir, "Dabatabase directory")

	// Duties
	cmd.Flags().String("reward-key", _config.RewardKey, "Hex encoded wallet receiving the node's rewards")
	cmd.Flags().Uint64("max-capacity", _config.MaxCapacity, "Bytes offered for storage")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	logFields := logrus.Fields{
		"vault.DataDir":     _config.DataDir,
		"vault.LogLevel":    _config.LogLevel,
		"vault.LogFile":     _config.LogFile,
		"vault.Moniker":     _config.Moniker,
		"vault.ServiceAddr": _config.ServiceAddr,
		"vault.NoService":   _config.NoService,
		"vault.SendTimeout": _config.SendTimeout,
		"vault.CacheSize":   _config.CacheSize,
		"vault.Store":       _config.Store,
		"vault.Genesis":     _config.Genesis,
		"vault.MaxCapacity": _config.MaxCapacity,
		"vault.Elders":      _config.Elders,
	}

	if _config.Store {
		logFields["vault.DatabaseDir"] = _config.DatabaseDir
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/vault.toml (.json, .yaml also work)
	viper.SetConfigName("vault")         // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
