package config

import (
	"crypto/ecdsa"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the node's
	// private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the
	// ledger database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel    = "debug"
	DefaultServiceAddr = "127.0.0.1:8000"
	DefaultSendTimeout = 1000 * time.Millisecond
	DefaultCacheSize   = 5000
	DefaultStore       = false
	DefaultGenesis     = false
	DefaultMaxCapacity = 2 * 1024 * 1024 * 1024
	DefaultElders      = 5
)

// Config contains all the configuration properties of a vault node.
type Config struct {
	// DataDir is the top-level directory containing the vault's configuration
	// and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, if set, receives a copy of every log entry.
	LogFile string `mapstructure:"log-file"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// SendTimeout bounds the delivery of a message to the elders of a
	// section.
	SendTimeout time.Duration `mapstructure:"timeout"`

	// CacheSize is the number of message ids remembered to drop duplicates.
	CacheSize int `mapstructure:"cache-size"`

	// Store activates persistant storage of the ledger.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	// Genesis designates the node that starts the network on its own.
	Genesis bool `mapstructure:"genesis"`

	// RewardKey is the hex encoded wallet the node's rewards are paid to. It
	// defaults to the node's own public key.
	RewardKey string `mapstructure:"reward-key"`

	// MaxCapacity is the number of bytes the node offers to store.
	MaxCapacity uint64 `mapstructure:"max-capacity"`

	// Elders is the number of elders of the in-process testnet section.
	Elders int `mapstructure:"elders"`

	// Key is the private key of the node.
	Key *ecdsa.PrivateKey

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    DefaultLogLevel,
		ServiceAddr: DefaultServiceAddr,
		SendTimeout: DefaultSendTimeout,
		CacheSize:   DefaultCacheSize,
		Store:       DefaultStore,
		DatabaseDir: DefaultDatabaseDir(),
		Genesis:     DefaultGenesis,
		MaxCapacity: DefaultMaxCapacity,
		Elders:      DefaultElders,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level vault directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// Reward returns the wallet rewards are paid to.
func (c *Config) Reward() (token.PublicKey, error) {
	if c.RewardKey == "" {
		if c.Key == nil {
			return nil, nil
		}
		return token.PublicKey(keys.FromPublicKey(&c.Key.PublicKey)), nil
	}
	return common.DecodeFromString(c.RewardKey)
}

// NodeConfig derives the configuration of the node's run loop.
func (c *Config) NodeConfig() *node.Config {
	return node.NewConfig(c.CacheSize, c.SendTimeout, c.Moniker, c.Logger().Logger)
}

// Logger returns a formatted logrus Entry, with prefix set to "vault".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				c.LogFile,
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "vault")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level vault config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Vault")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Vault")
		} else {
			return filepath.Join(home, ".vault")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
