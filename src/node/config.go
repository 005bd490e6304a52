package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/vault/src/common"
	"github.com/sirupsen/logrus"
)

// Config contains the configuration of the node runner.
type Config struct {
	// CacheSize is the number of envelope ids remembered to drop duplicates.
	CacheSize int `mapstructure:"cache-size"`

	// SendTimeout bounds the delivery of an outbound message.
	SendTimeout time.Duration `mapstructure:"timeout"`

	// Moniker is a friendly name for the node.
	Moniker string `mapstructure:"moniker"`

	Logger *logrus.Logger
}

// NewConfig ...
func NewConfig(cacheSize int,
	sendTimeout time.Duration,
	moniker string,
	logger *logrus.Logger) *Config {

	return &Config{
		CacheSize:   cacheSize,
		SendTimeout: sendTimeout,
		Moniker:     moniker,
		Logger:      logger,
	}
}

// DefaultConfig ...
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		CacheSize:   5000,
		SendTimeout: 1000 * time.Millisecond,
		Logger:      logger,
	}
}

// TestConfig returns a config whose logs go through t.
func TestConfig(t testing.TB, level logrus.Level) *Config {
	config := DefaultConfig()
	config.Logger = common.NewTestLogger(t, level)
	return config
}
