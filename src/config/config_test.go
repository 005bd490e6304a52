package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

func TestSetDataDir(t *testing.T) {
	conf := NewDefaultConfig()

	conf.SetDataDir("/tmp/vault0")

	if conf.DatabaseDir != filepath.Join("/tmp/vault0", DefaultBadgerFile) {
		t.Fatalf("DatabaseDir should follow DataDir, got %s", conf.DatabaseDir)
	}

	if conf.Keyfile() != filepath.Join("/tmp/vault0", DefaultKeyfile) {
		t.Fatalf("Keyfile should be inside DataDir, got %s", conf.Keyfile())
	}

	conf.DatabaseDir = "/data/db"
	conf.SetDataDir("/tmp/vault1")

	if conf.DatabaseDir != "/data/db" {
		t.Fatalf("an explicit DatabaseDir should not change, got %s", conf.DatabaseDir)
	}
}

func TestLogLevel(t *testing.T) {
	levels := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bananas": logrus.DebugLevel,
	}

	for s, l := range levels {
		if LogLevel(s) != l {
			t.Fatalf("LogLevel(%s) should be %v, not %v", s, l, LogLevel(s))
		}
	}
}

func TestLogFile(t *testing.T) {
	conf := NewDefaultConfig()
	conf.LogLevel = "info"
	conf.LogFile = filepath.Join(t.TempDir(), "vault.log")

	conf.Logger().WithField("answer", 42).Info("hello")

	data, err := os.ReadFile(conf.LogFile)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), `"prefix":"vault"`) {
		t.Fatalf("log file should contain the entry, got %s", data)
	}
}

func TestReward(t *testing.T) {
	conf := NewTestConfig(t, common.TestLogLevel)

	reward, err := conf.Reward()
	if err != nil || reward != nil {
		t.Fatalf("no reward key without a key, got %v, %v", reward, err)
	}

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	conf.Key = key

	reward, err = conf.Reward()
	if err != nil {
		t.Fatal(err)
	}
	if reward.Hex() != token.PublicKey(keys.FromPublicKey(&key.PublicKey)).Hex() {
		t.Fatalf("reward key should default to the node key")
	}

	conf.RewardKey = "0xAB01"

	reward, err = conf.Reward()
	if err != nil {
		t.Fatal(err)
	}
	if len(reward) != 2 || reward[0] != 0xAB {
		t.Fatalf("reward key should be decoded, got %v", reward)
	}

	nodeConf := conf.NodeConfig()
	if nodeConf.CacheSize != DefaultCacheSize || nodeConf.SendTimeout != DefaultSendTimeout {
		t.Fatalf("node config should carry cache size and timeout")
	}
}
