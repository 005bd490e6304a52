// Package vault assembles a vault node: key, ledger store, transport, routing
// view, node and HTTP service.
package vault

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/vault/src/config"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/routing"
	"github.com/mosaicnetworks/vault/src/service"
	"github.com/sirupsen/logrus"
)

// Vault is the engine of a node.
type Vault struct {
	Config    *config.Config
	Node      *node.Node
	Section   *routing.Section
	Transport *net.InmemTransport
	Store     ledger.Store
	Service   *service.Service
	Peer      *peers.Peer
	logger    *logrus.Entry
}

// NewVault returns an engine that will join section. A nil section creates a
// new first section.
func NewVault(c *config.Config, section *routing.Section) *Vault {
	engine := &Vault{
		Config:  c,
		Section: section,
		logger:  c.Logger(),
	}

	return engine
}

func (v *Vault) initKey() error {
	if v.Config.Key == nil {
		keyfile := keys.NewSimpleKeyfile(v.Config.Keyfile())

		privKey, err := keyfile.ReadOrCreate()
		if err != nil {
			v.logger.WithError(err).Error("Cannot read or create private key")
			return err
		}

		v.logger.WithField("path", keyfile.Path()).Debug("Loaded private key")

		v.Config.Key = privKey
	}
	return nil
}

func (v *Vault) initStore() error {
	if !v.Config.Store {
		v.Store = ledger.NewInmemStore()

		v.logger.Debug("created new in-mem ledger store")

		return nil
	}

	v.logger.WithField("path", v.Config.DatabaseDir).Debug("Attempting to load or create database")

	store, err := ledger.NewBadgerStore(v.Config.DatabaseDir, v.logger)
	if err != nil {
		return err
	}

	v.Store = store

	return nil
}

func (v *Vault) initTransport() error {
	_, v.Transport = net.NewInmemTransport("")
	return nil
}

func (v *Vault) initSection() error {
	if v.Section == nil {
		section, err := routing.NewSection(peers.Prefix{}, v.Config.Elders, v.logger)
		if err != nil {
			return err
		}
		v.Section = section
	}

	v.Peer = peers.NewPeer(
		keys.PublicKeyHex(&v.Config.Key.PublicKey),
		v.Transport.LocalAddr(),
		v.Config.Moniker,
	)

	v.Section.Join(v.Peer)

	return nil
}

func (v *Vault) initNode() error {
	reward, err := v.Config.Reward()
	if err != nil {
		return fmt.Errorf("parsing reward key: %w", err)
	}

	info := node.NodeInfo{
		Genesis:     v.Config.Genesis,
		RewardKey:   reward,
		MaxCapacity: v.Config.MaxCapacity,
	}

	v.logger.WithFields(logrus.Fields{
		"name":    v.Peer.Name(),
		"genesis": info.Genesis,
		"reward":  reward.Hex(),
	}).Debug("NODE")

	n, err := node.NewNode(
		v.Config.NodeConfig(),
		info,
		v.Config.Key,
		v.Peer,
		v.Section.Network(v.Peer, v.Config.Key),
		v.Store,
		v.Transport,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize node: %w", err)
	}

	v.Node = n

	return nil
}

func (v *Vault) initService() error {
	if !v.Config.NoService {
		v.Service = service.NewService(v.Config.ServiceAddr, v.Node, v.logger)
	}
	return nil
}

// Init ...
func (v *Vault) Init() error {
	if err := v.initKey(); err != nil {
		return err
	}

	if err := v.initStore(); err != nil {
		return err
	}

	if err := v.initTransport(); err != nil {
		return err
	}

	if err := v.initSection(); err != nil {
		return err
	}

	if err := v.initNode(); err != nil {
		return err
	}

	return v.initService()
}

// Start hands the node its first lifecycle event: the genesis node becomes
// the first elder, any other node an adult.
func (v *Vault) Start() {
	if v.Config.Genesis {
		v.Node.Submit(node.InitSectionWallet{})
		return
	}
	v.Node.Submit(node.AssumeAdultDuties{})
}

// Run starts the service and blocks in the node's run loop.
func (v *Vault) Run() {
	if v.Service != nil {
		go v.Service.Serve()
	}

	v.Node.RunAsync()
	v.Start()
	v.Node.WaitRoutines()
}

// Shutdown ...
func (v *Vault) Shutdown() {
	if v.Node != nil {
		v.Node.Shutdown()
	}
}

// Keygen writes a new key to the keyfile of datadir. It fails if a key is
// already there.
func Keygen(datadir string) (*ecdsa.PrivateKey, error) {
	c := config.NewDefaultConfig()
	c.SetDataDir(datadir)

	keyfile := keys.NewSimpleKeyfile(c.Keyfile())

	if _, err := keyfile.ReadKey(); err == nil {
		return nil, fmt.Errorf("Another key already lives under %s", datadir)
	}

	privKey, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}

	if err := keyfile.WriteKey(privKey); err != nil {
		return nil, err
	}

	return privKey, nil
}
