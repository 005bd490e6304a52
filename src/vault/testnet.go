package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mosaicnetworks/vault/src/config"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/routing"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// pollInterval is how often the testnet checks the stages of its nodes.
const pollInterval = 10 * time.Millisecond

// Testnet runs the first section of a network in one process. Every node has
// its own ledger and transport. Only the first node serves the HTTP API.
type Testnet struct {
	Section *routing.Section
	Vaults  []*Vault
	logger  *logrus.Entry
}

// NewTestnet builds base.Elders nodes. Each one gets a sub-directory of
// base.DataDir.
func NewTestnet(base *config.Config) (*Testnet, error) {
	if base.Elders < 1 {
		return nil, fmt.Errorf("a testnet needs at least one elder, not %d", base.Elders)
	}

	logger := base.Logger()

	section, err := routing.NewSection(peers.Prefix{}, base.Elders, logger)
	if err != nil {
		return nil, err
	}

	t := &Testnet{
		Section: section,
		logger:  logger,
	}

	for i := 0; i < base.Elders; i++ {
		c := *base
		c.Moniker = fmt.Sprintf("node%d", i)
		c.DataDir = filepath.Join(base.DataDir, c.Moniker)
		c.DatabaseDir = filepath.Join(c.DataDir, config.DefaultBadgerFile)
		c.Genesis = false
		c.RewardKey = ""
		c.NoService = base.NoService || i > 0

		key, err := keys.GenerateECDSAKey()
		if err != nil {
			return nil, err
		}
		c.Key = key

		v := NewVault(&c, section)
		if err := v.Init(); err != nil {
			t.Shutdown()
			return nil, fmt.Errorf("%s: %w", c.Moniker, err)
		}

		t.Vaults = append(t.Vaults, v)
	}

	for _, a := range t.Vaults {
		for _, b := range t.Vaults {
			if a != b {
				a.Transport.Connect(b.Transport.LocalAddr(), b.Transport)
			}
		}
	}

	return t, nil
}

// Peers lists the nodes of the testnet.
func (t *Testnet) Peers() []*peers.Peer {
	res := make([]*peers.Peer, len(t.Vaults))
	for i, v := range t.Vaults {
		res[i] = v.Peer
	}
	return res
}

// WritePeers writes peers.json in dir.
func (t *Testnet) WritePeers(dir string) error {
	return peers.NewJSONPeerSet(dir).Write(t.Peers())
}

// Genesis starts every node and promotes them to elders one at a time. The
// last promotion completes the section and starts the genesis rounds. It
// returns the genesis proof once every node holds it.
func (t *Testnet) Genesis(ctx context.Context) (*token.CreditProof, error) {
	for _, v := range t.Vaults {
		if v.Service != nil {
			go v.Service.Serve()
		}
		v.Node.RunAsync()
		v.Node.Submit(node.AssumeAdultDuties{})
	}

	for _, v := range t.Vaults {
		if err := waitStage(ctx, v.Node, state.Adult); err != nil {
			return nil, err
		}
	}

	for i, v := range t.Vaults {
		k, err := t.Section.PromoteElder(v.Peer)
		if err != nil {
			return nil, err
		}

		v.Node.Submit(node.AssumeElderDuties{Knowledge: k})

		if i == len(t.Vaults)-1 {
			break
		}

		if err := waitStage(ctx, v.Node, state.AwaitingGenesisThreshold); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, v := range t.Vaults {
		n := v.Node
		g.Go(func() error {
			return waitStage(gctx, n, state.Elder)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var first *token.CreditProof
	for _, v := range t.Vaults {
		proof, err := v.Node.GenesisProof()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Config.Moniker, err)
		}
		if first == nil {
			first = proof
			continue
		}
		if proof.ID() != first.ID() {
			return nil, fmt.Errorf("%s recorded genesis credit %s, not %s", v.Config.Moniker, proof.ID(), first.ID())
		}
	}

	t.logger.WithFields(logrus.Fields{
		"credit":  first.ID(),
		"amount":  first.Amount().String(),
		"elders":  len(t.Vaults),
		"section": first.Recipient().Hex(),
	}).Info("Genesis complete")

	return first, nil
}

// Shutdown stops every node.
func (t *Testnet) Shutdown() {
	for _, v := range t.Vaults {
		v.Shutdown()
	}
}

func waitStage(ctx context.Context, n *node.Node, stage state.Stage) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if n.Stage() == stage {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("node %d waiting for %s in %s: %w", n.ID(), stage, n.Stage(), ctx.Err())
		case <-ticker.C:
		}
	}
}
