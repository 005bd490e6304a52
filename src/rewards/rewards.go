// Package rewards keeps the reward wallets of the nodes of a section.
package rewards

import (
	"errors"
	"sync"

	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

// ErrUnknownNode is returned when asking for the wallet of a node that never
// joined the section.
var ErrUnknownNode = errors.New("unknown node")

// ErrNoWallet is returned for nodes that joined but have not set a wallet yet.
var ErrNoWallet = errors.New("node has no reward wallet")

// Rewards maps node names to their reward wallets.
type Rewards struct {
	sync.RWMutex

	wallets map[uint32]token.PublicKey
	logger  *logrus.Entry
}

// NewRewards ...
func NewRewards(logger *logrus.Entry) *Rewards {
	return &Rewards{
		wallets: make(map[uint32]token.PublicKey),
		logger:  logger.WithField("component", "rewards"),
	}
}

// AddNewNode registers a node with no wallet. It returns false if the node is
// already known.
func (r *Rewards) AddNewNode(node uint32) bool {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.wallets[node]; ok {
		return false
	}
	r.wallets[node] = nil

	r.logger.WithField("node", node).Debug("Added node")

	return true
}

// SetNodeWallet sets the reward wallet of a node, registering the node if
// needed.
func (r *Rewards) SetNodeWallet(node uint32, wallet token.PublicKey) {
	r.Lock()
	defer r.Unlock()

	r.wallets[node] = wallet

	r.logger.WithFields(logrus.Fields{
		"node":   node,
		"wallet": wallet.Hex(),
	}).Debug("Set node wallet")
}

// GetNodeWallet ...
func (r *Rewards) GetNodeWallet(node uint32) (token.PublicKey, error) {
	r.RLock()
	defer r.RUnlock()

	w, ok := r.wallets[node]
	if !ok {
		return nil, ErrUnknownNode
	}
	if w == nil {
		return nil, ErrNoWallet
	}
	return w, nil
}

// Len is the number of known nodes.
func (r *Rewards) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.wallets)
}

// SplitSection forgets the nodes that moved to the sibling section.
func (r *Rewards) SplitSection(prefix peers.Prefix) {
	r.Lock()
	defer r.Unlock()

	for n := range r.wallets {
		if !prefix.Matches(n) {
			delete(r.wallets, n)
		}
	}
}
