package node

import (
	"fmt"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/sirupsen/logrus"
)

// ElderConstellation follows the changes of elder set of a section the node is
// an elder of. A change is initiated when the network announces the new
// knowledge, and finished once the new section key is in use.
type ElderConstellation struct {
	duties  *ElderDuties
	network Network
	pending map[string]peers.ElderIdentity
	logger  *logrus.Entry
}

// NewElderConstellation ...
func NewElderConstellation(duties *ElderDuties, network Network, logger *logrus.Entry) *ElderConstellation {
	return &ElderConstellation{
		duties:  duties,
		network: network,
		pending: make(map[string]peers.ElderIdentity),
		logger:  logger.WithField("component", "elder_constellation"),
	}
}

// Duties ...
func (c *ElderConstellation) Duties() *ElderDuties {
	return c.duties
}

// PendingChanges is the number of initiated changes not finished yet.
func (c *ElderConstellation) PendingChanges() int {
	return len(c.pending)
}

// InitiateElderChange records the identity the node will have under the new
// section key. Repeated announcements are ignored.
func (c *ElderConstellation) InitiateElderChange(k peers.ElderKnowledge) (NetworkDuties, error) {
	newKey := k.SectionKey()

	if newKey.Equal(c.duties.Identity().SectionPublicKey()) {
		return nil, nil
	}
	if _, ok := c.pending[newKey.Hex()]; ok {
		return nil, nil
	}

	identity, err := c.network.ElderIdentity(k)
	if err != nil {
		return nil, err
	}

	c.pending[newKey.Hex()] = identity

	c.logger.WithFields(logrus.Fields{
		"new_key": newKey.Hex(),
		"prefix":  identity.Prefix().String(),
		"elders":  identity.Elders().Len(),
	}).Debug("Initiated elder change")

	return nil, nil
}

// FinishElderChange applies the pending change to newKey.
func (c *ElderConstellation) FinishElderChange(previousKey, newKey threshold.PublicKey) (NetworkDuties, error) {
	current := c.duties.Identity().SectionPublicKey()

	if newKey.Equal(current) {
		return nil, nil
	}

	if !previousKey.Equal(current) {
		return nil, cm.NewNodeErr("FinishElderChange", cm.InvalidOperation,
			fmt.Sprintf("previous key %s is not the current section key", previousKey.Hex()))
	}

	identity, ok := c.pending[newKey.Hex()]
	if !ok {
		return nil, cm.NewNodeErr("FinishElderChange", cm.InvalidOperation,
			fmt.Sprintf("no elder change initiated for %s", newKey.Hex()))
	}

	if err := c.duties.UpdateIdentity(identity); err != nil {
		return nil, err
	}

	c.pending = make(map[string]peers.ElderIdentity)

	c.logger.WithFields(logrus.Fields{
		"new_key": newKey.Hex(),
		"prefix":  identity.Prefix().String(),
	}).Info("Finished elder change")

	return nil, nil
}
