package genesis

import (
	"github.com/google/uuid"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/token"
)

const (
	// ElderCount is the number of elders the first section must have before
	// genesis starts.
	ElderCount = 5
	// MaxSectionChainLen bounds the section key history while genesis can
	// still be originated.
	MaxSectionChainLen = ElderCount
	// Memo is the message carried by the genesis credit.
	Memo = "genesis"
)

// NewCredit builds the genesis credit: the whole supply, to the section key.
func NewCredit(sectionKey threshold.PublicKey) token.Credit {
	return token.Credit{
		ID:        uuid.New().String(),
		Amount:    token.MaxSupply,
		Recipient: token.PublicKey(sectionKey),
		Msg:       Memo,
	}
}

// IsGenesisCredit checks the fixed fields of a proposed credit. The id is
// chosen by the originator.
func IsGenesisCredit(c token.Credit, sectionKey threshold.PublicKey) bool {
	return c.ID != "" &&
		c.Amount == token.MaxSupply &&
		c.Msg == Memo &&
		sectionKey.Equal(threshold.PublicKey(c.Recipient))
}
