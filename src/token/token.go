package token

import (
	"fmt"
	"math"

	"github.com/mosaicnetworks/vault/src/common"
)

// NanosPerToken is the number of nano units in one whole token.
const NanosPerToken = 1_000_000_000

// MaxSupply is the total amount of currency that will ever exist. All of it is
// minted by the genesis credit.
const MaxSupply = Token(math.MaxUint32 * NanosPerToken)

// Token is an amount expressed in nanos.
type Token uint64

// FromNano ...
func FromNano(n uint64) Token {
	return Token(n)
}

// AsNano ...
func (t Token) AsNano() uint64 {
	return uint64(t)
}

// CheckedAdd returns t+o, and false on overflow.
func (t Token) CheckedAdd(o Token) (Token, bool) {
	sum := t + o
	if sum < t {
		return 0, false
	}
	return sum, true
}

// String formats the amount as whole tokens with nine decimals.
func (t Token) String() string {
	return fmt.Sprintf("%d.%09d", uint64(t)/NanosPerToken, uint64(t)%NanosPerToken)
}

// PublicKey identifies a wallet. Section wallets are keyed by the section's
// BLS public key, node wallets by whatever key the node registered.
type PublicKey []byte

// Hex ...
func (pk PublicKey) Hex() string {
	return common.EncodeToString(pk)
}

// Name is the 32-bit name of the wallet, used to decide which section is
// responsible for it.
func (pk PublicKey) Name() uint32 {
	return common.Hash32(pk)
}
