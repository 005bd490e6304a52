package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
)

// PrivateKeyLen is the length in bytes of a dumped private key.
const PrivateKeyLen = btcec.PrivKeyBytesLen

// GenerateECDSAKey creates a new secp256k1 private key.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return priv.ToECDSA(), nil
}

// DumpPrivateKey exports a private key into its 32-byte scalar.
func DumpPrivateKey(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return (*btcec.PrivateKey)(priv).Serialize()
}

// ParsePrivateKey rebuilds a private key from the scalar produced by
// DumpPrivateKey.
func ParsePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != PrivateKeyLen {
		return nil, fmt.Errorf("invalid length, need %d bytes, got %d", PrivateKeyLen, len(d))
	}

	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), d)

	// zero or >= N reduce to a scalar that no longer matches the input
	if priv.D.Sign() <= 0 || priv.D.Cmp(btcec.S256().N) >= 0 {
		return nil, fmt.Errorf("invalid private key, out of range")
	}

	return priv.ToECDSA(), nil
}

// PrivateKeyHex returns the hexadecimal dump of a private key.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(DumpPrivateKey(key))
}
