package keys

import (
	"crypto/ecdsa"

	"github.com/btcsuite/btcd/btcec"
	"github.com/mosaicnetworks/vault/src/common"
)

// ToPublicKey parses the compressed or uncompressed form of a secp256k1 point.
// It returns nil if pub is not a valid point.
func ToPublicKey(pub []byte) *ecdsa.PublicKey {
	if len(pub) == 0 {
		return nil
	}
	pk, err := btcec.ParsePubKey(pub, btcec.S256())
	if err != nil {
		return nil
	}
	return pk.ToECDSA()
}

// FromPublicKey outputs the 33-byte compressed form of the public key.
func FromPublicKey(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return (*btcec.PublicKey)(pub).SerializeCompressed()
}

// NodeName is the 32-bit name of the node owning pubBytes. Section prefixes
// are matched against the high bits of this value.
func NodeName(pubBytes []byte) uint32 {
	return common.Hash32(pubBytes)
}

// PublicKeyHex returns the 0X-prefixed hex form of the compressed public key.
func PublicKeyHex(pub *ecdsa.PublicKey) string {
	return common.EncodeToString(FromPublicKey(pub))
}
