package keys

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec"
	"github.com/mosaicnetworks/vault/src/crypto"
)

// Sign hashes data with SHA256 and returns the DER encoded signature.
func Sign(priv *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	sig, err := (*btcec.PrivateKey)(priv).Sign(crypto.SHA256(data))
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// Verify checks a DER signature produced by Sign against the public key.
func Verify(pub *ecdsa.PublicKey, data []byte, sig []byte) bool {
	if pub == nil {
		return false
	}
	s, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return false
	}
	return s.Verify(crypto.SHA256(data), (*btcec.PublicKey)(pub))
}

// EncodeSignature returns the hex form of a DER signature.
func EncodeSignature(sig []byte) string {
	return hex.EncodeToString(sig)
}

// DecodeSignature parses the output of EncodeSignature.
func DecodeSignature(sig string) ([]byte, error) {
	return hex.DecodeString(sig)
}
