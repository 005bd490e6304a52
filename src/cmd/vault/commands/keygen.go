package commands

import (
	"fmt"

	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/vault"
	"github.com/spf13/cobra"
)

var keygenDataDir string

// NewKeygenCmd produces a KeygenCmd which create a key pair
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create new key pair",
		RunE:  keygen,
	}

	cmd.Flags().StringVar(&keygenDataDir, "datadir", _config.DataDir, "Directory where the private key will be written")

	return cmd
}

func keygen(cmd *cobra.Command, args []string) error {
	key, err := vault.Keygen(keygenDataDir)
	if err != nil {
		return err
	}

	fmt.Printf("Your private key has been saved under: %s\n", keygenDataDir)
	fmt.Printf("Public key: %s\n", keys.PublicKeyHex(&key.PublicKey))

	return nil
}
