package commands

import (
	"github.com/mosaicnetworks/vault/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

// RootCmd is the root command for the vault
var RootCmd = &cobra.Command{
	Use:              "vault",
	Short:            "section vault node",
	TraverseChildren: true,
}
