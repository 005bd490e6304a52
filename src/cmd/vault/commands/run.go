package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/vault/src/vault"
	"github.com/spf13/cobra"
)

// NewRunCmd returns the command that starts a vault node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runVault,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runVault(cmd *cobra.Command, args []string) error {
	engine := vault.NewVault(_config, nil)

	if err := engine.Init(); err != nil {
		_config.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
		<-signalCh
		_config.Logger().Info("Received an interrupt, stopping the node")
		engine.Shutdown()
	}()

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	AddConfigFlags(cmd)
	cmd.Flags().Bool("genesis", _config.Genesis, "Start the network as its first elder")
}
