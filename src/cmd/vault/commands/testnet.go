package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mosaicnetworks/vault/src/vault"
	"github.com/spf13/cobra"
)

var (
	genesisTimeout = 30 * time.Second
	serve          bool
)

// NewTestnetCmd returns the command that runs a section in-process
func NewTestnetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "testnet",
		Short:   "Run the genesis of a section of in-process nodes",
		PreRunE: loadConfig,
		RunE:    runTestnet,
	}
	AddTestnetFlags(cmd)
	return cmd
}

func runTestnet(cmd *cobra.Command, args []string) error {
	net, err := vault.NewTestnet(_config)
	if err != nil {
		return err
	}
	defer net.Shutdown()

	if err := net.WritePeers(_config.DataDir); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), genesisTimeout)
	defer cancel()

	proof, err := net.Genesis(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Genesis credit: %s\n", proof.ID())
	fmt.Printf("Amount: %s\n", proof.Amount())
	fmt.Printf("Section wallet: %s\n", proof.Recipient().Hex())
	fmt.Printf("Section signature: %s\n", proof.SignedCredit.ActorSignature.Hex())

	if !serve {
		return nil
	}

	fmt.Printf("Serving the API of node0 on %s, interrupt to stop\n", _config.ServiceAddr)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	<-signalCh

	return nil
}

// AddTestnetFlags adds flags to the Testnet command
func AddTestnetFlags(cmd *cobra.Command) {
	AddConfigFlags(cmd)
	cmd.Flags().Int("elders", _config.Elders, "Number of elders of the section")
	cmd.Flags().DurationVar(&genesisTimeout, "genesis-timeout", genesisTimeout, "Give up on genesis after this long")
	cmd.Flags().BoolVar(&serve, "serve", serve, "Keep the nodes running and serve the API of the first one")
}
