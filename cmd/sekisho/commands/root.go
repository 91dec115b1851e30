package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sekisho",
	Short: "Policy-Gated Token Ledger",
	Long: `Sekisho is a fungible-token ledger with transfer-time policy
enforcement: directional buy/sell/transfer taxes, per-transaction and
per-wallet caps, an address blacklist, fee exemptions, and a one-way
trading gate. It ships with an owner-gated liquidity bridge to an AMM
pool and an HTTP API over the whole surface.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
