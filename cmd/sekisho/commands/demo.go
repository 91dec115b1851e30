package commands

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/shizukutanaka/Sekisho/internal/app"
	"github.com/shizukutanaka/Sekisho/internal/config"
	"github.com/shizukutanaka/Sekisho/internal/logging"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted launch scenario against an in-process pool",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

var (
	demoOwner     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	demoTax       = common.HexToAddress("0x1000000000000000000000000000000000000002")
	demoLiquidity = common.HexToAddress("0x1000000000000000000000000000000000000003")
	demoTrader    = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{
		Wallets: config.WalletsConfig{
			Owner:     demoOwner.Hex(),
			Tax:       demoTax.Hex(),
			Liquidity: demoLiquidity.Hex(),
		},
		Storage: config.StorageConfig{Enabled: true, Path: ":memory:"},
		Log:     config.LogConfig{Level: "warn", Encoding: "console"},
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sys, err := app.New(logger, cfg, nil)
	if err != nil {
		return err
	}
	if err := sys.Start(); err != nil {
		return err
	}
	defer sys.Shutdown(context.Background())

	ctx := context.Background()
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(cfg.Token.Decimals)), nil)
	tokens := func(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), unit) }
	show := func(label string, addr common.Address) {
		whole := new(big.Int).Div(sys.Ledger.BalanceOf(addr), unit)
		fmt.Printf("  %-16s %s %s\n", label, humanize.BigComma(whole), cfg.Token.Symbol)
	}

	fmt.Println("== Launch sequence ==")

	// Pre-launch: owner seeds the liquidity wallet and a trader while
	// the trading gate is still closed (owner bypass).
	if _, err := sys.Engine.ExecuteTransfer(demoOwner, demoLiquidity, tokens(200_000), demoOwner); err != nil {
		return err
	}
	if _, err := sys.Engine.ExecuteTransfer(demoOwner, demoTrader, tokens(5_000), demoOwner); err != nil {
		return err
	}
	fmt.Println("pre-launch transfers done (trading gate closed, owner bypass)")
	show("owner", demoOwner)
	show("liquidity", demoLiquidity)
	show("trader", demoTrader)

	// Seed the pool and open the gate.
	if err := sys.Bridge.AddLiquidity(ctx, tokens(100_000), tokens(50), demoOwner); err != nil {
		return err
	}
	if err := sys.Admin.EnableTrading(demoOwner); err != nil {
		return err
	}
	fmt.Println("\nliquidity added, trading enabled")
	show("pool", sys.Pool.PairAddress())

	// A public buy: movement from the pair is taxed at the buy rate.
	pair := sys.Pool.PairAddress()
	receipt, err := sys.Engine.ExecuteTransfer(pair, demoTrader, tokens(1_000), demoTrader)
	if err != nil {
		return err
	}
	fmt.Printf("\nbuy of %s tokens: tax %s, net %s (direction %s)\n",
		humanize.BigComma(big.NewInt(1_000)),
		humanize.BigComma(new(big.Int).Div(receipt.Tax, unit)),
		humanize.BigComma(new(big.Int).Div(receipt.Net, unit)),
		receipt.Direction)
	show("trader", demoTrader)
	show("tax wallet", demoTax)

	// A public sell back to the pool.
	receipt, err = sys.Engine.ExecuteTransfer(demoTrader, pair, tokens(500), demoTrader)
	if err != nil {
		return err
	}
	fmt.Printf("\nsell of %s tokens: tax %s, net %s (direction %s)\n",
		humanize.BigComma(big.NewInt(500)),
		humanize.BigComma(new(big.Int).Div(receipt.Tax, unit)),
		humanize.BigComma(new(big.Int).Div(receipt.Net, unit)),
		receipt.Direction)
	show("trader", demoTrader)
	show("tax wallet", demoTax)

	// Blacklist demonstration.
	if err := sys.Admin.Blacklist(demoOwner, demoTrader); err != nil {
		return err
	}
	if _, err := sys.Engine.ExecuteTransfer(demoTrader, demoOwner, tokens(1), demoTrader); err != nil {
		fmt.Printf("\nblacklisted trader rejected: %v\n", err)
	}

	if sys.Store != nil {
		n, err := sys.Store.Count(ctx)
		if err == nil {
			fmt.Printf("\n%d receipts recorded\n", n)
		}
	}

	return nil
}
