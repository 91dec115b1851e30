package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/api"
	"github.com/shizukutanaka/Sekisho/internal/config"
	"github.com/shizukutanaka/Sekisho/internal/engine"
	"github.com/shizukutanaka/Sekisho/internal/events"
	"github.com/shizukutanaka/Sekisho/internal/liquidity"
	"github.com/shizukutanaka/Sekisho/internal/metrics"
	"github.com/shizukutanaka/Sekisho/internal/policy"
	"github.com/shizukutanaka/Sekisho/internal/storage"
	"github.com/shizukutanaka/Sekisho/internal/token"
)

// System wires the ledger, policy registry, transfer engine, admin
// controller and liquidity bridge into one running instance. The
// registry and ledger live for the lifetime of the process.
type System struct {
	logger *zap.Logger
	cfg    *config.Config

	Ledger   *token.Ledger
	Registry *policy.Registry
	Emitter  *events.Emitter
	Engine   *engine.Engine
	Admin    *policy.Admin
	Bridge   *liquidity.Bridge
	Pool     liquidity.Peer
	Store    *storage.ReceiptStore
	Metrics  *metrics.Metrics

	server *api.Server
	cancel context.CancelFunc
}

// New builds a system from configuration. When peer is nil an
// in-process constant-product pool is created; its address becomes
// the PairIdentity. The owner wallet receives the full initial supply;
// owner, tax wallet and liquidity wallet start fee-exempt. The
// liquidity wallet doubles as the system's own balance that funds
// liquidity operations.
func New(logger *zap.Logger, cfg *config.Config, peer liquidity.Peer) (*System, error) {
	ledger := token.NewLedger(cfg.Token.Name, cfg.Token.Symbol, cfg.Token.Decimals)

	owner := cfg.OwnerAddress()
	taxWallet := cfg.TaxAddress()
	liquidityWallet := cfg.LiquidityAddress()

	supply := cfg.InitialSupplyBaseUnits()
	if err := ledger.Mint(owner, supply); err != nil {
		return nil, err
	}

	if peer == nil {
		pairAddr := crypto.CreateAddress(owner, 1)
		peer = liquidity.NewConstantProductPool(ledger, pairAddr)
	}

	registry := policy.NewRegistryWithSchedule(
		peer.PairAddress(),
		policy.TaxSchedule{Buy: cfg.Tax.Buy, Sell: cfg.Tax.Sell, Transfer: cfg.Tax.Transfer},
		policy.TransferLimits{
			MaxTx:     percentOf(supply, cfg.Limits.MaxTxPercent),
			MaxWallet: percentOf(supply, cfg.Limits.MaxWalletPercent),
		},
	)
	registry.SetFeeExempt(owner, true)
	registry.SetFeeExempt(taxWallet, true)
	registry.SetFeeExempt(liquidityWallet, true)

	isOwner := func(caller common.Address) bool { return caller == owner }

	emitter := events.NewEmitter()
	m := metrics.New()
	guard := engine.NewGuard()

	eng := engine.New(logger.Named("engine"), ledger, registry, emitter, m, guard, owner, taxWallet)
	admin := policy.NewAdmin(logger.Named("admin"), registry, ledger, emitter, isOwner)
	bridge := liquidity.NewBridge(logger.Named("liquidity"), ledger, peer, emitter, m, guard, isOwner, liquidityWallet, liquidityWallet)

	var store *storage.ReceiptStore
	if cfg.Storage.Enabled {
		var err error
		store, err = storage.NewReceiptStore(logger.Named("storage"), cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
	}

	sys := &System{
		logger:   logger,
		cfg:      cfg,
		Ledger:   ledger,
		Registry: registry,
		Emitter:  emitter,
		Engine:   eng,
		Admin:    admin,
		Bridge:   bridge,
		Pool:     peer,
		Store:    store,
		Metrics:  m,
	}

	if cfg.API.Enabled {
		sys.server = api.NewServer(logger.Named("api"), cfg.API, ledger, registry, eng, admin, bridge, store, m)
	}

	return sys, nil
}

// Start launches the event recorder and, if enabled, the API server.
func (s *System) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.recordEvents(ctx)

	if s.server != nil {
		if err := s.server.Start(); err != nil {
			return err
		}
	}

	s.logger.Info("System started",
		zap.String("token", s.cfg.Token.Symbol),
		zap.String("pair", s.Pool.PairAddress().Hex()),
		zap.String("total_supply", s.Ledger.TotalSupply().String()))

	return nil
}

// Shutdown stops the API server and closes the receipt store.
func (s *System) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server != nil {
		if err := s.server.Stop(ctx); err != nil {
			return err
		}
	}
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}

// recordEvents tails the emitter: transfer receipts go to the history
// store, gate openings move the trading gauge.
func (s *System) recordEvents(ctx context.Context) {
	transfers := s.Emitter.Subscribe("transfer_executed")
	gate := s.Emitter.Subscribe("trading_enabled")

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-transfers:
			t, ok := ev.(events.EventTransferExecuted)
			if !ok || s.Store == nil {
				continue
			}
			_, err := s.Store.Save(ctx, &storage.Receipt{
				From:      t.From.Hex(),
				To:        t.To.Hex(),
				Requested: t.Requested,
				Tax:       t.Tax,
				Net:       t.Net,
				Direction: t.Direction,
				CreatedAt: t.Timestamp,
			})
			if err != nil {
				s.logger.Error("Failed to persist receipt", zap.Error(err))
			}
		case <-gate:
			s.Metrics.TradingEnabled.Set(1)
		}
	}
}

func percentOf(supply *big.Int, pct uint64) *big.Int {
	out := new(big.Int).Mul(supply, new(big.Int).SetUint64(pct))
	return out.Div(out, big.NewInt(100))
}
