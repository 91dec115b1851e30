package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shizukutanaka/Sekisho/internal/config"
	"github.com/shizukutanaka/Sekisho/internal/engine"
	"github.com/shizukutanaka/Sekisho/internal/liquidity"
	"github.com/shizukutanaka/Sekisho/internal/metrics"
	"github.com/shizukutanaka/Sekisho/internal/policy"
	"github.com/shizukutanaka/Sekisho/internal/storage"
	"github.com/shizukutanaka/Sekisho/internal/token"
)

// Server provides the HTTP interface over the ledger, transfer engine
// and admin controller. Caller identity comes from the X-Caller
// header; authenticating that identity is outside this system.
type Server struct {
	logger   *zap.Logger
	config   config.APIConfig
	router   *mux.Router
	server   *http.Server
	ledger   *token.Ledger
	registry *policy.Registry
	engine   *engine.Engine
	admin    *policy.Admin
	bridge   *liquidity.Bridge
	store    *storage.ReceiptStore
	metrics  *metrics.Metrics
}

// Response represents API response format
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Time    time.Time   `json:"time"`
}

// NewServer creates the API server. store and metrics may be nil.
func NewServer(logger *zap.Logger, cfg config.APIConfig, ledger *token.Ledger, registry *policy.Registry, eng *engine.Engine, admin *policy.Admin, bridge *liquidity.Bridge, store *storage.ReceiptStore, m *metrics.Metrics) *Server {
	s := &Server{
		logger:   logger,
		config:   cfg,
		ledger:   ledger,
		registry: registry,
		engine:   eng,
		admin:    admin,
		bridge:   bridge,
		store:    store,
		metrics:  m,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/supply", s.handleSupply).Methods(http.MethodGet)
	v1.HandleFunc("/balance/{addr}", s.handleBalance).Methods(http.MethodGet)
	v1.HandleFunc("/policy", s.handlePolicy).Methods(http.MethodGet)
	v1.HandleFunc("/transfer", s.handleTransfer).Methods(http.MethodPost)
	v1.HandleFunc("/receipts/{addr}", s.handleReceipts).Methods(http.MethodGet)

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/taxes", s.handleSetTaxes).Methods(http.MethodPost)
	admin.HandleFunc("/max-tx", s.handleSetMaxTx).Methods(http.MethodPost)
	admin.HandleFunc("/max-wallet", s.handleSetMaxWallet).Methods(http.MethodPost)
	admin.HandleFunc("/enable-trading", s.handleEnableTrading).Methods(http.MethodPost)
	admin.HandleFunc("/blacklist", s.handleBlacklist).Methods(http.MethodPost)
	admin.HandleFunc("/fee-exemption", s.handleFeeExemption).Methods(http.MethodPost)
	admin.HandleFunc("/liquidity/add", s.handleAddLiquidity).Methods(http.MethodPost)
	admin.HandleFunc("/liquidity/remove", s.handleRemoveLiquidity).Methods(http.MethodPost)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router = r
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start begins serving in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting API server", zap.String("listen_addr", s.config.ListenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Success: status < http.StatusBadRequest,
		Data:    data,
		Time:    time.Now(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   err.Error(),
		Time:    time.Now(),
	})
}
