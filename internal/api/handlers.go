package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/shizukutanaka/Sekisho/internal/engine"
	"github.com/shizukutanaka/Sekisho/internal/liquidity"
	"github.com/shizukutanaka/Sekisho/internal/policy"
	"github.com/shizukutanaka/Sekisho/internal/token"
)

// callerHeader carries the authenticated caller identity.
const callerHeader = "X-Caller"

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type taxesRequest struct {
	Buy      uint64 `json:"buy"`
	Sell     uint64 `json:"sell"`
	Transfer uint64 `json:"transfer"`
}

type limitRequest struct {
	Amount string `json:"amount"`
}

type addressRequest struct {
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
}

type liquidityRequest struct {
	TokenAmount  string `json:"token_amount,omitempty"`
	NativeAmount string `json:"native_amount,omitempty"`
	Liquidity    string `json:"liquidity,omitempty"`
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":         s.ledger.Name(),
		"symbol":       s.ledger.Symbol(),
		"decimals":     strconv.Itoa(int(s.ledger.Decimals())),
		"total_supply": s.ledger.TotalSupply().String(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.Hex(),
		"balance": s.ledger.BalanceOf(addr).String(),
	})
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	taxes := s.registry.Taxes()
	limits := s.registry.Limits()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"taxes": map[string]uint64{
			"buy":      taxes.Buy,
			"sell":     taxes.Sell,
			"transfer": taxes.Transfer,
		},
		"max_tx":          limits.MaxTx.String(),
		"max_wallet":      limits.MaxWallet.String(),
		"trading_enabled": s.registry.TradingEnabled(),
		"pair":            s.registry.Pair().Hex(),
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	from, err := parseAddress(req.From)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	receipt, err := s.engine.ExecuteTransfer(from, to, amount, caller)
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"from":      receipt.From.Hex(),
		"to":        receipt.To.Hex(),
		"requested": receipt.Requested.String(),
		"tax":       receipt.Tax.String(),
		"net":       receipt.Net.String(),
		"direction": receipt.Direction.String(),
	})
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, errors.New("receipt history disabled"))
		return
	}

	addr, err := pathAddress(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	receipts, err := s.store.ByAddress(r.Context(), addr.Hex(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]map[string]string, 0, len(receipts))
	for _, rec := range receipts {
		out = append(out, map[string]string{
			"id":        rec.ID,
			"from":      rec.From,
			"to":        rec.To,
			"requested": rec.Requested.String(),
			"tax":       rec.Tax.String(),
			"net":       rec.Net.String(),
			"direction": rec.Direction,
		})
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetTaxes(w http.ResponseWriter, r *http.Request) {
	var req taxesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.admin.SetTaxes(caller, req.Buy, req.Sell, req.Transfer); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleSetMaxTx(w http.ResponseWriter, r *http.Request) {
	s.handleSetLimit(w, r, s.admin.SetMaxTx)
}

func (s *Server) handleSetMaxWallet(w http.ResponseWriter, r *http.Request) {
	s.handleSetLimit(w, r, s.admin.SetMaxWallet)
}

func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request, set func(common.Address, *big.Int) error) {
	var req limitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := set(caller, amount); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

func (s *Server) handleEnableTrading(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.admin.EnableTrading(caller); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"trading_enabled": true})
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Enabled {
		err = s.admin.Blacklist(caller, addr)
	} else {
		err = s.admin.Unblacklist(caller, addr)
	}
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleFeeExemption(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Enabled {
		err = s.admin.ExcludeFromFee(caller, addr)
	} else {
		err = s.admin.IncludeInFee(caller, addr)
	}
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	var req liquidityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	tokenAmount, err := parseAmount(req.TokenAmount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	nativeAmount, err := parseAmount(req.NativeAmount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.bridge.AddLiquidity(r.Context(), tokenAmount, nativeAmount, caller); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	var req liquidityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	amount, err := parseAmount(req.Liquidity)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.bridge.RemoveLiquidity(r.Context(), amount, caller); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func pathAddress(r *http.Request) (common.Address, error) {
	return parseAddress(mux.Vars(r)["addr"])
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address: %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %q", raw)
	}
	return amount, nil
}

func callerOf(r *http.Request) (common.Address, error) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		return common.Address{}, errors.New("missing X-Caller header")
	}
	return parseAddress(raw)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, policy.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, liquidity.ErrLiquidityOperationFailed):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, engine.ErrBlacklistedParty),
		errors.Is(err, engine.ErrZeroAmount),
		errors.Is(err, engine.ErrTradingDisabled),
		errors.Is(err, engine.ErrExceedsMaxTx),
		errors.Is(err, engine.ErrExceedsMaxWallet),
		errors.Is(err, policy.ErrTaxTooHigh),
		errors.Is(err, policy.ErrLimitTooLow),
		errors.Is(err, token.ErrInsufficientBalance):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
