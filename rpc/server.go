package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stablefun/native/stable"
)

// Server exposes the issuance engine over HTTP.
type Server struct {
	engine *stable.Engine
	log    *slog.Logger
}

// NewServer constructs a server. A nil logger falls back to slog.Default.
func NewServer(engine *stable.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, log: log}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1/stablecoins", func(sr chi.Router) {
		sr.Post("/", s.handleInitialize)
		sr.Get("/", s.handleList)
		sr.Get("/{id}", s.handleGet)
		sr.Get("/{id}/vault", s.handleGetVault)
		sr.Post("/{id}/mint", s.handleMint)
		sr.Post("/{id}/redeem", s.handleRedeem)
		sr.Put("/{id}/settings", s.handleUpdateSettings)
		sr.Put("/{id}/metadata", s.handleUpdateMetadata)
	})
	return r
}

type initializeRequest struct {
	Authority         string `json:"authority"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	TargetCurrency    string `json:"targetCurrency"`
	InitialSupply     uint64 `json:"initialSupply"`
	TokenMint         string `json:"tokenMint"`
	CollateralMint    string `json:"collateralMint"`
	PriceFeed         string `json:"priceFeed"`
	CollateralAccount string `json:"collateralAccount"`
}

type stablecoinResponse struct {
	ID             string `json:"id"`
	Authority      string `json:"authority"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	TargetCurrency string `json:"targetCurrency"`
	TokenMint      string `json:"tokenMint"`
	CollateralMint string `json:"collateralMint"`
	PriceFeed      string `json:"priceFeed"`
	VaultID        string `json:"vaultId"`
	CurrentSupply  uint64 `json:"currentSupply"`
	MinRatioBps    uint16 `json:"minCollateralRatioBps"`
	FeeBps         uint16 `json:"feeBps"`
	MaxSupply      uint64 `json:"maxSupply"`
	MintPaused     bool   `json:"mintPaused"`
	RedeemPaused   bool   `json:"redeemPaused"`
	TotalMinted    uint64 `json:"totalMinted"`
	TotalBurned    uint64 `json:"totalBurned"`
	TotalFees      uint64 `json:"totalFees"`
	CreatedAt      int64  `json:"createdAt"`
	LastUpdated    int64  `json:"lastUpdated"`
}

func renderStablecoin(coin *stable.Stablecoin) stablecoinResponse {
	return stablecoinResponse{
		ID:             coin.ID,
		Authority:      string(coin.Authority),
		Name:           coin.Name,
		Symbol:         coin.Symbol,
		TargetCurrency: coin.TargetCurrency,
		TokenMint:      string(coin.TokenMint),
		CollateralMint: string(coin.CollateralMint),
		PriceFeed:      string(coin.PriceFeed),
		VaultID:        coin.VaultID,
		CurrentSupply:  coin.CurrentSupply,
		MinRatioBps:    coin.Settings.MinCollateralRatioBps,
		FeeBps:         coin.Settings.FeeBps,
		MaxSupply:      coin.Settings.MaxSupply,
		MintPaused:     coin.Settings.MintPaused,
		RedeemPaused:   coin.Settings.RedeemPaused,
		TotalMinted:    coin.Stats.TotalMinted,
		TotalBurned:    coin.Stats.TotalBurned,
		TotalFees:      coin.Stats.TotalFees,
		CreatedAt:      coin.CreatedAt,
		LastUpdated:    coin.LastUpdated,
	}
}

type vaultResponse struct {
	ID                 string `json:"id"`
	StablecoinID       string `json:"stablecoinId"`
	CollateralAccount  string `json:"collateralAccount"`
	TotalCollateral    uint64 `json:"totalCollateral"`
	TotalValueLocked   uint64 `json:"totalValueLocked"`
	CurrentRatioBps    uint16 `json:"currentRatioBps"`
	LastDepositTime    int64  `json:"lastDepositTime"`
	LastWithdrawalTime int64  `json:"lastWithdrawalTime"`
	DepositCount       uint32 `json:"depositCount"`
	WithdrawalCount    uint32 `json:"withdrawalCount"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.engine.Initialize(stable.Ref(req.Authority), stable.InitializeParams{
		Name:              req.Name,
		Symbol:            req.Symbol,
		TargetCurrency:    req.TargetCurrency,
		InitialSupply:     req.InitialSupply,
		TokenMint:         stable.Ref(req.TokenMint),
		CollateralMint:    stable.Ref(req.CollateralMint),
		PriceFeed:         stable.Ref(req.PriceFeed),
		CollateralAccount: stable.Ref(req.CollateralAccount),
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.log.Info("stablecoin initialized", "id", receipt.Stablecoin.ID, "symbol", receipt.Stablecoin.Symbol)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"stablecoin":    renderStablecoin(receipt.Stablecoin),
		"vaultId":       receipt.Vault.ID,
		"initialSupply": receipt.InitialSupply,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	coins, err := s.engine.List()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	out := make([]stablecoinResponse, 0, len(coins))
	for _, coin := range coins {
		out = append(out, renderStablecoin(coin))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stablecoins": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	coin, err := s.engine.Stablecoin(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderStablecoin(coin))
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	vault, err := s.engine.Vault(chi.URLParam(r, "id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, vaultResponse{
		ID:                 vault.ID,
		StablecoinID:       vault.StablecoinID,
		CollateralAccount:  string(vault.CollateralAccount),
		TotalCollateral:    vault.TotalCollateral,
		TotalValueLocked:   vault.TotalValueLocked,
		CurrentRatioBps:    vault.CurrentRatioBps,
		LastDepositTime:    vault.LastDepositTime,
		LastWithdrawalTime: vault.LastWithdrawalTime,
		DepositCount:       vault.DepositCount,
		WithdrawalCount:    vault.WithdrawalCount,
	})
}

type transactionRequest struct {
	Caller                  string `json:"caller"`
	CallerTokenAccount      string `json:"callerTokenAccount"`
	CallerCollateralAccount string `json:"callerCollateralAccount"`
	Amount                  uint64 `json:"amount"`
}

func (req transactionRequest) params() stable.MintParams {
	return stable.MintParams{
		Caller:                  stable.Ref(req.Caller),
		CallerTokenAccount:      stable.Ref(req.CallerTokenAccount),
		CallerCollateralAccount: stable.Ref(req.CallerCollateralAccount),
	}
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.engine.Mint(req.params(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.log.Info("mint executed", "id", receipt.StablecoinID, "amount", receipt.Amount, "fee", receipt.Fee)
	s.writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.engine.Redeem(req.params(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.log.Info("redeem executed", "id", receipt.StablecoinID, "amount", receipt.Amount, "fee", receipt.Fee)
	s.writeJSON(w, http.StatusOK, receipt)
}

type settingsRequest struct {
	Authority             string  `json:"authority"`
	MinCollateralRatioBps *uint16 `json:"minCollateralRatioBps"`
	FeeBps                *uint16 `json:"feeBps"`
	MaxSupply             *uint64 `json:"maxSupply"`
	MintPaused            *bool   `json:"mintPaused"`
	RedeemPaused          *bool   `json:"redeemPaused"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	coin, err := s.engine.UpdateSettings(stable.Ref(req.Authority), chi.URLParam(r, "id"), stable.SettingsUpdate{
		MinCollateralRatioBps: req.MinCollateralRatioBps,
		FeeBps:                req.FeeBps,
		MaxSupply:             req.MaxSupply,
		MintPaused:            req.MintPaused,
		RedeemPaused:          req.RedeemPaused,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderStablecoin(coin))
}

type metadataRequest struct {
	Authority      string  `json:"authority"`
	Name           *string `json:"name"`
	Symbol         *string `json:"symbol"`
	TargetCurrency *string `json:"targetCurrency"`
}

func (s *Server) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	coin, err := s.engine.UpdateMetadata(stable.Ref(req.Authority), chi.URLParam(r, "id"), stable.MetadataUpdate{
		Name:           req.Name,
		Symbol:         req.Symbol,
		TargetCurrency: req.TargetCurrency,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderStablecoin(coin))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeEngineError maps engine sentinel errors to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, stable.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, stable.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, stable.ErrMintingPaused),
		errors.Is(err, stable.ErrRedeemingPaused),
		errors.Is(err, stable.ErrMaxSupplyExceeded),
		errors.Is(err, stable.ErrCollateralRatioTooLow),
		errors.Is(err, stable.ErrCollateralRatioTooHigh),
		errors.Is(err, stable.ErrInsufficientBalance),
		errors.Is(err, stable.ErrInsufficientCollateral),
		errors.Is(err, stable.ErrInvalidOraclePrice),
		errors.Is(err, stable.ErrStaleOraclePrice):
		status = http.StatusConflict
	case errors.Is(err, stable.ErrNameTooShort),
		errors.Is(err, stable.ErrSymbolTooShort),
		errors.Is(err, stable.ErrInvalidName),
		errors.Is(err, stable.ErrInvalidSymbol),
		errors.Is(err, stable.ErrInvalidCurrency),
		errors.Is(err, stable.ErrInvalidAmount),
		errors.Is(err, stable.ErrAmountTooSmall),
		errors.Is(err, stable.ErrAmountTooLarge),
		errors.Is(err, stable.ErrInvalidTokenAccount),
		errors.Is(err, stable.ErrInvalidVault),
		errors.Is(err, stable.ErrEmptyVault),
		errors.Is(err, stable.ErrInvalidMaxSupply),
		errors.Is(err, stable.ErrFeeTooHigh):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("engine failure", "error", err)
	}
	s.writeError(w, status, err)
}
