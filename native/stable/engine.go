package stable

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"stablefun/core/events"
)

// engineState is the record persistence surface the engine drives. *Store
// implements it; tests may substitute an in-memory double.
type engineState interface {
	GetStablecoin(id string) (*Stablecoin, bool, error)
	PutStablecoin(coin *Stablecoin) error
	GetVault(id string) (*Vault, bool, error)
	PutVault(vault *Vault) error
	ListStablecoins() ([]string, error)
}

// Metrics receives engine observations. The observability package provides the
// prometheus-backed implementation.
type Metrics interface {
	ObserveMint(symbol string, amount, fee uint64)
	ObserveRedeem(symbol string, amount, fee uint64)
	ObserveRejected(op, reason string)
	SetCollateralRatio(symbol string, ratioBps uint16)
}

// Engine executes issuance transitions against stored records. It holds no
// internal locks for record state: the host guarantees a single writer per
// record, and every transition works read-validate-write on cloned snapshots,
// persisting only after all checks and external ledger calls have succeeded.
type Engine struct {
	state   engineState
	ledger  TokenLedger
	limits  Limits
	emitter events.Emitter
	metrics Metrics
	clock   func() time.Time

	feedMu sync.RWMutex
	feeds  map[Ref][]PriceFeed

	maxPriceAge   time.Duration
	maxConfidence uint64
}

// NewEngine constructs an engine bound to the given external ledger.
func NewEngine(ledger TokenLedger, limits Limits) *Engine {
	return &Engine{
		ledger:        ledger,
		limits:        limits.Normalise(),
		emitter:       events.NoopEmitter{},
		clock:         time.Now,
		feeds:         make(map[Ref][]PriceFeed),
		maxPriceAge:   MaxPriceAge,
		maxConfidence: MaxPriceConfidence,
	}
}

// SetState wires the record store.
func (e *Engine) SetState(state engineState) {
	if e == nil {
		return
	}
	e.state = state
}

// SetEmitter overrides the event sink. A nil emitter restores the no-op sink.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// SetMetrics wires the metrics sink. Nil disables observation.
func (e *Engine) SetMetrics(metrics Metrics) {
	if e == nil {
		return
	}
	e.metrics = metrics
}

// SetClock overrides the time source for deterministic testing.
func (e *Engine) SetClock(clock func() time.Time) {
	if e == nil || clock == nil {
		return
	}
	e.clock = clock
}

// SetOracleGuard overrides the staleness window and confidence ceiling applied
// to feed samples. Zero values restore the defaults.
func (e *Engine) SetOracleGuard(maxAge time.Duration, maxConfidence uint64) {
	if e == nil {
		return
	}
	if maxAge <= 0 {
		maxAge = MaxPriceAge
	}
	if maxConfidence == 0 {
		maxConfidence = MaxPriceConfidence
	}
	e.maxPriceAge = maxAge
	e.maxConfidence = maxConfidence
}

// RegisterFeed attaches a price feed to a feed reference. Up to MaxFeedCount
// feeds may back one reference; extra registrations are rejected.
func (e *Engine) RegisterFeed(ref Ref, feed PriceFeed) error {
	if e == nil {
		return fmt.Errorf("stable: engine not initialised")
	}
	if ref.IsZero() || feed == nil {
		return fmt.Errorf("stable: feed reference and feed required")
	}
	e.feedMu.Lock()
	defer e.feedMu.Unlock()
	if len(e.feeds[ref]) >= MaxFeedCount {
		return fmt.Errorf("stable: feed %s already has %d sources", ref, MaxFeedCount)
	}
	e.feeds[ref] = append(e.feeds[ref], feed)
	return nil
}

// verifyPrice resolves a standardized, validated price for the record's feed
// reference. A single feed keeps its precise failure mode; multiple feeds are
// reduced to the median of the valid samples.
func (e *Engine) verifyPrice(ref Ref) (uint64, error) {
	e.feedMu.RLock()
	feeds := append([]PriceFeed(nil), e.feeds[ref]...)
	e.feedMu.RUnlock()
	if len(feeds) == 0 {
		return 0, ErrInvalidOraclePrice
	}
	now := e.clock().UTC()
	if len(feeds) == 1 {
		sample, err := feeds[0].Read()
		if err != nil {
			return 0, ErrInvalidOraclePrice
		}
		if err := ValidateSample(sample, now, e.maxPriceAge, e.maxConfidence); err != nil {
			return 0, err
		}
		return Standardize(sample)
	}
	sample, err := MedianPrice(now, e.maxPriceAge, e.maxConfidence, feeds...)
	if err != nil {
		return 0, err
	}
	return Standardize(sample)
}

// InitializeParams carries the inputs for creating a new issuance record.
type InitializeParams struct {
	Name              string
	Symbol            string
	TargetCurrency    string
	InitialSupply     uint64
	TokenMint         Ref
	CollateralMint    Ref
	PriceFeed         Ref
	CollateralAccount Ref
}

// InitializeReceipt reports the created record. InitialSupply is echoed from
// the request for callers that stage a follow-up mint; initialization itself
// never mints.
type InitializeReceipt struct {
	Stablecoin    *Stablecoin
	Vault         *Vault
	InitialSupply uint64
}

// Initialize creates a new issuance record and its empty vault after
// validating metadata, linkage, and one oracle read.
func (e *Engine) Initialize(authority Ref, params InitializeParams) (*InitializeReceipt, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	if authority.IsZero() {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(params.Name)
	symbol := strings.TrimSpace(params.Symbol)
	currency := strings.TrimSpace(params.TargetCurrency)
	if err := ValidateMetadata(name, symbol, currency); err != nil {
		e.rejected("initialize", err)
		return nil, err
	}
	if params.TokenMint.IsZero() || params.CollateralMint.IsZero() {
		return nil, fmt.Errorf("stable: token and collateral mints required")
	}
	if params.PriceFeed.IsZero() {
		return nil, fmt.Errorf("stable: price feed reference required")
	}
	if params.CollateralAccount.IsZero() {
		return nil, ErrInvalidTokenAccount
	}
	id := StablecoinID(authority, symbol)
	if _, exists, err := e.state.GetStablecoin(id); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("stable: stablecoin %s already exists", id)
	}
	if _, err := e.verifyPrice(params.PriceFeed); err != nil {
		e.rejected("initialize", err)
		return nil, err
	}
	now := e.clock().UTC().Unix()
	coin := &Stablecoin{
		ID:             id,
		Authority:      authority,
		Name:           name,
		Symbol:         symbol,
		TargetCurrency: currency,
		TokenMint:      params.TokenMint,
		CollateralMint: params.CollateralMint,
		PriceFeed:      params.PriceFeed,
		VaultID:        VaultID(id),
		Settings: Settings{
			MinCollateralRatioBps: DefaultCollateralRatioBps,
			FeeBps:                DefaultFeeBps,
			MaxSupply:             math.MaxUint64,
		},
		CreatedAt:   now,
		LastUpdated: now,
	}
	vault := &Vault{
		ID:                coin.VaultID,
		StablecoinID:      id,
		CollateralAccount: params.CollateralAccount,
	}
	if err := e.state.PutStablecoin(coin); err != nil {
		return nil, err
	}
	if err := e.state.PutVault(vault); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StableInitialized{
		EventID:      events.NewID(),
		StablecoinID: id,
		VaultID:      vault.ID,
		Authority:    string(authority),
		Name:         name,
		Symbol:       symbol,
		Currency:     currency,
	})
	return &InitializeReceipt{Stablecoin: coin.Clone(), Vault: vault.Clone(), InitialSupply: params.InitialSupply}, nil
}

// MintParams identifies the caller and its ledger accounts for a mint.
type MintParams struct {
	Caller                  Ref
	CallerTokenAccount      Ref
	CallerCollateralAccount Ref
}

// MintReceipt reports the outcome of a mint transition.
type MintReceipt struct {
	StablecoinID string
	Amount       uint64
	Fee          uint64
	Minted       uint64
	Collateral   uint64
	Price        uint64
	Supply       uint64
}

// Mint exchanges caller collateral for freshly issued units plus the protocol
// fee. Preconditions run in a fixed order; the first failure aborts before any
// external call or mutation.
func (e *Engine) Mint(params MintParams, id string, amount uint64) (*MintReceipt, error) {
	if e == nil || e.state == nil || e.ledger == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	stored, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	coin := stored.Clone()
	if coin.IsMintPaused() {
		e.rejected("mint", ErrMintingPaused)
		return nil, ErrMintingPaused
	}
	if amount == 0 {
		e.rejected("mint", ErrInvalidAmount)
		return nil, ErrInvalidAmount
	}
	if !coin.CanMint(amount) {
		e.rejected("mint", ErrMaxSupplyExceeded)
		return nil, ErrMaxSupplyExceeded
	}
	price, err := e.verifyPrice(coin.PriceFeed)
	if err != nil {
		e.rejected("mint", err)
		return nil, err
	}
	collateral, err := CollateralAmount(amount, price)
	if err != nil {
		return nil, err
	}
	fee, err := coin.CalculateFee(amount)
	if err != nil {
		return nil, err
	}
	totalToMint, err := checkedAdd(amount, fee)
	if err != nil {
		return nil, err
	}
	vaultRec, ok, err := e.state.GetVault(coin.VaultID)
	if err != nil {
		return nil, err
	}
	if !ok || vaultRec.StablecoinID != coin.ID {
		return nil, ErrInvalidVault
	}
	vault := vaultRec.Clone()
	tokenAccount, err := e.ledger.Account(params.CallerTokenAccount)
	if err != nil {
		return nil, err
	}
	if err := ValidateTokenAccount(tokenAccount, coin.TokenMint, params.Caller); err != nil {
		e.rejected("mint", err)
		return nil, err
	}
	collateralAccount, err := e.ledger.Account(params.CallerCollateralAccount)
	if err != nil {
		return nil, err
	}
	if err := ValidateTokenAccount(collateralAccount, coin.CollateralMint, params.Caller); err != nil {
		e.rejected("mint", err)
		return nil, err
	}
	if collateralAccount.Balance < collateral {
		e.rejected("mint", ErrInsufficientBalance)
		return nil, ErrInsufficientBalance
	}
	// Every checked arithmetic step runs on the clones before the first
	// ledger call; a failure past this block would strand moved funds.
	now := e.clock().UTC().Unix()
	if err := vault.ProcessDeposit(collateral, amount, now); err != nil {
		return nil, err
	}
	supply, err := checkedAdd(coin.CurrentSupply, totalToMint)
	if err != nil {
		return nil, err
	}
	coin.CurrentSupply = supply
	if coin.Stats.TotalMinted, err = checkedAdd(coin.Stats.TotalMinted, amount); err != nil {
		return nil, err
	}
	if coin.Stats.TotalFees, err = checkedAdd(coin.Stats.TotalFees, fee); err != nil {
		return nil, err
	}
	coin.LastUpdated = now
	if err := e.ledger.Transfer(params.CallerCollateralAccount, vault.CollateralAccount, params.Caller, collateral); err != nil {
		return nil, fmt.Errorf("stable: collateral transfer: %w", err)
	}
	if err := e.ledger.MintTo(coin.TokenMint, params.CallerTokenAccount, MintAuthorityID(coin.ID), totalToMint); err != nil {
		return nil, fmt.Errorf("stable: mint to caller: %w", err)
	}
	if err := e.state.PutStablecoin(coin); err != nil {
		return nil, err
	}
	if err := e.state.PutVault(vault); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StableMinted{
		EventID:      events.NewID(),
		StablecoinID: coin.ID,
		Caller:       string(params.Caller),
		Amount:       amount,
		Fee:          fee,
		Collateral:   collateral,
		Supply:       coin.CurrentSupply,
		Price:        price,
	})
	if e.metrics != nil {
		e.metrics.ObserveMint(coin.Symbol, amount, fee)
		e.metrics.SetCollateralRatio(coin.Symbol, vault.CurrentRatioBps)
	}
	return &MintReceipt{
		StablecoinID: coin.ID,
		Amount:       amount,
		Fee:          fee,
		Minted:       totalToMint,
		Collateral:   collateral,
		Price:        price,
		Supply:       coin.CurrentSupply,
	}, nil
}

// RedeemReceipt reports the outcome of a redeem transition.
type RedeemReceipt struct {
	StablecoinID string
	Amount       uint64
	Fee          uint64
	Burned       uint64
	Collateral   uint64
	Price        uint64
	Supply       uint64
}

// Redeem burns caller units plus the protocol fee and releases the matching
// collateral, refusing any redemption that would leave the remaining supply
// undercollateralized.
func (e *Engine) Redeem(params MintParams, id string, amount uint64) (*RedeemReceipt, error) {
	if e == nil || e.state == nil || e.ledger == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	stored, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	coin := stored.Clone()
	if coin.IsRedeemPaused() {
		e.rejected("redeem", ErrRedeemingPaused)
		return nil, ErrRedeemingPaused
	}
	if err := e.limits.ValidateAmount(amount); err != nil {
		e.rejected("redeem", err)
		return nil, err
	}
	tokenAccount, err := e.ledger.Account(params.CallerTokenAccount)
	if err != nil {
		return nil, err
	}
	if err := ValidateTokenAccount(tokenAccount, coin.TokenMint, params.Caller); err != nil {
		e.rejected("redeem", err)
		return nil, err
	}
	if tokenAccount.Balance < amount {
		e.rejected("redeem", ErrInsufficientBalance)
		return nil, ErrInsufficientBalance
	}
	price, err := e.verifyPrice(coin.PriceFeed)
	if err != nil {
		e.rejected("redeem", err)
		return nil, err
	}
	collateral, err := CollateralAmount(amount, price)
	if err != nil {
		return nil, err
	}
	fee, err := coin.CalculateFee(amount)
	if err != nil {
		return nil, err
	}
	burnAmount, err := checkedAdd(amount, fee)
	if err != nil {
		return nil, err
	}
	if tokenAccount.Balance < burnAmount {
		e.rejected("redeem", ErrInsufficientBalance)
		return nil, ErrInsufficientBalance
	}
	vaultRec, ok, err := e.state.GetVault(coin.VaultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidVault
	}
	if err := ValidateVault(vaultRec, coin.ID); err != nil {
		e.rejected("redeem", err)
		return nil, err
	}
	vault := vaultRec.Clone()
	if collateral > vault.TotalCollateral {
		e.rejected("redeem", ErrInsufficientCollateral)
		return nil, ErrInsufficientCollateral
	}
	remainingCollateral, err := checkedSub(vault.TotalCollateral, collateral)
	if err != nil {
		return nil, err
	}
	remainingSupply, err := checkedSub(coin.CurrentSupply, burnAmount)
	if err != nil {
		return nil, err
	}
	if remainingSupply > 0 {
		if err := ValidateCollateralRatio(remainingCollateral, remainingSupply, coin.Settings.MinCollateralRatioBps); err != nil {
			e.rejected("redeem", err)
			return nil, err
		}
	}
	collateralAccount, err := e.ledger.Account(params.CallerCollateralAccount)
	if err != nil {
		return nil, err
	}
	if err := ValidateTokenAccount(collateralAccount, coin.CollateralMint, params.Caller); err != nil {
		e.rejected("redeem", err)
		return nil, err
	}
	// As in Mint, all clone arithmetic completes before the ledger is
	// touched so a late overflow cannot leave partial external state.
	now := e.clock().UTC().Unix()
	if err := vault.ProcessWithdrawal(collateral, amount, now); err != nil {
		return nil, err
	}
	coin.CurrentSupply = remainingSupply
	if coin.Stats.TotalBurned, err = checkedAdd(coin.Stats.TotalBurned, amount); err != nil {
		return nil, err
	}
	if coin.Stats.TotalFees, err = checkedAdd(coin.Stats.TotalFees, fee); err != nil {
		return nil, err
	}
	coin.LastUpdated = now
	if err := e.ledger.Burn(coin.TokenMint, params.CallerTokenAccount, MintAuthorityID(coin.ID), burnAmount); err != nil {
		return nil, fmt.Errorf("stable: burn: %w", err)
	}
	if err := e.ledger.Transfer(vault.CollateralAccount, params.CallerCollateralAccount, Ref(vault.ID), collateral); err != nil {
		return nil, fmt.Errorf("stable: collateral release: %w", err)
	}
	if err := e.state.PutStablecoin(coin); err != nil {
		return nil, err
	}
	if err := e.state.PutVault(vault); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StableRedeemed{
		EventID:      events.NewID(),
		StablecoinID: coin.ID,
		Caller:       string(params.Caller),
		Amount:       amount,
		Fee:          fee,
		Collateral:   collateral,
		Supply:       coin.CurrentSupply,
		Price:        price,
	})
	if e.metrics != nil {
		e.metrics.ObserveRedeem(coin.Symbol, amount, fee)
		e.metrics.SetCollateralRatio(coin.Symbol, vault.CurrentRatioBps)
	}
	return &RedeemReceipt{
		StablecoinID: coin.ID,
		Amount:       amount,
		Fee:          fee,
		Burned:       burnAmount,
		Collateral:   collateral,
		Price:        price,
		Supply:       coin.CurrentSupply,
	}, nil
}

// SettingsUpdate carries optional settings changes. Nil fields are untouched.
type SettingsUpdate struct {
	MinCollateralRatioBps *uint16
	FeeBps                *uint16
	MaxSupply             *uint64
	MintPaused            *bool
	RedeemPaused          *bool
}

// UpdateSettings applies an authority-signed settings change.
func (e *Engine) UpdateSettings(authority Ref, id string, update SettingsUpdate) (*Stablecoin, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	stored, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	coin := stored.Clone()
	if coin.Authority != authority {
		e.rejected("update_settings", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	before := coin.Settings
	if update.MinCollateralRatioBps != nil {
		ratio := *update.MinCollateralRatioBps
		if ratio < e.limits.MinCollateralRatioBps {
			e.rejected("update_settings", ErrCollateralRatioTooLow)
			return nil, ErrCollateralRatioTooLow
		}
		if ratio > e.limits.MaxCollateralRatioBps {
			e.rejected("update_settings", ErrCollateralRatioTooHigh)
			return nil, ErrCollateralRatioTooHigh
		}
		coin.Settings.MinCollateralRatioBps = ratio
	}
	if update.FeeBps != nil {
		if err := e.limits.ValidateFee(*update.FeeBps); err != nil {
			e.rejected("update_settings", err)
			return nil, err
		}
		coin.Settings.FeeBps = *update.FeeBps
	}
	if update.MaxSupply != nil {
		if *update.MaxSupply < coin.CurrentSupply {
			e.rejected("update_settings", ErrInvalidMaxSupply)
			return nil, ErrInvalidMaxSupply
		}
		coin.Settings.MaxSupply = *update.MaxSupply
	}
	if update.MintPaused != nil {
		coin.Settings.MintPaused = *update.MintPaused
	}
	if update.RedeemPaused != nil {
		coin.Settings.RedeemPaused = *update.RedeemPaused
	}
	coin.LastUpdated = e.clock().UTC().Unix()
	if err := e.state.PutStablecoin(coin); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StableSettingsUpdated{
		EventID:      events.NewID(),
		StablecoinID: coin.ID,
		Authority:    string(authority),
		Before:       settingsSnapshot(before),
		After:        settingsSnapshot(coin.Settings),
	})
	return coin.Clone(), nil
}

// MetadataUpdate carries optional metadata changes. Nil fields are untouched.
type MetadataUpdate struct {
	Name           *string
	Symbol         *string
	TargetCurrency *string
}

// UpdateMetadata applies an authority-signed metadata change. The record
// identifier is fixed at initialization and does not follow a symbol change.
func (e *Engine) UpdateMetadata(authority Ref, id string, update MetadataUpdate) (*Stablecoin, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	stored, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	coin := stored.Clone()
	if coin.Authority != authority {
		e.rejected("update_metadata", ErrUnauthorized)
		return nil, ErrUnauthorized
	}
	if update.Name != nil {
		coin.Name = strings.TrimSpace(*update.Name)
	}
	if update.Symbol != nil {
		coin.Symbol = strings.TrimSpace(*update.Symbol)
	}
	if update.TargetCurrency != nil {
		coin.TargetCurrency = strings.TrimSpace(*update.TargetCurrency)
	}
	if err := ValidateMetadata(coin.Name, coin.Symbol, coin.TargetCurrency); err != nil {
		e.rejected("update_metadata", err)
		return nil, err
	}
	coin.LastUpdated = e.clock().UTC().Unix()
	if err := e.state.PutStablecoin(coin); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.StableMetadataUpdated{
		EventID:      events.NewID(),
		StablecoinID: coin.ID,
		Authority:    string(authority),
		Name:         coin.Name,
		Symbol:       coin.Symbol,
		Currency:     coin.TargetCurrency,
	})
	return coin.Clone(), nil
}

// Stablecoin returns a snapshot of one issuance record.
func (e *Engine) Stablecoin(id string) (*Stablecoin, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	coin, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return coin.Clone(), nil
}

// Vault returns a snapshot of the vault backing one issuance record.
func (e *Engine) Vault(id string) (*Vault, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	coin, ok, err := e.state.GetStablecoin(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	vault, ok, err := e.state.GetVault(coin.VaultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidVault
	}
	return vault.Clone(), nil
}

// List returns snapshots of every issuance record in creation order.
func (e *Engine) List() ([]*Stablecoin, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("stable: engine not initialised")
	}
	ids, err := e.state.ListStablecoins()
	if err != nil {
		return nil, err
	}
	coins := make([]*Stablecoin, 0, len(ids))
	for _, id := range ids {
		coin, ok, err := e.state.GetStablecoin(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		coins = append(coins, coin.Clone())
	}
	return coins, nil
}

func settingsSnapshot(s Settings) events.StableSettings {
	return events.StableSettings{
		MinRatioBps:  s.MinCollateralRatioBps,
		FeeBps:       s.FeeBps,
		MaxSupply:    s.MaxSupply,
		MintPaused:   s.MintPaused,
		RedeemPaused: s.RedeemPaused,
	}
}

func (e *Engine) rejected(op string, err error) {
	if e == nil || e.metrics == nil || err == nil {
		return
	}
	e.metrics.ObserveRejected(op, strings.TrimPrefix(err.Error(), "stable: "))
}
