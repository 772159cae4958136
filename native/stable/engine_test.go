package stable

import (
	"errors"
	"math"
	"testing"
	"time"

	"stablefun/core/events"
	"stablefun/storage"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) {
	r.events = append(r.events, evt)
}

const (
	testAuthority        = Ref("authority-1")
	testTokenMint        = Ref("mint-usdf")
	testCollateralMint   = Ref("mint-usdc")
	testFeedRef          = Ref("feed-usd")
	testVaultAccount     = Ref("acct-vault-collateral")
	testCaller           = Ref("bob")
	testCallerToken      = Ref("acct-bob-token")
	testCallerCollateral = Ref("acct-bob-collateral")
)

type testEnv struct {
	engine *Engine
	ledger *MemLedger
	feed   *ManualFeed
	store  *Store
	now    time.Time
	id     string
}

func callerParams() MintParams {
	return MintParams{
		Caller:                  testCaller,
		CallerTokenAccount:      testCallerToken,
		CallerCollateralAccount: testCallerCollateral,
	}
}

func newTestEnv(t *testing.T, price uint64) *testEnv {
	t.Helper()
	return newTestEnvLedger(t, price, nil)
}

// newTestEnvLedger builds the standard environment, optionally wrapping the
// in-memory ledger so tests can observe the calls the engine makes against it.
func newTestEnvLedger(t *testing.T, price uint64, wrap func(*MemLedger) TokenLedger) *testEnv {
	t.Helper()
	now := time.Unix(1_700_000_000, 0).UTC()
	env := &testEnv{
		ledger: NewMemLedger(),
		feed:   NewManualFeed(),
		store:  NewStore(storage.NewMemDB()),
		now:    now,
	}
	var ledger TokenLedger = env.ledger
	if wrap != nil {
		ledger = wrap(env.ledger)
	}
	env.engine = NewEngine(ledger, DefaultLimits())
	env.engine.SetState(env.store)
	env.engine.SetClock(func() time.Time { return env.now })
	if err := env.engine.RegisterFeed(testFeedRef, env.feed); err != nil {
		t.Fatalf("register feed: %v", err)
	}
	env.setPrice(price)

	env.ledger.SetAccount(TokenAccount{Address: testCallerToken, Mint: testTokenMint, Owner: testCaller})
	env.ledger.SetAccount(TokenAccount{Address: testCallerCollateral, Mint: testCollateralMint, Owner: testCaller, Balance: 10_000_000})

	receipt, err := env.engine.Initialize(testAuthority, InitializeParams{
		Name:              "Dollar Token",
		Symbol:            "USDF",
		TargetCurrency:    "USD",
		TokenMint:         testTokenMint,
		CollateralMint:    testCollateralMint,
		PriceFeed:         testFeedRef,
		CollateralAccount: testVaultAccount,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	env.id = receipt.Stablecoin.ID
	// The vault signs outgoing collateral transfers, so the account it owns
	// is registered under the vault identifier.
	env.ledger.SetAccount(TokenAccount{Address: testVaultAccount, Mint: testCollateralMint, Owner: Ref(receipt.Vault.ID)})
	return env
}

func (env *testEnv) setPrice(value uint64) {
	env.feed.Set(PriceSample{Value: value, Decimals: PriceDecimals, LastUpdated: env.now.Unix()})
}

func (env *testEnv) coin(t *testing.T) *Stablecoin {
	t.Helper()
	coin, err := env.engine.Stablecoin(env.id)
	if err != nil {
		t.Fatalf("load stablecoin: %v", err)
	}
	return coin
}

func (env *testEnv) vault(t *testing.T) *Vault {
	t.Helper()
	vault, err := env.engine.Vault(env.id)
	if err != nil {
		t.Fatalf("load vault: %v", err)
	}
	return vault
}

func (env *testEnv) balance(t *testing.T, ref Ref) uint64 {
	t.Helper()
	account, err := env.ledger.Account(ref)
	if err != nil {
		t.Fatalf("load account %s: %v", ref, err)
	}
	return account.Balance
}

func TestInitializeCreatesRecordsWithDefaults(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	coin := env.coin(t)
	if coin.CurrentSupply != 0 {
		t.Fatalf("fresh record must start at zero supply: %d", coin.CurrentSupply)
	}
	if coin.Settings.MinCollateralRatioBps != DefaultCollateralRatioBps {
		t.Fatalf("unexpected default ratio: %d", coin.Settings.MinCollateralRatioBps)
	}
	if coin.Settings.FeeBps != DefaultFeeBps {
		t.Fatalf("unexpected default fee: %d", coin.Settings.FeeBps)
	}
	if coin.Settings.MaxSupply != math.MaxUint64 {
		t.Fatalf("unexpected default max supply: %d", coin.Settings.MaxSupply)
	}
	if coin.Settings.MintPaused || coin.Settings.RedeemPaused {
		t.Fatalf("fresh record must be unpaused")
	}
	vault := env.vault(t)
	if vault.StablecoinID != coin.ID || vault.ID != coin.VaultID {
		t.Fatalf("vault linkage broken: %+v", vault)
	}
	if vault.TotalCollateral != 0 || vault.TotalValueLocked != 0 || vault.DepositCount != 0 {
		t.Fatalf("vault counters not zeroed: %+v", vault)
	}
}

func TestInitializeRejectsDuplicateAndBadInput(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	if _, err := env.engine.Initialize(testAuthority, InitializeParams{
		Name:              "Dollar Token",
		Symbol:            "USDF",
		TargetCurrency:    "USD",
		TokenMint:         testTokenMint,
		CollateralMint:    testCollateralMint,
		PriceFeed:         testFeedRef,
		CollateralAccount: testVaultAccount,
	}); err == nil {
		t.Fatalf("duplicate initialize must fail")
	}
	if _, err := env.engine.Initialize(testAuthority, InitializeParams{
		Name:              "ab",
		Symbol:            "EURF",
		TargetCurrency:    "EUR",
		TokenMint:         testTokenMint,
		CollateralMint:    testCollateralMint,
		PriceFeed:         testFeedRef,
		CollateralAccount: testVaultAccount,
	}); !errors.Is(err, ErrNameTooShort) {
		t.Fatalf("expected name too short, got %v", err)
	}
	env.setPrice(0)
	if _, err := env.engine.Initialize(testAuthority, InitializeParams{
		Name:              "Euro Token",
		Symbol:            "EURF",
		TargetCurrency:    "EUR",
		TokenMint:         testTokenMint,
		CollateralMint:    testCollateralMint,
		PriceFeed:         testFeedRef,
		CollateralAccount: testVaultAccount,
	}); !errors.Is(err, ErrInvalidOraclePrice) {
		t.Fatalf("expected invalid oracle price, got %v", err)
	}
}

func TestMintAtParAppliesFee(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	receipt, err := env.engine.Mint(callerParams(), env.id, 1_000_000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if receipt.Fee != 3_000 || receipt.Minted != 1_003_000 {
		t.Fatalf("unexpected fee accounting: %+v", receipt)
	}
	if receipt.Collateral != 1_000_000 {
		t.Fatalf("expected par collateral, got %d", receipt.Collateral)
	}
	if receipt.Supply != 1_003_000 {
		t.Fatalf("supply must include the fee units: %d", receipt.Supply)
	}
	if got := env.balance(t, testCallerToken); got != 1_003_000 {
		t.Fatalf("caller token balance: %d", got)
	}
	if got := env.balance(t, testVaultAccount); got != 1_000_000 {
		t.Fatalf("vault collateral balance: %d", got)
	}
	if got := env.balance(t, testCallerCollateral); got != 9_000_000 {
		t.Fatalf("caller collateral balance: %d", got)
	}
	coin := env.coin(t)
	if coin.Stats.TotalMinted != 1_000_000 || coin.Stats.TotalFees != 3_000 {
		t.Fatalf("stats not updated: %+v", coin.Stats)
	}
	vault := env.vault(t)
	if vault.TotalCollateral != 1_000_000 || vault.TotalValueLocked != 1_000_000 {
		t.Fatalf("vault not updated: %+v", vault)
	}
	if vault.CurrentRatioBps != 10_000 || vault.DepositCount != 1 {
		t.Fatalf("vault ratio/counters: %+v", vault)
	}
}

func TestMintPauseGateLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	paused := true
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{MintPaused: &paused}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); !errors.Is(err, ErrMintingPaused) {
		t.Fatalf("expected minting paused, got %v", err)
	}
	if coin := env.coin(t); coin.CurrentSupply != 0 {
		t.Fatalf("failed mint mutated supply: %d", coin.CurrentSupply)
	}
	if got := env.balance(t, testCallerToken); got != 0 {
		t.Fatalf("failed mint touched the ledger: %d", got)
	}
}

func TestMintSupplyCapPrecedesAmountChecks(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	coin, ok, err := env.store.GetStablecoin(env.id)
	if err != nil || !ok {
		t.Fatalf("load record: %v", err)
	}
	coin.CurrentSupply = 999_999
	coin.Settings.MaxSupply = 1_000_000
	if err := env.store.PutStablecoin(coin); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	// Two units exceed the cap even though the amount is far below the
	// transaction floor, which mint does not enforce.
	if _, err := env.engine.Mint(callerParams(), env.id, 2); !errors.Is(err, ErrMaxSupplyExceeded) {
		t.Fatalf("expected max supply exceeded, got %v", err)
	}
	if _, err := env.engine.Mint(callerParams(), env.id, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
}

func TestMintOverflowLeavesLedgerUntouched(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	coin, ok, err := env.store.GetStablecoin(env.id)
	if err != nil || !ok {
		t.Fatalf("load record: %v", err)
	}
	// The cap passes because amount alone fits, but amount plus the fee
	// pushes the supply past the uint64 range.
	coin.CurrentSupply = math.MaxUint64 - 1_000_000
	if err := env.store.PutStablecoin(coin); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected math overflow, got %v", err)
	}
	if got := env.balance(t, testCallerToken); got != 0 {
		t.Fatalf("failed mint issued tokens: %d", got)
	}
	if got := env.balance(t, testVaultAccount); got != 0 {
		t.Fatalf("failed mint moved collateral into the vault: %d", got)
	}
	if got := env.balance(t, testCallerCollateral); got != 10_000_000 {
		t.Fatalf("failed mint drained the caller: %d", got)
	}
	if env.coin(t).CurrentSupply != math.MaxUint64-1_000_000 {
		t.Fatalf("failed mint mutated supply")
	}
	if vault := env.vault(t); vault.TotalCollateral != 0 || vault.DepositCount != 0 {
		t.Fatalf("failed mint mutated vault: %+v", vault)
	}
}

func TestRedeemOverflowLeavesLedgerUntouched(t *testing.T) {
	env := newTestEnv(t, 500_000)
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	coin, ok, err := env.store.GetStablecoin(env.id)
	if err != nil || !ok {
		t.Fatalf("load record: %v", err)
	}
	coin.Stats.TotalBurned = math.MaxUint64
	if err := env.store.PutStablecoin(coin); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if _, err := env.engine.Redeem(callerParams(), env.id, 500_000); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected math overflow, got %v", err)
	}
	if got := env.balance(t, testCallerToken); got != 1_003_000 {
		t.Fatalf("failed redeem burned tokens: %d", got)
	}
	if got := env.balance(t, testVaultAccount); got != 2_000_000 {
		t.Fatalf("failed redeem released collateral: %d", got)
	}
	if got := env.balance(t, testCallerCollateral); got != 8_000_000 {
		t.Fatalf("failed redeem credited the caller: %d", got)
	}
	if env.coin(t).CurrentSupply != 1_003_000 {
		t.Fatalf("failed redeem mutated supply")
	}
	if vault := env.vault(t); vault.TotalCollateral != 2_000_000 || vault.WithdrawalCount != 0 {
		t.Fatalf("failed redeem mutated vault: %+v", vault)
	}
}

type authorityRecordingLedger struct {
	*MemLedger
	mintAuthority Ref
	burnAuthority Ref
}

func (l *authorityRecordingLedger) MintTo(mint, to, authority Ref, amount uint64) error {
	l.mintAuthority = authority
	return l.MemLedger.MintTo(mint, to, authority, amount)
}

func (l *authorityRecordingLedger) Burn(mint, from, authority Ref, amount uint64) error {
	l.burnAuthority = authority
	return l.MemLedger.Burn(mint, from, authority, amount)
}

func TestIssuanceSignsWithMintAuthority(t *testing.T) {
	rec := &authorityRecordingLedger{}
	env := newTestEnvLedger(t, 500_000, func(m *MemLedger) TokenLedger {
		rec.MemLedger = m
		return rec
	})
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := env.engine.Redeem(callerParams(), env.id, 500_000); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	want := MintAuthorityID(env.id)
	if rec.mintAuthority != want {
		t.Fatalf("mint signed by %s, want %s", rec.mintAuthority, want)
	}
	if rec.burnAuthority != want {
		t.Fatalf("burn signed by %s, want %s", rec.burnAuthority, want)
	}
}

func TestRedeemReleasesCollateralAndBurnsFee(t *testing.T) {
	env := newTestEnv(t, 500_000)
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// At half par each issued unit is backed by two collateral units.
	receipt, err := env.engine.Redeem(callerParams(), env.id, 500_000)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if receipt.Fee != 1_500 || receipt.Burned != 501_500 {
		t.Fatalf("unexpected burn accounting: %+v", receipt)
	}
	if receipt.Collateral != 1_000_000 {
		t.Fatalf("unexpected collateral release: %d", receipt.Collateral)
	}
	if receipt.Supply != 501_500 {
		t.Fatalf("unexpected remaining supply: %d", receipt.Supply)
	}
	if got := env.balance(t, testCallerToken); got != 501_500 {
		t.Fatalf("caller token balance: %d", got)
	}
	if got := env.balance(t, testVaultAccount); got != 1_000_000 {
		t.Fatalf("vault collateral balance: %d", got)
	}
	coin := env.coin(t)
	if coin.Stats.TotalBurned != 500_000 || coin.Stats.TotalFees != 4_500 {
		t.Fatalf("stats not updated: %+v", coin.Stats)
	}
	vault := env.vault(t)
	if vault.TotalCollateral != 1_000_000 || vault.TotalValueLocked != 500_000 {
		t.Fatalf("vault not updated: %+v", vault)
	}
	if vault.WithdrawalCount != 1 {
		t.Fatalf("withdrawal counter: %d", vault.WithdrawalCount)
	}

	// Redeeming the remainder drains the system back to zero and skips the
	// solvency gate because no supply is left to back.
	receipt, err = env.engine.Redeem(callerParams(), env.id, 500_000)
	if err != nil {
		t.Fatalf("final redeem: %v", err)
	}
	if receipt.Supply != 0 {
		t.Fatalf("expected zero supply, got %d", receipt.Supply)
	}
	if got := env.balance(t, testCallerToken); got != 0 {
		t.Fatalf("caller token balance after drain: %d", got)
	}
	if got := env.balance(t, testCallerCollateral); got != 10_000_000 {
		t.Fatalf("collateral not conserved: %d", got)
	}
	vault = env.vault(t)
	if vault.TotalCollateral != 0 || vault.TotalValueLocked != 0 || vault.CurrentRatioBps != 0 {
		t.Fatalf("vault not drained: %+v", vault)
	}
}

func TestRedeemSolvencyGate(t *testing.T) {
	env := newTestEnv(t, 500_000)
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	before := env.vault(t)
	supplyBefore := env.coin(t).CurrentSupply

	// A price collapse makes each redeemed unit pull out more collateral
	// than the remaining supply can spare.
	env.setPrice(250_000)
	if _, err := env.engine.Redeem(callerParams(), env.id, 400_000); !errors.Is(err, ErrCollateralRatioTooLow) {
		t.Fatalf("expected solvency gate, got %v", err)
	}
	after := env.vault(t)
	if after.TotalCollateral != before.TotalCollateral || after.TotalValueLocked != before.TotalValueLocked {
		t.Fatalf("failed redeem mutated vault: %+v", after)
	}
	if env.coin(t).CurrentSupply != supplyBefore {
		t.Fatalf("failed redeem mutated supply")
	}
}

func TestRedeemGuards(t *testing.T) {
	env := newTestEnv(t, 500_000)
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	paused := true
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{RedeemPaused: &paused}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := env.engine.Redeem(callerParams(), env.id, 500_000); !errors.Is(err, ErrRedeemingPaused) {
		t.Fatalf("expected redeeming paused, got %v", err)
	}
	paused = false
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{RedeemPaused: &paused}); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := env.engine.Redeem(callerParams(), env.id, 999); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected amount too small, got %v", err)
	}
	if _, err := env.engine.Redeem(callerParams(), env.id, 2_000_000); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}

func TestStaleOracleRejectsTransitions(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	env.feed.Set(PriceSample{Value: PriceScale, Decimals: PriceDecimals, LastUpdated: env.now.Add(-301 * time.Second).Unix()})
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); !errors.Is(err, ErrStaleOraclePrice) {
		t.Fatalf("expected stale oracle, got %v", err)
	}
}

func TestMedianFeedBacksTransitions(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	second := NewManualFeed()
	second.Set(PriceSample{Value: 2_000_000, Decimals: PriceDecimals, LastUpdated: env.now.Unix()})
	third := NewManualFeed()
	third.Set(PriceSample{Value: 3_000_000, Decimals: PriceDecimals, LastUpdated: env.now.Unix()})
	if err := env.engine.RegisterFeed(testFeedRef, second); err != nil {
		t.Fatalf("register second feed: %v", err)
	}
	if err := env.engine.RegisterFeed(testFeedRef, third); err != nil {
		t.Fatalf("register third feed: %v", err)
	}
	receipt, err := env.engine.Mint(callerParams(), env.id, 1_000_000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if receipt.Price != 2_000_000 {
		t.Fatalf("expected median price, got %d", receipt.Price)
	}
}

func TestUpdateSettingsAuthorityAndBounds(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	fee := uint16(50)
	if _, err := env.engine.UpdateSettings(Ref("mallory"), env.id, SettingsUpdate{FeeBps: &fee}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	lowRatio := uint16(9_999)
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{MinCollateralRatioBps: &lowRatio}); !errors.Is(err, ErrCollateralRatioTooLow) {
		t.Fatalf("expected ratio floor, got %v", err)
	}
	highRatio := uint16(30_001)
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{MinCollateralRatioBps: &highRatio}); !errors.Is(err, ErrCollateralRatioTooHigh) {
		t.Fatalf("expected ratio ceiling, got %v", err)
	}
	highFee := uint16(1_001)
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{FeeBps: &highFee}); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("expected fee cap, got %v", err)
	}
	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	lowCap := uint64(1)
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{MaxSupply: &lowCap}); !errors.Is(err, ErrInvalidMaxSupply) {
		t.Fatalf("expected invalid max supply, got %v", err)
	}
	ratio := uint16(20_000)
	cap := uint64(5_000_000)
	updated, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{MinCollateralRatioBps: &ratio, FeeBps: &fee, MaxSupply: &cap})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Settings.MinCollateralRatioBps != 20_000 || updated.Settings.FeeBps != 50 || updated.Settings.MaxSupply != 5_000_000 {
		t.Fatalf("settings not applied: %+v", updated.Settings)
	}
}

func TestUpdateMetadata(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	name := "Renamed Token"
	if _, err := env.engine.UpdateMetadata(Ref("mallory"), env.id, MetadataUpdate{Name: &name}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	bad := "ab"
	if _, err := env.engine.UpdateMetadata(testAuthority, env.id, MetadataUpdate{Name: &bad}); !errors.Is(err, ErrNameTooShort) {
		t.Fatalf("expected name too short, got %v", err)
	}
	currency := "EUR"
	updated, err := env.engine.UpdateMetadata(testAuthority, env.id, MetadataUpdate{Name: &name, TargetCurrency: &currency})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.TargetCurrency != currency {
		t.Fatalf("metadata not applied: %+v", updated)
	}
	if updated.Symbol != "USDF" {
		t.Fatalf("untouched field changed: %s", updated.Symbol)
	}
}

func TestTransitionsEmitTypedEvents(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	sink := &recordingEmitter{}
	env.engine.SetEmitter(sink)

	if _, err := env.engine.Mint(callerParams(), env.id, 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	fee := uint16(50)
	if _, err := env.engine.UpdateSettings(testAuthority, env.id, SettingsUpdate{FeeBps: &fee}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected two events, got %d", len(sink.events))
	}
	minted, ok := sink.events[0].(events.StableMinted)
	if !ok {
		t.Fatalf("first event has wrong type: %T", sink.events[0])
	}
	if minted.Amount != 1_000_000 || minted.Fee != 3_000 || minted.StablecoinID != env.id {
		t.Fatalf("mint event payload wrong: %+v", minted)
	}
	if minted.EventID == "" {
		t.Fatalf("mint event missing identifier")
	}
	settings, ok := sink.events[1].(events.StableSettingsUpdated)
	if !ok {
		t.Fatalf("second event has wrong type: %T", sink.events[1])
	}
	if settings.Before.FeeBps != 30 || settings.After.FeeBps != 50 {
		t.Fatalf("settings snapshot wrong: %+v", settings)
	}
}

func TestListAndLookup(t *testing.T) {
	env := newTestEnv(t, PriceScale)
	coins, err := env.engine.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(coins) != 1 || coins[0].ID != env.id {
		t.Fatalf("unexpected listing: %+v", coins)
	}
	if _, err := env.engine.Stablecoin("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
