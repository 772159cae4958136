package stable

import "math"

// Ref is an opaque reference to an external account, mint, or feed. The engine
// never interprets its contents beyond equality checks.
type Ref string

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool { return r == "" }

// Settings carries the authority-tunable parameters of an issuance record.
type Settings struct {
	MinCollateralRatioBps uint16
	FeeBps                uint16
	MaxSupply             uint64
	MintPaused            bool
	RedeemPaused          bool
}

// Stats accumulates lifetime issuance activity. Counters only grow.
type Stats struct {
	TotalMinted uint64
	TotalBurned uint64
	TotalFees   uint64
}

// Stablecoin is the issuance record for one stablecoin: metadata, linkage to
// external mints and feeds, the live supply, and its settings and stats.
type Stablecoin struct {
	ID             string
	Authority      Ref
	Name           string
	Symbol         string
	TargetCurrency string
	TokenMint      Ref
	CollateralMint Ref
	PriceFeed      Ref
	VaultID        string
	CurrentSupply  uint64
	Settings       Settings
	Stats          Stats
	CreatedAt      int64
	LastUpdated    int64
}

// Clone returns a deep copy safe to mutate without touching the stored record.
func (s *Stablecoin) Clone() *Stablecoin {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// CalculateFee returns the protocol fee for amount at the record's fee rate.
func (s *Stablecoin) CalculateFee(amount uint64) (uint64, error) {
	if s == nil {
		return 0, ErrNotFound
	}
	return PercentageOf(amount, s.Settings.FeeBps)
}

// CanMint reports whether amount more units fit under the supply cap.
func (s *Stablecoin) CanMint(amount uint64) bool {
	if s == nil {
		return false
	}
	if amount > math.MaxUint64-s.CurrentSupply {
		return false
	}
	return s.CurrentSupply+amount <= s.Settings.MaxSupply
}

// IsMintPaused reports whether minting is currently halted.
func (s *Stablecoin) IsMintPaused() bool { return s != nil && s.Settings.MintPaused }

// IsRedeemPaused reports whether redemption is currently halted.
func (s *Stablecoin) IsRedeemPaused() bool { return s != nil && s.Settings.RedeemPaused }

// Vault tracks the collateral backing one stablecoin together with its running
// deposit and withdrawal statistics.
type Vault struct {
	ID                 string
	StablecoinID       string
	CollateralAccount  Ref
	TotalCollateral    uint64
	TotalValueLocked   uint64
	CurrentRatioBps    uint16
	LastDepositTime    int64
	LastWithdrawalTime int64
	DepositCount       uint32
	WithdrawalCount    uint32
}

// Clone returns a deep copy safe to mutate without touching the stored record.
func (v *Vault) Clone() *Vault {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

// ProcessDeposit records an inbound collateral amount with the issued value it
// backs, bumps the deposit counters, and recomputes the backing ratio.
func (v *Vault) ProcessDeposit(amount, value uint64, now int64) error {
	if v == nil {
		return ErrInvalidVault
	}
	collateral, err := checkedAdd(v.TotalCollateral, amount)
	if err != nil {
		return err
	}
	locked, err := checkedAdd(v.TotalValueLocked, value)
	if err != nil {
		return err
	}
	v.TotalCollateral = collateral
	v.TotalValueLocked = locked
	v.DepositCount++
	v.LastDepositTime = now
	return v.UpdateCollateralRatio()
}

// ProcessWithdrawal records an outbound collateral amount with the issued value
// it released, bumps the withdrawal counters, and recomputes the backing ratio.
func (v *Vault) ProcessWithdrawal(amount, value uint64, now int64) error {
	if v == nil {
		return ErrInvalidVault
	}
	if amount > v.TotalCollateral {
		return ErrInsufficientCollateral
	}
	collateral, err := checkedSub(v.TotalCollateral, amount)
	if err != nil {
		return err
	}
	locked, err := checkedSub(v.TotalValueLocked, value)
	if err != nil {
		return err
	}
	v.TotalCollateral = collateral
	v.TotalValueLocked = locked
	v.WithdrawalCount++
	v.LastWithdrawalTime = now
	return v.UpdateCollateralRatio()
}

// UpdateCollateralRatio recomputes CurrentRatioBps from the vault holdings. The
// ratio is zero when either operand is zero and fails with ErrMathOverflow when
// it does not fit a uint16. Recomputation without an intervening mutation is a
// no-op.
func (v *Vault) UpdateCollateralRatio() error {
	if v == nil {
		return ErrInvalidVault
	}
	if v.TotalCollateral == 0 || v.TotalValueLocked == 0 {
		v.CurrentRatioBps = 0
		return nil
	}
	ratio, err := ratioBpsRounded(v.TotalValueLocked, v.TotalCollateral)
	if err != nil {
		return err
	}
	if ratio > math.MaxUint16 {
		return ErrMathOverflow
	}
	v.CurrentRatioBps = uint16(ratio)
	return nil
}

// CanWithdraw reports whether removing amount keeps the remaining collateral
// at or above the supplied backing floor for the value still locked. An amount
// exceeding holdings always fails; a vault with nothing locked always passes.
func (v *Vault) CanWithdraw(amount uint64, minRatioBps uint16) bool {
	if v == nil || amount > v.TotalCollateral {
		return false
	}
	if v.TotalValueLocked == 0 {
		return true
	}
	remaining := v.TotalCollateral - amount
	ratio, err := RatioBps(remaining, v.TotalValueLocked)
	if err != nil {
		return false
	}
	return ratio >= uint64(minRatioBps)
}
