package stable

import "strings"

const (
	// MinTransactionAmount is the smallest mint or redeem amount accepted.
	MinTransactionAmount uint64 = 1_000
	// MaxTransactionAmount is the largest mint or redeem amount accepted.
	MaxTransactionAmount uint64 = 1_000_000_000_000
	// MinCollateralRatioBps is the lowest configurable backing ratio floor.
	MinCollateralRatioBps uint16 = 10_000
	// MaxCollateralRatioBps is the highest configurable backing ratio floor.
	MaxCollateralRatioBps uint16 = 30_000
	// DefaultCollateralRatioBps is applied to new issuance records.
	DefaultCollateralRatioBps uint16 = 15_000
	// MaxFeeBps caps the protocol fee rate.
	MaxFeeBps uint16 = 1_000
	// DefaultFeeBps is applied to new issuance records.
	DefaultFeeBps uint16 = 30

	// MinNameLength and MaxNameLength bound stablecoin names.
	MinNameLength = 3
	MaxNameLength = 32
	// MinSymbolLength and MaxSymbolLength bound stablecoin symbols.
	MinSymbolLength = 2
	MaxSymbolLength = 10
	// MaxCurrencyLength bounds the target currency code.
	MaxCurrencyLength = 10
)

// Limits carries the transaction and parameter bounds enforced by the engine.
// Zero fields are filled with the package defaults by Normalise.
type Limits struct {
	MinTransactionAmount  uint64
	MaxTransactionAmount  uint64
	MinCollateralRatioBps uint16
	MaxCollateralRatioBps uint16
	MaxFeeBps             uint16
}

// DefaultLimits returns the built-in bounds.
func DefaultLimits() Limits {
	return Limits{
		MinTransactionAmount:  MinTransactionAmount,
		MaxTransactionAmount:  MaxTransactionAmount,
		MinCollateralRatioBps: MinCollateralRatioBps,
		MaxCollateralRatioBps: MaxCollateralRatioBps,
		MaxFeeBps:             MaxFeeBps,
	}
}

// Normalise fills unset fields with the package defaults and returns the
// resulting value.
func (l Limits) Normalise() Limits {
	defaults := DefaultLimits()
	if l.MinTransactionAmount == 0 {
		l.MinTransactionAmount = defaults.MinTransactionAmount
	}
	if l.MaxTransactionAmount == 0 {
		l.MaxTransactionAmount = defaults.MaxTransactionAmount
	}
	if l.MinCollateralRatioBps == 0 {
		l.MinCollateralRatioBps = defaults.MinCollateralRatioBps
	}
	if l.MaxCollateralRatioBps == 0 {
		l.MaxCollateralRatioBps = defaults.MaxCollateralRatioBps
	}
	if l.MaxFeeBps == 0 {
		l.MaxFeeBps = defaults.MaxFeeBps
	}
	return l
}

// ValidateAmount checks a transaction amount against the configured bounds.
func (l Limits) ValidateAmount(amount uint64) error {
	if amount < l.MinTransactionAmount {
		return ErrAmountTooSmall
	}
	if amount > l.MaxTransactionAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidateFee checks a fee rate against the configured cap.
func (l Limits) ValidateFee(feeBps uint16) error {
	if feeBps > l.MaxFeeBps {
		return ErrFeeTooHigh
	}
	return nil
}

// ValidateCollateralRatio checks that collateral backs supply at or above
// minRatioBps. A zero supply trivially passes since no obligations remain.
func ValidateCollateralRatio(collateral, supply uint64, minRatioBps uint16) error {
	if supply == 0 {
		return nil
	}
	ratio, err := RatioBps(collateral, supply)
	if err != nil {
		return err
	}
	if ratio < uint64(minRatioBps) {
		return ErrCollateralRatioTooLow
	}
	return nil
}

// ValidateMetadata checks name, symbol, and currency against the length bounds.
func ValidateMetadata(name, symbol, currency string) error {
	if len(name) < MinNameLength {
		return ErrNameTooShort
	}
	if len(name) > MaxNameLength {
		return ErrInvalidName
	}
	if len(symbol) < MinSymbolLength {
		return ErrSymbolTooShort
	}
	if len(symbol) > MaxSymbolLength {
		return ErrInvalidSymbol
	}
	trimmed := strings.TrimSpace(currency)
	if trimmed == "" || len(trimmed) > MaxCurrencyLength {
		return ErrInvalidCurrency
	}
	return nil
}

// ValidateTokenAccount checks the account linkage against the expected mint and
// owner. A zero expectation skips its check.
func ValidateTokenAccount(account TokenAccount, mint, owner Ref) error {
	if account.Address.IsZero() {
		return ErrInvalidTokenAccount
	}
	if !mint.IsZero() && account.Mint != mint {
		return ErrInvalidTokenAccount
	}
	if !owner.IsZero() && account.Owner != owner {
		return ErrInvalidTokenAccount
	}
	return nil
}

// ValidateVault checks that the vault belongs to the stablecoin and holds
// collateral.
func ValidateVault(vault *Vault, stablecoinID string) error {
	if vault == nil || vault.StablecoinID != stablecoinID {
		return ErrInvalidVault
	}
	if vault.TotalCollateral == 0 {
		return ErrEmptyVault
	}
	return nil
}
