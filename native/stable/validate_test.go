package stable

import (
	"errors"
	"strings"
	"testing"
)

func TestLimitsValidateAmount(t *testing.T) {
	limits := DefaultLimits()
	if err := limits.ValidateAmount(999); !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected too small, got %v", err)
	}
	if err := limits.ValidateAmount(1_000); err != nil {
		t.Fatalf("floor should pass: %v", err)
	}
	if err := limits.ValidateAmount(1_000_000_000_000); err != nil {
		t.Fatalf("ceiling should pass: %v", err)
	}
	if err := limits.ValidateAmount(1_000_000_000_001); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestLimitsNormaliseFillsDefaults(t *testing.T) {
	limits := Limits{MaxFeeBps: 500}.Normalise()
	if limits.MinTransactionAmount != MinTransactionAmount {
		t.Fatalf("expected default floor, got %d", limits.MinTransactionAmount)
	}
	if limits.MaxFeeBps != 500 {
		t.Fatalf("explicit value overwritten: %d", limits.MaxFeeBps)
	}
}

func TestValidateCollateralRatio(t *testing.T) {
	if err := ValidateCollateralRatio(0, 0, MinCollateralRatioBps); err != nil {
		t.Fatalf("zero supply must pass: %v", err)
	}
	if err := ValidateCollateralRatio(1_500_000, 1_000_000, 15_000); err != nil {
		t.Fatalf("exact floor must pass: %v", err)
	}
	if err := ValidateCollateralRatio(1_499_999, 1_000_000, 15_000); !errors.Is(err, ErrCollateralRatioTooLow) {
		t.Fatalf("expected ratio too low, got %v", err)
	}
}

func TestValidateFee(t *testing.T) {
	limits := DefaultLimits()
	if err := limits.ValidateFee(1_000); err != nil {
		t.Fatalf("cap should pass: %v", err)
	}
	if err := limits.ValidateFee(1_001); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("expected fee too high, got %v", err)
	}
}

func TestValidateMetadata(t *testing.T) {
	if err := ValidateMetadata("Dollar Token", "USDF", "USD"); err != nil {
		t.Fatalf("valid metadata rejected: %v", err)
	}
	if err := ValidateMetadata("ab", "USDF", "USD"); !errors.Is(err, ErrNameTooShort) {
		t.Fatalf("expected name too short, got %v", err)
	}
	if err := ValidateMetadata(strings.Repeat("x", 33), "USDF", "USD"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if err := ValidateMetadata("Dollar Token", "U", "USD"); !errors.Is(err, ErrSymbolTooShort) {
		t.Fatalf("expected symbol too short, got %v", err)
	}
	if err := ValidateMetadata("Dollar Token", "TOOLONGSYMBOL", "USD"); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected invalid symbol, got %v", err)
	}
	if err := ValidateMetadata("Dollar Token", "USDF", ""); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency, got %v", err)
	}
	if err := ValidateMetadata("Dollar Token", "USDF", "TOOLONGCODE"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency, got %v", err)
	}
}

func TestValidateTokenAccount(t *testing.T) {
	account := TokenAccount{Address: "acct-1", Mint: "mint-1", Owner: "alice", Balance: 10}
	if err := ValidateTokenAccount(account, "mint-1", "alice"); err != nil {
		t.Fatalf("matching account rejected: %v", err)
	}
	if err := ValidateTokenAccount(account, "mint-2", "alice"); !errors.Is(err, ErrInvalidTokenAccount) {
		t.Fatalf("expected mint mismatch, got %v", err)
	}
	if err := ValidateTokenAccount(account, "mint-1", "bob"); !errors.Is(err, ErrInvalidTokenAccount) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}
	if err := ValidateTokenAccount(TokenAccount{}, "mint-1", "alice"); !errors.Is(err, ErrInvalidTokenAccount) {
		t.Fatalf("expected missing account rejection, got %v", err)
	}
}

func TestValidateVault(t *testing.T) {
	vault := &Vault{ID: "v1", StablecoinID: "s1", TotalCollateral: 100}
	if err := ValidateVault(vault, "s1"); err != nil {
		t.Fatalf("valid vault rejected: %v", err)
	}
	if err := ValidateVault(vault, "s2"); !errors.Is(err, ErrInvalidVault) {
		t.Fatalf("expected invalid vault, got %v", err)
	}
	if err := ValidateVault(&Vault{ID: "v1", StablecoinID: "s1"}, "s1"); !errors.Is(err, ErrEmptyVault) {
		t.Fatalf("expected empty vault, got %v", err)
	}
	if err := ValidateVault(nil, "s1"); !errors.Is(err, ErrInvalidVault) {
		t.Fatalf("expected nil vault rejection, got %v", err)
	}
}
