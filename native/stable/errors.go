package stable

import "errors"

var (
	// ErrNameTooShort indicates a stablecoin name below the minimum length.
	ErrNameTooShort = errors.New("stable: name too short")
	// ErrSymbolTooShort indicates a stablecoin symbol below the minimum length.
	ErrSymbolTooShort = errors.New("stable: symbol too short")
	// ErrInvalidName indicates a name above the maximum length.
	ErrInvalidName = errors.New("stable: invalid name")
	// ErrInvalidSymbol indicates a symbol above the maximum length.
	ErrInvalidSymbol = errors.New("stable: invalid symbol")
	// ErrInvalidCurrency indicates a missing or oversized target currency code.
	ErrInvalidCurrency = errors.New("stable: invalid currency")
	// ErrInvalidAmount indicates a zero or otherwise unusable amount.
	ErrInvalidAmount = errors.New("stable: invalid amount")
	// ErrAmountTooSmall indicates an amount below the transaction floor.
	ErrAmountTooSmall = errors.New("stable: amount too small")
	// ErrAmountTooLarge indicates an amount above the transaction ceiling.
	ErrAmountTooLarge = errors.New("stable: amount too large")
	// ErrUnauthorized indicates the caller is not the configured authority.
	ErrUnauthorized = errors.New("stable: caller is not the authority")
	// ErrMathOverflow indicates an arithmetic step would overflow or underflow.
	ErrMathOverflow = errors.New("stable: math overflow")
	// ErrInvalidTokenAccount indicates a token account whose mint or owner does
	// not match the expected issuance record linkage.
	ErrInvalidTokenAccount = errors.New("stable: invalid token account")
	// ErrInvalidVault indicates a vault that does not belong to the stablecoin.
	ErrInvalidVault = errors.New("stable: invalid vault")
	// ErrInvalidOraclePrice indicates a missing, non-positive, or low-confidence
	// oracle sample.
	ErrInvalidOraclePrice = errors.New("stable: invalid oracle price")
	// ErrStaleOraclePrice indicates an oracle sample older than the freshness window.
	ErrStaleOraclePrice = errors.New("stable: stale oracle price")
	// ErrMintingPaused indicates the mint flag is set on the issuance record.
	ErrMintingPaused = errors.New("stable: minting paused")
	// ErrRedeemingPaused indicates the redeem flag is set on the issuance record.
	ErrRedeemingPaused = errors.New("stable: redeeming paused")
	// ErrCollateralRatioTooLow indicates the backing ratio fell below the floor.
	ErrCollateralRatioTooLow = errors.New("stable: collateral ratio too low")
	// ErrCollateralRatioTooHigh indicates the backing ratio exceeded the ceiling.
	ErrCollateralRatioTooHigh = errors.New("stable: collateral ratio too high")
	// ErrFeeTooHigh indicates a fee above the basis-point cap.
	ErrFeeTooHigh = errors.New("stable: fee too high")
	// ErrMaxSupplyExceeded indicates a mint that would breach the supply cap.
	ErrMaxSupplyExceeded = errors.New("stable: max supply exceeded")
	// ErrInsufficientBalance indicates the caller holds fewer tokens than requested.
	ErrInsufficientBalance = errors.New("stable: insufficient balance")
	// ErrInsufficientCollateral indicates a withdrawal exceeding vault holdings.
	ErrInsufficientCollateral = errors.New("stable: insufficient collateral")
	// ErrInvalidMaxSupply indicates a supply cap below the outstanding supply.
	ErrInvalidMaxSupply = errors.New("stable: invalid max supply")
	// ErrEmptyVault indicates a vault holding no collateral.
	ErrEmptyVault = errors.New("stable: empty vault")
	// ErrNotFound indicates the requested issuance record does not exist.
	ErrNotFound = errors.New("stable: record not found")
)
