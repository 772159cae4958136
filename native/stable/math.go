package stable

import (
	"math"

	"github.com/holiman/uint256"
)

// BasisPointsDivisor is the denominator for basis-point percentages.
const BasisPointsDivisor = 10_000

func checkedAdd(a, b uint64) (uint64, error) {
	if b > math.MaxUint64-a {
		return 0, ErrMathOverflow
	}
	return a + b, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrMathOverflow
	}
	return a * b, nil
}

func checkedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrMathOverflow
	}
	return a / b, nil
}

// PercentageOf computes amount*bps/10000 using a wide intermediate so the
// product cannot overflow before the final division. The narrowed result is
// rejected when it does not fit a uint64.
func PercentageOf(amount uint64, bps uint16) (uint64, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(bps)))
	product.Div(product, uint256.NewInt(BasisPointsDivisor))
	if !product.IsUint64() {
		return 0, ErrMathOverflow
	}
	return product.Uint64(), nil
}

// RatioBps computes value*10000/base in basis points with a wide intermediate.
// A zero base fails with ErrMathOverflow rather than dividing by zero.
func RatioBps(value, base uint64) (uint64, error) {
	if base == 0 {
		return 0, ErrMathOverflow
	}
	ratio := new(uint256.Int).Mul(uint256.NewInt(value), uint256.NewInt(BasisPointsDivisor))
	ratio.Div(ratio, uint256.NewInt(base))
	if !ratio.IsUint64() {
		return 0, ErrMathOverflow
	}
	return ratio.Uint64(), nil
}

// ratioBpsRounded computes value*10000/base rounded to the nearest basis
// point. The solvency checks keep the conservative floored RatioBps; this
// variant only feeds the cached vault ratio.
func ratioBpsRounded(value, base uint64) (uint64, error) {
	if base == 0 {
		return 0, ErrMathOverflow
	}
	ratio := new(uint256.Int).Mul(uint256.NewInt(value), uint256.NewInt(BasisPointsDivisor))
	ratio.Add(ratio, uint256.NewInt(base/2))
	ratio.Div(ratio, uint256.NewInt(base))
	if !ratio.IsUint64() {
		return 0, ErrMathOverflow
	}
	return ratio.Uint64(), nil
}

// CollateralAmount converts an issued-unit amount into the collateral quantity
// backing it at the supplied standardized price: amount*PriceScale/price.
func CollateralAmount(amount, price uint64) (uint64, error) {
	if price == 0 {
		return 0, ErrInvalidOraclePrice
	}
	collateral := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(PriceScale))
	collateral.Div(collateral, uint256.NewInt(price))
	if !collateral.IsUint64() {
		return 0, ErrMathOverflow
	}
	return collateral.Uint64(), nil
}

func pow10(exp uint8) (uint64, error) {
	// 10^20 overflows uint64.
	if exp > 19 {
		return 0, ErrMathOverflow
	}
	result := uint64(1)
	for i := uint8(0); i < exp; i++ {
		result *= 10
	}
	return result, nil
}
