package pricing

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

// CostPrecision is the number of decimal places kept by the single division
// in CalculateCost. Costs with a terminating expansion shorter than this are
// exact.
const CostPrecision int32 = 20

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// CalculateCost prices readings under plan:
//
//	cost = (mean reading / elapsed hours) * unit rate
//
// This is a rate of a rate, not an energy integral; keep it that way, stored
// comparisons depend on the exact figure. Peak multipliers are ignored.
//
// The formula is evaluated as
//
//	sum * nanosPerHour * unitRate / (count * elapsedNanos)
//
// so the only rounding is one DivRound to CostPrecision places. Trailing
// zeros are dropped.
func CalculateCost(readings []domain.Reading, plan domain.PricePlan) (decimal.Decimal, error) {
	if len(readings) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no readings to price", ErrInsufficientData)
	}
	elapsed := span(readings)
	if elapsed == 0 {
		return decimal.Zero, fmt.Errorf("%w: %d reading(s) share a single timestamp", ErrDegenerateTimeWindow, len(readings))
	}
	num := sumReadings(readings).Mul(nanosPerHour).Mul(plan.UnitRate)
	den := decimal.NewFromInt(int64(len(readings))).Mul(decimal.NewFromInt(int64(elapsed)))
	return trimZeros(num.DivRound(den, CostPrecision)), nil
}

var ten = big.NewInt(10)

// trimZeros drops trailing fractional zeros so 4.000 renders as 4.
func trimZeros(d decimal.Decimal) decimal.Decimal {
	coef, exp := new(big.Int).Set(d.Coefficient()), d.Exponent()
	q, r := new(big.Int), new(big.Int)
	for exp < 0 && coef.Sign() != 0 {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}
	if coef.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(coef, exp)
}

func sumReadings(readings []domain.Reading) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range readings {
		sum = sum.Add(r.Value)
	}
	return sum
}

// span is the time between the earliest and latest reading. Readings may
// arrive in any order.
func span(readings []domain.Reading) time.Duration {
	if len(readings) == 0 {
		return 0
	}
	first, last := readings[0].Time, readings[0].Time
	for _, r := range readings[1:] {
		if r.Time.Before(first) {
			first = r.Time
		}
		if r.Time.After(last) {
			last = r.Time
		}
	}
	return last.Sub(first)
}
