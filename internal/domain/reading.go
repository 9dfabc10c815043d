package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Reading represents a single smart meter reading at a point in time.
// Value is an instantaneous consumption rate (units per hour), not a
// cumulative meter total.
type Reading struct {
	Time  time.Time
	Value decimal.Decimal
}

// Reading times are kept as int64 Unix nanoseconds by the stores, which
// bounds them to 1677-09-21 .. 2262-04-11.
var (
	MinReadingTime = time.Unix(0, math.MinInt64).UTC()
	MaxReadingTime = time.Unix(0, math.MaxInt64).UTC()
)

// InReadingRange reports whether t can be stored as a reading time.
func InReadingRange(t time.Time) bool {
	return !t.Before(MinReadingTime) && !t.After(MaxReadingTime)
}
