package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricePlan is a supplier tariff: a flat unit rate with optional per-weekday
// peak multipliers.
type PricePlan struct {
	ID              string
	Supplier        string
	UnitRate        decimal.Decimal
	PeakMultipliers map[time.Weekday]decimal.Decimal
}

// Validate reports whether the plan can be used for cost calculation.
func (p PricePlan) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("price plan id is required")
	}
	if !p.UnitRate.IsPositive() {
		return fmt.Errorf("price plan %q: unit rate must be > 0, got %s", p.ID, p.UnitRate)
	}
	for day, m := range p.PeakMultipliers {
		if !m.IsPositive() {
			return fmt.Errorf("price plan %q: %s multiplier must be > 0, got %s", p.ID, day, m)
		}
	}
	return nil
}

// PriceAt returns the unit rate applicable at t, scaled by the peak
// multiplier of t's weekday when one is configured.
func (p PricePlan) PriceAt(t time.Time) decimal.Decimal {
	if m, ok := p.PeakMultipliers[t.Weekday()]; ok {
		return p.UnitRate.Mul(m)
	}
	return p.UnitRate
}

// ParseWeekday parses a full English weekday name, ignoring case.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == n {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
