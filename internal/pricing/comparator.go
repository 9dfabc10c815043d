package pricing

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

// CompareAllPlans prices readings under every plan, in catalog order, and
// ranks the results by ascending cost. Plans with equal cost keep their
// catalog order.
//
// A failure for any single plan aborts the whole comparison so that a
// partial result is never mistaken for a complete one.
func CompareAllPlans(meterID, subscribedPlanID string, readings []domain.Reading, plans []domain.PricePlan) (domain.Comparison, error) {
	if len(readings) == 0 {
		return domain.Comparison{}, fmt.Errorf("meter %q: %w", meterID, ErrNoReadings)
	}

	costs := make(map[string]decimal.Decimal, len(plans))
	ranked := make([]domain.PlanCost, 0, len(plans))
	for _, p := range plans {
		cost, err := CalculateCost(readings, p)
		if err != nil {
			return domain.Comparison{}, fmt.Errorf("meter %q, plan %q: %w", meterID, p.ID, err)
		}
		costs[p.ID] = cost
		ranked = append(ranked, domain.PlanCost{PlanID: p.ID, Cost: cost})
	}
	slices.SortStableFunc(ranked, func(a, b domain.PlanCost) int {
		return a.Cost.Cmp(b.Cost)
	})

	return domain.Comparison{
		MeterID:          meterID,
		SubscribedPlanID: subscribedPlanID,
		CostsByPlan:      costs,
		Ranked:           ranked,
	}, nil
}

// ValidateLimit rejects non-positive recommendation limits. A nil limit means
// "no limit".
func ValidateLimit(limit *int) error {
	if limit != nil && *limit <= 0 {
		return fmt.Errorf("%w: limit must be > 0, got %d", ErrInvalidArgument, *limit)
	}
	return nil
}

// Recommend returns the first limit entries of ranked, or all of them when
// limit is nil or not smaller than len(ranked). The result is a fresh slice.
func Recommend(ranked []domain.PlanCost, limit *int) ([]domain.PlanCost, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	n := len(ranked)
	if limit != nil && *limit < n {
		n = *limit
	}
	return slices.Clone(ranked[:n]), nil
}
