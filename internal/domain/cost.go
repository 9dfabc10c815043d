package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanCost is the cost of one meter's readings under one price plan.
type PlanCost struct {
	PlanID string
	Cost   decimal.Decimal
}

// CostResult is the cost of a meter's recent readings under its subscribed plan.
type CostResult struct {
	MeterID string
	PlanID  string
	Window  time.Duration
	Cost    decimal.Decimal
}

// Comparison is the cost of one meter's readings under every known plan.
type Comparison struct {
	MeterID          string
	SubscribedPlanID string
	CostsByPlan      map[string]decimal.Decimal
	// Ranked holds every plan ordered by ascending cost; equal costs keep
	// catalog order.
	Ranked []PlanCost
}
