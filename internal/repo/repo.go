package repo

import (
	"context"

	"github.com/milad/joienergy/internal/domain"
)

// ReadingStore holds each meter's readings in insertion order.
type ReadingStore interface {
	// Append adds readings to a meter, creating the meter if it is unknown.
	Append(ctx context.Context, meterID string, readings []domain.Reading) error
	// Readings returns a snapshot of a meter's readings. ok is false when the
	// meter is unknown. The returned slice is owned by the caller.
	Readings(ctx context.Context, meterID string) (readings []domain.Reading, ok bool, err error)
}

// AccountDirectory maps a meter to the price plan it is subscribed to.
type AccountDirectory interface {
	PricePlanID(meterID string) (planID string, ok bool)
}

// PlanCatalog is the read-only set of known price plans.
type PlanCatalog interface {
	Plan(planID string) (domain.PricePlan, bool)
	// Plans returns every plan in catalog order.
	Plans() []domain.PricePlan
}
