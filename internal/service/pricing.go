package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/pricing"
	"github.com/milad/joienergy/internal/repo"
)

// PricingService looks up a meter's readings, account and plans and hands
// consistent snapshots of them to the pricing core.
type PricingService struct {
	readings repo.ReadingStore
	accounts repo.AccountDirectory
	plans    repo.PlanCatalog

	now    func() time.Time
	window time.Duration
	log    *zap.Logger
}

type Option func(*PricingService)

// WithClock overrides the reference instant used for windowed costs.
func WithClock(now func() time.Time) Option {
	return func(s *PricingService) { s.now = now }
}

// WithDefaultWindow sets the window used when ComputeCost gets zero.
func WithDefaultWindow(d time.Duration) Option {
	return func(s *PricingService) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *PricingService) { s.log = l }
}

func NewPricingService(readings repo.ReadingStore, accounts repo.AccountDirectory, plans repo.PlanCatalog, opts ...Option) *PricingService {
	s := &PricingService{
		readings: readings,
		accounts: accounts,
		plans:    plans,
		now:      time.Now,
		window:   pricing.DefaultWindow,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StoreReadings appends readings to a meter, creating it if needed.
func (s *PricingService) StoreReadings(ctx context.Context, meterID string, readings []domain.Reading) error {
	if strings.TrimSpace(meterID) == "" {
		return fmt.Errorf("%w: smart meter id is required", pricing.ErrInvalidArgument)
	}
	if len(readings) == 0 {
		return fmt.Errorf("%w: at least one reading is required", pricing.ErrInvalidArgument)
	}
	for i, r := range readings {
		if r.Time.IsZero() {
			return fmt.Errorf("%w: reading %d has no time", pricing.ErrInvalidArgument, i)
		}
		if !domain.InReadingRange(r.Time) {
			return fmt.Errorf("%w: reading %d time %s is outside %s .. %s", pricing.ErrInvalidArgument, i,
				r.Time.Format(time.RFC3339), domain.MinReadingTime.Format(time.RFC3339), domain.MaxReadingTime.Format(time.RFC3339))
		}
		if r.Value.IsNegative() {
			return fmt.Errorf("%w: reading %d is negative (%s)", pricing.ErrInvalidArgument, i, r.Value)
		}
	}

	if err := s.readings.Append(ctx, meterID, readings); err != nil {
		return fmt.Errorf("store readings for %q: %w", meterID, err)
	}
	s.log.Debug("stored readings", zap.String("meter_id", meterID), zap.Int("count", len(readings)))
	return nil
}

// Readings returns every reading of a meter.
func (s *PricingService) Readings(ctx context.Context, meterID string) ([]domain.Reading, error) {
	rs, ok, err := s.readings.Readings(ctx, meterID)
	if err != nil {
		return nil, fmt.Errorf("load readings for %q: %w", meterID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: smart meter %q", pricing.ErrNotFound, meterID)
	}
	return rs, nil
}

// ComputeCost prices the meter's readings newer than now-window under its
// subscribed plan. A zero window selects the default window.
func (s *PricingService) ComputeCost(ctx context.Context, meterID string, window time.Duration) (domain.CostResult, error) {
	if window < 0 {
		return domain.CostResult{}, fmt.Errorf("%w: window must be > 0, got %s", pricing.ErrInvalidArgument, window)
	}
	if window == 0 {
		window = s.window
	}

	planID, ok := s.accounts.PricePlanID(meterID)
	if !ok {
		return domain.CostResult{}, fmt.Errorf("%w: no account for smart meter %q", pricing.ErrNotFound, meterID)
	}
	plan, ok := s.plans.Plan(planID)
	if !ok {
		return domain.CostResult{}, fmt.Errorf("%w: price plan %q of smart meter %q", pricing.ErrNotFound, planID, meterID)
	}
	all, err := s.Readings(ctx, meterID)
	if err != nil {
		return domain.CostResult{}, err
	}

	recent := pricing.RecentWindow(all, s.now(), window)
	cost, err := pricing.CalculateCost(recent, plan)
	if err != nil {
		return domain.CostResult{}, fmt.Errorf("smart meter %q: %w", meterID, err)
	}
	return domain.CostResult{
		MeterID: meterID,
		PlanID:  planID,
		Window:  window,
		Cost:    cost,
	}, nil
}

// CompareAllPlans prices the meter's full history under every catalog plan.
func (s *PricingService) CompareAllPlans(ctx context.Context, meterID string) (domain.Comparison, error) {
	planID, ok := s.accounts.PricePlanID(meterID)
	if !ok {
		return domain.Comparison{}, fmt.Errorf("%w: no account for smart meter %q", pricing.ErrNotFound, meterID)
	}
	return s.compare(ctx, meterID, planID)
}

// RecommendPlans returns the cheapest plans for a meter, cheapest first. A
// nil limit returns every plan.
func (s *PricingService) RecommendPlans(ctx context.Context, meterID string, limit *int) ([]domain.PlanCost, error) {
	if err := pricing.ValidateLimit(limit); err != nil {
		return nil, err
	}
	planID, _ := s.accounts.PricePlanID(meterID)
	cmp, err := s.compare(ctx, meterID, planID)
	if err != nil {
		return nil, err
	}
	return pricing.Recommend(cmp.Ranked, limit)
}

// Plans returns the catalog in its configured order.
func (s *PricingService) Plans() []domain.PricePlan {
	return s.plans.Plans()
}

func (s *PricingService) compare(ctx context.Context, meterID, planID string) (domain.Comparison, error) {
	rs, ok, err := s.readings.Readings(ctx, meterID)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("load readings for %q: %w", meterID, err)
	}
	if !ok {
		rs = nil
	}
	return pricing.CompareAllPlans(meterID, planID, rs, s.plans.Plans())
}
