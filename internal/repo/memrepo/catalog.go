package memrepo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo"
)

var (
	_ repo.PlanCatalog      = (*Catalog)(nil)
	_ repo.AccountDirectory = (*Accounts)(nil)
)

// Catalog is an immutable price plan catalog that keeps plans in the order
// they were supplied.
type Catalog struct {
	plans []domain.PricePlan
	byID  map[string]int
}

func NewCatalog(plans ...domain.PricePlan) (*Catalog, error) {
	c := &Catalog{
		plans: make([]domain.PricePlan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate price plan %q", p.ID)
		}
		p.PeakMultipliers = maps.Clone(p.PeakMultipliers)
		c.byID[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

func (c *Catalog) Plan(planID string) (domain.PricePlan, bool) {
	i, ok := c.byID[planID]
	if !ok {
		return domain.PricePlan{}, false
	}
	return c.plans[i], true
}

func (c *Catalog) Plans() []domain.PricePlan {
	return slices.Clone(c.plans)
}

// Accounts is an immutable meter to price plan directory.
type Accounts struct {
	plans map[string]string
}

func NewAccounts(meterToPlan map[string]string) *Accounts {
	return &Accounts{plans: maps.Clone(meterToPlan)}
}

func (a *Accounts) PricePlanID(meterID string) (string, bool) {
	id, ok := a.plans[meterID]
	return id, ok
}

// MeterIDs returns every meter with an account, sorted.
func (a *Accounts) MeterIDs() []string {
	return slices.Sorted(maps.Keys(a.plans))
}
