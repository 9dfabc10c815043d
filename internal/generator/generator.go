// Package generator produces synthetic meter readings for seeding stores.
package generator

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

const (
	DefaultCount    = 20
	DefaultInterval = 10 * time.Second
)

// Generator builds readings spaced Interval apart ending at Now().
type Generator struct {
	Interval time.Duration
	Now      func() time.Time
	rnd      *rand.Rand
}

// New returns a generator seeded with seed; equal seeds give equal values.
func New(seed uint64) *Generator {
	return &Generator{
		Interval: DefaultInterval,
		Now:      time.Now,
		rnd:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Generate returns n readings in ascending time order. Values are the
// absolute value of a standard normal sample rounded up to four decimals.
func (g *Generator) Generate(n int) []domain.Reading {
	now := g.Now().UTC()
	readings := make([]domain.Reading, 0, max(n, 0))
	for i := 0; i < n; i++ {
		v := decimal.NewFromFloat(math.Abs(g.rnd.NormFloat64())).RoundCeil(4)
		readings = append(readings, domain.Reading{
			Time:  now.Add(-time.Duration(i) * g.Interval),
			Value: v,
		})
	}
	slices.SortFunc(readings, func(a, b domain.Reading) int { return a.Time.Compare(b.Time) })
	return readings
}
