package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milad/joienergy/internal/domain"
)

var t0 = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func reading(at time.Time, v string) domain.Reading {
	return domain.Reading{Time: at, Value: dec(v)}
}

func plan(id, rate string) domain.PricePlan {
	return domain.PricePlan{ID: id, UnitRate: dec(rate)}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "got %s want %s", got, want)
}

func TestCalculateCost_TwoReadingsOneHourApart(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "1.0"),
		reading(t0.Add(time.Hour), "3.0"),
	}

	requireDecimal(t, "4", sumReadings(readings))
	assert.Equal(t, time.Hour, span(readings))

	cost, err := CalculateCost(readings, plan("p", "2.0"))
	require.NoError(t, err)
	requireDecimal(t, "4", cost)
}

func TestCalculateCost_TwoReadingsTwoHoursApart(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "5.0"),
		reading(t0.Add(2*time.Hour), "1.0"),
	}

	cost, err := CalculateCost(readings, plan("p", "1.0"))
	require.NoError(t, err)
	requireDecimal(t, "1.5", cost)
}

func TestCalculateCost_IgnoresReadingOrder(t *testing.T) {
	t.Parallel()

	ordered := []domain.Reading{
		reading(t0, "1"),
		reading(t0.Add(30*time.Minute), "2"),
		reading(t0.Add(90*time.Minute), "3"),
	}
	shuffled := []domain.Reading{ordered[2], ordered[0], ordered[1]}

	a, err := CalculateCost(ordered, plan("p", "3"))
	require.NoError(t, err)
	b, err := CalculateCost(shuffled, plan("p", "3"))
	require.NoError(t, err)
	requireDecimal(t, a.String(), b)
	assert.Equal(t, 90*time.Minute, span(shuffled))
}

func TestCalculateCost_SingleReadingIsDegenerate(t *testing.T) {
	t.Parallel()

	_, err := CalculateCost([]domain.Reading{reading(t0, "5.0")}, plan("p", "1"))
	require.ErrorIs(t, err, ErrDegenerateTimeWindow)
}

func TestCalculateCost_SharedTimestampIsDegenerate(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{reading(t0, "1"), reading(t0, "2"), reading(t0, "3")}
	_, err := CalculateCost(readings, plan("p", "1"))
	require.ErrorIs(t, err, ErrDegenerateTimeWindow)
}

func TestCalculateCost_EmptyIsInsufficient(t *testing.T) {
	t.Parallel()

	_, err := CalculateCost(nil, plan("p", "1"))
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCalculateCost_LinearInUnitRate(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "0.1234"),
		reading(t0.Add(10*time.Second), "0.9876"),
		reading(t0.Add(40*time.Second), "0.5"),
	}
	for _, rate := range []string{"0.5", "1", "2.25", "10"} {
		single, err := CalculateCost(readings, plan("p", rate))
		require.NoError(t, err)
		double, err := CalculateCost(readings, plan("p", dec(rate).Mul(decimal.NewFromInt(2)).String()))
		require.NoError(t, err)
		requireDecimal(t, single.Mul(decimal.NewFromInt(2)).String(), double)
	}
}

func TestCalculateCost_ExactForSubHourSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		readings []domain.Reading
		want     string
	}{
		{
			name:     "one second apart",
			readings: []domain.Reading{reading(t0, "1"), reading(t0.Add(time.Second), "1")},
			want:     "3600",
		},
		{
			name: "ten seconds apart",
			readings: []domain.Reading{
				reading(t0, "1"),
				reading(t0.Add(10*time.Second), "1"),
				reading(t0.Add(20*time.Second), "1"),
			},
			want: "180",
		},
		{
			name:     "one microsecond apart",
			readings: []domain.Reading{reading(t0, "1"), reading(t0.Add(time.Microsecond), "1")},
			want:     "3600000000",
		},
		{
			name: "generator spacing",
			readings: []domain.Reading{
				reading(t0, "0.1234"),
				reading(t0.Add(10*time.Second), "0.9876"),
				reading(t0.Add(40*time.Second), "0.5"),
			},
			want: "48.33",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CalculateCost(tt.readings, plan("p", "1"))
			require.NoError(t, err)
			requireDecimal(t, tt.want, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCalculateCost_RoundsOnlyOnce(t *testing.T) {
	t.Parallel()

	// 1 / (3 * 1h) has no terminating expansion.
	readings := []domain.Reading{
		reading(t0, "0"),
		reading(t0.Add(30*time.Minute), "0"),
		reading(t0.Add(time.Hour), "1"),
	}
	got, err := CalculateCost(readings, plan("p", "1"))
	require.NoError(t, err)
	requireDecimal(t, "0.33333333333333333333", got)
	assert.Equal(t, -CostPrecision, got.Exponent())
}

func TestCalculateCost_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0.Add(time.Hour), "3"),
		reading(t0, "1"),
	}
	before := append([]domain.Reading(nil), readings...)

	_, err := CalculateCost(readings, plan("p", "1"))
	require.NoError(t, err)
	assert.Equal(t, before, readings)
}
