package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milad/joienergy/internal/domain"
)

func defaultCatalog() []domain.PricePlan {
	return []domain.PricePlan{
		plan("price-plan-0", "10"),
		plan("price-plan-1", "2"),
		plan("price-plan-2", "1"),
	}
}

func planIDs(costs []domain.PlanCost) []string {
	ids := make([]string, 0, len(costs))
	for _, c := range costs {
		ids = append(ids, c.PlanID)
	}
	return ids
}

func TestCompareAllPlans_RanksAscending(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "1.0"),
		reading(t0.Add(time.Hour), "3.0"),
	}

	cmp, err := CompareAllPlans("smart-meter-0", "price-plan-0", readings, defaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, "smart-meter-0", cmp.MeterID)
	assert.Equal(t, "price-plan-0", cmp.SubscribedPlanID)
	require.Len(t, cmp.CostsByPlan, 3)
	requireDecimal(t, "20", cmp.CostsByPlan["price-plan-0"])
	requireDecimal(t, "4", cmp.CostsByPlan["price-plan-1"])
	requireDecimal(t, "2", cmp.CostsByPlan["price-plan-2"])
	assert.Equal(t, []string{"price-plan-2", "price-plan-1", "price-plan-0"}, planIDs(cmp.Ranked))
}

func TestCompareAllPlans_TiesKeepCatalogOrder(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "1"),
		reading(t0.Add(time.Hour), "1"),
	}
	catalog := []domain.PricePlan{
		plan("zeta", "2"),
		plan("alpha", "1"),
		plan("mid", "2.0"),
		plan("beta", "1.00"),
	}

	cmp, err := CompareAllPlans("m", "", readings, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "zeta", "mid"}, planIDs(cmp.Ranked))
}

func TestCompareAllPlans_NoReadingsIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := CompareAllPlans("m", "price-plan-0", nil, defaultCatalog())
	require.ErrorIs(t, err, ErrNoReadings)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompareAllPlans_AbortsOnFirstPlanFailure(t *testing.T) {
	t.Parallel()

	cmp, err := CompareAllPlans("m", "price-plan-0", []domain.Reading{reading(t0, "5")}, defaultCatalog())
	require.ErrorIs(t, err, ErrDegenerateTimeWindow)
	assert.Empty(t, cmp.CostsByPlan)
	assert.Empty(t, cmp.Ranked)
}

func TestCompareAllPlans_EmptyCatalog(t *testing.T) {
	t.Parallel()

	cmp, err := CompareAllPlans("m", "", []domain.Reading{reading(t0, "1")}, nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Ranked)
}

func TestRecommend_Limits(t *testing.T) {
	t.Parallel()

	readings := []domain.Reading{
		reading(t0, "5.0"),
		reading(t0.Add(2*time.Hour), "1.0"),
	}
	cmp, err := CompareAllPlans("m", "", readings, defaultCatalog())
	require.NoError(t, err)

	intp := func(n int) *int { return &n }

	tests := []struct {
		name  string
		limit *int
		want  []string
	}{
		{"absent", nil, []string{"price-plan-2", "price-plan-1", "price-plan-0"}},
		{"one", intp(1), []string{"price-plan-2"}},
		{"two", intp(2), []string{"price-plan-2", "price-plan-1"}},
		{"equal", intp(3), []string{"price-plan-2", "price-plan-1", "price-plan-0"}},
		{"larger", intp(10), []string{"price-plan-2", "price-plan-1", "price-plan-0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Recommend(cmp.Ranked, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, planIDs(got))
			if len(got) > 0 {
				assert.Equal(t, cmp.Ranked[:len(got)], got)
			}
		})
	}
}

func TestRecommend_RejectsNonPositiveLimit(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1} {
		n := n
		_, err := Recommend([]domain.PlanCost{{PlanID: "a"}}, &n)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestRecommend_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	ranked := []domain.PlanCost{{PlanID: "a"}, {PlanID: "b"}}
	got, err := Recommend(ranked, nil)
	require.NoError(t, err)
	got[0].PlanID = "changed"
	assert.Equal(t, "a", ranked[0].PlanID)
}
