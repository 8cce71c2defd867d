package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/internal/models/db_models"
)

func catalogPlan(name string, quota int, price int64) db_models.Plan {
	p := db_models.Plan{
		Name:         name,
		Type:         db_models.PlanTypeFibernet,
		MonthlyQuota: quota,
		Price:        decimal.NewFromInt(price),
		IsActive:     true,
	}
	p.ID = uuid.New()
	return p
}

func TestUsagePercentage(t *testing.T) {
	assert.InDelta(t, 50.0, UsagePercentage(50, 100), 1e-9)
	assert.Equal(t, 100.0, UsagePercentage(250, 100))
	assert.Equal(t, 0.0, UsagePercentage(10, 0))
	assert.InDelta(t, 250.0, RawUsagePercentage(250, 100), 1e-9)
}

func TestUsageStatus(t *testing.T) {
	assert.Equal(t, "Normal", UsageStatus(74.9))
	assert.Equal(t, "High", UsageStatus(75))
	assert.Equal(t, "High", UsageStatus(89.9))
	assert.Equal(t, "Critical", UsageStatus(90))
}

func TestRecommendPlan(t *testing.T) {
	tiny := catalogPlan("Basic 20", 20, 299)
	small := catalogPlan("Basic 50", 50, 399)
	current := catalogPlan("Unlimited 100", 100, 599)
	mid := catalogPlan("Unlimited 200", 200, 799)
	large := catalogPlan("Unlimited 500", 500, 1299)
	// same quota as current, never a candidate
	twin := catalogPlan("Other 100", 100, 549)
	catalog := []db_models.Plan{large, tiny, current, twin, mid, small}

	up := RecommendPlan(current, 80, catalog)
	require.NotNil(t, up)
	assert.Equal(t, mid.ID, up.Plan.ID)
	assert.Nil(t, up.Savings)

	down := RecommendPlan(current, 30, catalog)
	require.NotNil(t, down)
	assert.Equal(t, small.ID, down.Plan.ID)
	require.NotNil(t, down.Savings)
	assert.Equal(t, "200", down.Savings.String())

	assert.Nil(t, RecommendPlan(current, 55, catalog))
	assert.Nil(t, RecommendPlan(large, 95, catalog))
	assert.Nil(t, RecommendPlan(tiny, 5, catalog))
}

func TestRecommendPlanOmitsNonPositiveSavings(t *testing.T) {
	current := catalogPlan("Promo 100", 100, 299)
	pricier := catalogPlan("Basic 50", 50, 399)

	rec := RecommendPlan(current, 10, []db_models.Plan{current, pricier})
	require.NotNil(t, rec)
	assert.Nil(t, rec.Savings)
}
