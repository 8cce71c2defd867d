package services

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subhub/internal/models/db_models"
	"subhub/internal/models/response_models"
)

const (
	upgradeThresholdPct   = 80.0
	downgradeThresholdPct = 30.0
)

// RawUsagePercentage is currentUsage relative to quota, unclamped.
func RawUsagePercentage(currentUsage float64, monthlyQuota int) float64 {
	if monthlyQuota <= 0 {
		return 0
	}
	return currentUsage / float64(monthlyQuota) * 100
}

// UsagePercentage is the display value, clamped to [0, 100].
func UsagePercentage(currentUsage float64, monthlyQuota int) float64 {
	return math.Min(math.Max(RawUsagePercentage(currentUsage, monthlyQuota), 0), 100)
}

func UsageStatus(pct float64) string {
	switch {
	case pct >= 90:
		return "Critical"
	case pct >= 75:
		return "High"
	default:
		return "Normal"
	}
}

// RecommendPlan suggests an upgrade at or above 80% usage and a downgrade at or
// below 30%. catalog should hold only plans open for subscription.
func RecommendPlan(current db_models.Plan, rawPct float64, catalog []db_models.Plan) *response_models.Recommendation {
	others := lo.Filter(catalog, func(p db_models.Plan, _ int) bool { return p.ID != current.ID })

	switch {
	case rawPct >= upgradeThresholdPct:
		bigger := lo.Filter(others, func(p db_models.Plan, _ int) bool { return p.MonthlyQuota > current.MonthlyQuota })
		if len(bigger) == 0 {
			return nil
		}
		best := lo.MinBy(bigger, func(a, b db_models.Plan) bool { return a.Price.LessThan(b.Price) })
		return &response_models.Recommendation{
			Plan:   toPlanResponse(&best),
			Reason: fmt.Sprintf("You have used %.0f%% of your %d GB quota. %s gives you %d GB.", rawPct, current.MonthlyQuota, best.Name, best.MonthlyQuota),
		}

	case rawPct <= downgradeThresholdPct:
		smaller := lo.Filter(others, func(p db_models.Plan, _ int) bool { return p.MonthlyQuota < current.MonthlyQuota })
		if len(smaller) == 0 {
			return nil
		}
		best := lo.MaxBy(smaller, func(a, b db_models.Plan) bool { return a.Price.GreaterThan(b.Price) })
		rec := &response_models.Recommendation{
			Plan:   toPlanResponse(&best),
			Reason: fmt.Sprintf("You have used only %.0f%% of your %d GB quota. %s may fit your usage.", rawPct, current.MonthlyQuota, best.Name),
		}
		if savings := current.Price.Sub(best.Price); savings.GreaterThan(decimal.Zero) {
			rec.Savings = &savings
		}
		return rec
	}

	return nil
}
