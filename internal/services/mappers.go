package services

import (
	"time"

	"github.com/samber/lo"

	"subhub/internal/models/db_models"
	resp "subhub/internal/models/response_models"
	"subhub/pkg/utils"
)

func toPlanResponse(p *db_models.Plan) resp.PlanResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return resp.PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Type:         string(p.Type),
		MonthlyQuota: p.MonthlyQuota,
		Price:        p.Price,
		Features:     features,
		Provider:     p.Provider,
		Speed:        p.Speed,
		IsActive:     p.IsActive,
		IsSpecial:    p.IsSpecial,
		Category:     p.Category(),
	}
}

func toPaymentResponse(p db_models.Payment) resp.PaymentResponse {
	return resp.PaymentResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		Date:          utils.FormatRFC3339(utils.FromUnixSeconds(p.PaidAt)),
		Status:        string(p.Status),
		FailureReason: p.FailureReason(),
	}
}

// toSubscriptionResponse renders sub as seen at now. plan may be nil when the
// referenced plan was hard-deleted.
func toSubscriptionResponse(sub *db_models.Subscription, plan *db_models.Plan, now time.Time) resp.SubscriptionResponse {
	out := resp.SubscriptionResponse{
		ID:        sub.ID,
		UserID:    sub.AccountID,
		PlanID:    sub.PlanID,
		Status:    string(sub.EffectiveStatus(now)),
		StartDate: utils.FormatRFC3339(sub.StartTime()),
		EndDate:   utils.FormatRFC3339(sub.EndTime()),
		AutoRenew: sub.AutoRenew,
		UsageData: resp.UsageDataResponse{
			CurrentUsage:  sub.Usage.CurrentUsage,
			LastResetDate: utils.FormatRFC3339(utils.FromUnixSeconds(sub.Usage.LastResetDate)),
		},
		DaysUntilExpiry: utils.DaysUntil(sub.EndTime(), now),
		PaymentHistory:  lo.Map(sub.Payments, func(p db_models.Payment, _ int) resp.PaymentResponse { return toPaymentResponse(p) }),
	}
	if plan != nil {
		pr := toPlanResponse(plan)
		out.Plan = &pr
		out.UsagePercentage = UsagePercentage(sub.Usage.CurrentUsage, plan.MonthlyQuota)
	}
	return out
}
