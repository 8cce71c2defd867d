package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	dbm "subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	resp "subhub/internal/models/response_models"
	"subhub/internal/repositories"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context) (*resp.DashboardReport, error)
}

type dashboardService struct {
	accounts repositories.AccountRepository
	subs     repositories.SubscriptionRepository
	plans    PlanServiceInterface
	now      func() time.Time
}

func NewDashboardService(accounts repositories.AccountRepository, subs repositories.SubscriptionRepository, plans PlanServiceInterface) DashboardService {
	return &dashboardService{
		accounts: accounts,
		subs:     subs,
		plans:    plans,
		now:      time.Now,
	}
}

func (s *dashboardService) BuildDashboard(ctx context.Context) (*resp.DashboardReport, error) {
	now := s.now()

	// ---------- Core counts ----------
	totalAccounts, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, dbError("count accounts", err)
	}

	all, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, dbError("list subscriptions", err)
	}

	byStatus := lo.CountValuesBy(all, func(sub dbm.Subscription) dbm.SubscriptionStatus {
		return sub.EffectiveStatus(now)
	})

	// ---------- Revenue ----------
	revenue := decimal.Zero
	for _, sub := range all {
		for _, p := range sub.Payments {
			if p.Status == dbm.PaymentStatusSuccess {
				revenue = revenue.Add(p.Amount)
			}
		}
	}

	// ---------- MRR and plan mix ----------
	catalog, err := s.plans.ListPlanModels(ctx, request_models.PlanFilter{})
	if err != nil {
		return nil, err
	}
	planByID := lo.KeyBy(catalog, func(p dbm.Plan) uuid.UUID { return p.ID })

	active := lo.Filter(all, func(sub dbm.Subscription, _ int) bool { return sub.IsEffectivelyActive(now) })
	mrr := decimal.Zero
	for _, sub := range active {
		if p, ok := planByID[sub.PlanID]; ok {
			mrr = mrr.Add(p.Price)
		}
	}

	mixCounts := lo.CountValuesBy(active, func(sub dbm.Subscription) uuid.UUID { return sub.PlanID })
	planMix := make([]resp.PlanMixItem, 0, len(mixCounts))
	for planID, count := range mixCounts {
		name := "(deleted plan)"
		if p, ok := planByID[planID]; ok {
			name = p.Name
		}
		planMix = append(planMix, resp.PlanMixItem{
			PlanID:   planID,
			PlanName: name,
			Count:    int64(count),
			Percent:  float64(count) * 100.0 / float64(len(active)),
		})
	}
	sort.Slice(planMix, func(i, j int) bool {
		if planMix[i].Count != planMix[j].Count {
			return planMix[i].Count > planMix[j].Count
		}
		return planMix[i].PlanName < planMix[j].PlanName
	})

	return &resp.DashboardReport{
		KPIs: resp.KPIBlock{
			TotalAccounts:          totalAccounts,
			ActiveSubscriptions:    int64(byStatus[dbm.SubStatusActive]),
			CancelledSubscriptions: int64(byStatus[dbm.SubStatusCancelled]),
			ExpiredSubscriptions:   int64(byStatus[dbm.SubStatusExpired]),
			Revenue:                revenue,
			MRR:                    mrr,
		},
		PlanMix: planMix,
	}, nil
}
