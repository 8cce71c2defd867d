package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	"subhub/internal/repositories"
	"subhub/pkg/metrics"
)

func TestBuildDashboard(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}

	plans, _ := newTestPlanService()
	accounts := repositories.NewMemoryAccountRepository()
	subsRepo := repositories.NewMemorySubscriptionRepository()
	subs := NewSubscriptionService(subsRepo, plans, newTestPaymentService(), metrics.NewNop(), logger.NewNop()).(*subscriptionService)
	subs.now = clock.Now

	basic := mustCreatePlan(ctx, plans, planRequest("Fiber 50", db_models.PlanTypeFibernet, 50, 399, "BSNL"))
	plus := mustCreatePlan(ctx, plans, planRequest("Fiber 100", db_models.PlanTypeFibernet, 100, 599, "Airtel"))

	users := make([]uuid.UUID, 4)
	for i := range users {
		acc := &db_models.Account{Name: "user", Email: uuid.NewString() + "@example.com", Role: db_models.RoleUser, IsActive: true}
		require.NoError(t, accounts.InsertTx(acc, ctx))
		users[i] = acc.ID
	}

	sub := func(user uuid.UUID, plan uuid.UUID) {
		_, err := subs.Subscribe(ctx, user, request_models.SubscribeRequest{PlanID: plan, PaymentMethod: "upi", TransactionID: uuid.NewString()})
		require.NoError(t, err)
	}
	sub(users[0], plus.ID)
	sub(users[1], plus.ID)
	sub(users[2], basic.ID)
	_, err := subs.Cancel(ctx, users[2])
	require.NoError(t, err)
	sub(users[3], basic.ID)

	// users[3] lapses
	clock.Advance(20 * 24 * time.Hour)
	_, err = subs.Renew(ctx, users[0], request_models.RenewRequest{PaymentMethod: "card", TransactionID: "txn_renew"})
	require.NoError(t, err)
	_, err = subs.Renew(ctx, users[1], request_models.RenewRequest{PaymentMethod: "card", TransactionID: "fail_renew"})
	require.Error(t, err)
	clock.Advance(15 * 24 * time.Hour)

	svc := NewDashboardService(accounts, subsRepo, plans).(*dashboardService)
	svc.now = clock.Now

	report, err := svc.BuildDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), report.KPIs.TotalAccounts)
	assert.Equal(t, int64(1), report.KPIs.ActiveSubscriptions)
	assert.Equal(t, int64(1), report.KPIs.CancelledSubscriptions)
	assert.Equal(t, int64(2), report.KPIs.ExpiredSubscriptions)
	// 599 + 599 + 399 + 399 + 599 renewal; the declined renewal is not revenue
	assert.True(t, report.KPIs.Revenue.Equal(decimal.NewFromInt(2595)), report.KPIs.Revenue.String())
	assert.True(t, report.KPIs.MRR.Equal(decimal.NewFromInt(599)))

	require.Len(t, report.PlanMix, 1)
	assert.Equal(t, plus.ID, report.PlanMix[0].PlanID)
	assert.Equal(t, int64(1), report.PlanMix[0].Count)
	assert.Equal(t, 100.0, report.PlanMix[0].Percent)
}

func TestBuildDashboardEmpty(t *testing.T) {
	plans, _ := newTestPlanService()
	svc := NewDashboardService(repositories.NewMemoryAccountRepository(), repositories.NewMemorySubscriptionRepository(), plans)

	report, err := svc.BuildDashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.KPIs.TotalAccounts)
	assert.True(t, report.KPIs.Revenue.IsZero())
	assert.Empty(t, report.PlanMix)
}
