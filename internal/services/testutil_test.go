package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	"subhub/internal/repositories"
	"subhub/pkg/metrics"
)

// testClock is a settable time source shared by the services under test.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPlanService() (PlanServiceInterface, repositories.IPlanRepository) {
	repo := repositories.NewMemoryPlanRepository()
	return NewPlanService(repo, time.Minute, logger.NewNop()), repo
}

func newTestPaymentService() PaymentService {
	return NewPaymentService(NewSimulatedGateway(), PaymentConfig{
		Timeout:    time.Second,
		MaxRetries: 1,
	}, metrics.NewNop(), logger.NewNop())
}

func planRequest(name string, t db_models.PlanType, quota int, price int64, provider string) request_models.CreatePlanRequest {
	p := decimal.NewFromInt(price)
	return request_models.CreatePlanRequest{
		Name:         name,
		Type:         string(t),
		MonthlyQuota: quota,
		Price:        &p,
		Features:     []string{"Unlimited calls", "Free router"},
		Provider:     provider,
		Speed:        "100 Mbps",
	}
}

func mustCreatePlan(ctx context.Context, svc PlanServiceInterface, req request_models.CreatePlanRequest) *db_models.Plan {
	created, err := svc.CreatePlan(ctx, req)
	if err != nil {
		panic(err)
	}
	plan, err := svc.GetPlanModel(ctx, created.ID)
	if err != nil {
		panic(err)
	}
	return plan
}
