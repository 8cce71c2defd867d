package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"subhub/internal/logger"
	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	"subhub/internal/models/response_models"
	"subhub/internal/repositories"
	"subhub/pkg/utils"
)

type PlanServiceInterface interface {
	ListPlans(ctx context.Context, filter request_models.PlanFilter) ([]response_models.PlanResponse, error)
	GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error)
	CreatePlan(ctx context.Context, req request_models.CreatePlanRequest) (response_models.PlanResponse, error)
	UpdatePlan(ctx context.Context, planId uuid.UUID, req request_models.UpdatePlanRequest) (response_models.PlanResponse, error)
	DeletePlan(ctx context.Context, planId uuid.UUID) error
	TogglePlanActive(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error)
	GetPlanStats(ctx context.Context) (response_models.PlanStats, error)

	// GetPlanModel returns the stored plan or utils.ErrPlanNotFound.
	GetPlanModel(ctx context.Context, planId uuid.UUID) (*db_models.Plan, error)
	ListPlanModels(ctx context.Context, filter request_models.PlanFilter) ([]db_models.Plan, error)
	SeedDefaultPlans(ctx context.Context) (int, error)
}

type PlanService struct {
	planRepo repositories.IPlanRepository
	cache    *gocache.Cache
	log      *logger.Logger
}

func NewPlanService(planRepo repositories.IPlanRepository, cacheTTL time.Duration, log *logger.Logger) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
		log:      log,
	}
}

func (p *PlanService) ListPlans(ctx context.Context, filter request_models.PlanFilter) ([]response_models.PlanResponse, error) {
	plans, err := p.ListPlanModels(ctx, filter)
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(pl db_models.Plan, _ int) response_models.PlanResponse {
		return toPlanResponse(&pl)
	}), nil
}

func (p *PlanService) ListPlanModels(ctx context.Context, filter request_models.PlanFilter) ([]db_models.Plan, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, validationError("minPrice must not exceed maxPrice")
	}
	plans, err := p.planRepo.List(ctx, filter)
	if err != nil {
		return nil, dbError("list plans", err)
	}
	return plans, nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error) {
	plan, err := p.GetPlanModel(ctx, planId)
	if err != nil {
		return response_models.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

func (p *PlanService) GetPlanModel(ctx context.Context, planId uuid.UUID) (*db_models.Plan, error) {
	key := planId.String()
	if cached, ok := p.cache.Get(key); ok {
		c := *cached.(*db_models.Plan)
		return &c, nil
	}

	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return nil, dbError("get plan", err)
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}

	c := *plan
	p.cache.SetDefault(key, &c)
	return plan, nil
}

func (p *PlanService) CreatePlan(ctx context.Context, req request_models.CreatePlanRequest) (response_models.PlanResponse, error) {
	if err := validateStruct(req); err != nil {
		return response_models.PlanResponse{}, err
	}
	planType := db_models.PlanType(req.Type)
	if !planType.Valid() {
		return response_models.PlanResponse{}, validationError("type must be one of: Fibernet, Broadband Copper")
	}
	if req.Price == nil {
		return response_models.PlanResponse{}, validationError("price is required")
	}
	if req.Price.IsNegative() {
		return response_models.PlanResponse{}, validationError("price cannot be negative")
	}

	plan := &db_models.Plan{
		Name:         strings.TrimSpace(req.Name),
		Type:         planType,
		MonthlyQuota: req.MonthlyQuota,
		Price:        *req.Price,
		Features:     lo.Map(req.Features, func(f string, _ int) string { return strings.TrimSpace(f) }),
		Provider:     strings.TrimSpace(req.Provider),
		Speed:        strings.TrimSpace(req.Speed),
		IsActive:     req.IsActive == nil || *req.IsActive,
		IsSpecial:    req.IsSpecial,
	}

	if err := p.planRepo.Create(ctx, plan); err != nil {
		return response_models.PlanResponse{}, dbError("create plan", err)
	}

	p.log.WithContext(ctx).Infow("plan created", "plan_id", plan.ID, "name", plan.Name)
	return toPlanResponse(plan), nil
}

func (p *PlanService) UpdatePlan(ctx context.Context, planId uuid.UUID, req request_models.UpdatePlanRequest) (response_models.PlanResponse, error) {
	if err := validateStruct(req); err != nil {
		return response_models.PlanResponse{}, err
	}

	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.PlanResponse{}, dbError("get plan", err)
	}
	if plan == nil {
		return response_models.PlanResponse{}, utils.ErrPlanNotFound
	}

	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		t := db_models.PlanType(*req.Type)
		if !t.Valid() {
			return response_models.PlanResponse{}, validationError("type must be one of: Fibernet, Broadband Copper")
		}
		plan.Type = t
	}
	if req.MonthlyQuota != nil {
		plan.MonthlyQuota = *req.MonthlyQuota
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return response_models.PlanResponse{}, validationError("price cannot be negative")
		}
		plan.Price = *req.Price
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.Provider != nil {
		plan.Provider = strings.TrimSpace(*req.Provider)
	}
	if req.Speed != nil {
		plan.Speed = strings.TrimSpace(*req.Speed)
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.IsSpecial != nil {
		plan.IsSpecial = *req.IsSpecial
	}

	if err := p.planRepo.Update(ctx, plan); err != nil {
		return response_models.PlanResponse{}, dbError("update plan", err)
	}
	p.cache.Delete(planId.String())

	return toPlanResponse(plan), nil
}

func (p *PlanService) DeletePlan(ctx context.Context, planId uuid.UUID) error {
	deleted, err := p.planRepo.Delete(ctx, planId)
	if err != nil {
		return dbError("delete plan", err)
	}
	p.cache.Delete(planId.String())
	if !deleted {
		return utils.ErrPlanNotFound
	}

	p.log.WithContext(ctx).Infow("plan deleted", "plan_id", planId)
	return nil
}

func (p *PlanService) TogglePlanActive(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error) {
	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.PlanResponse{}, dbError("get plan", err)
	}
	if plan == nil {
		return response_models.PlanResponse{}, utils.ErrPlanNotFound
	}

	plan.IsActive = !plan.IsActive
	if err := p.planRepo.Update(ctx, plan); err != nil {
		return response_models.PlanResponse{}, dbError("toggle plan", err)
	}
	p.cache.Delete(planId.String())

	return toPlanResponse(plan), nil
}

func (p *PlanService) GetPlanStats(ctx context.Context) (response_models.PlanStats, error) {
	plans, err := p.planRepo.List(ctx, request_models.PlanFilter{})
	if err != nil {
		return response_models.PlanStats{}, dbError("list plans", err)
	}
	return computePlanStats(plans), nil
}

func computePlanStats(plans []db_models.Plan) response_models.PlanStats {
	stats := response_models.PlanStats{
		TotalPlans:   len(plans),
		ActivePlans:  lo.CountBy(plans, func(p db_models.Plan) bool { return p.IsActive }),
		CountsByType: make(map[string]int, len(db_models.PlanTypes)),
		PriceStats: response_models.PriceStats{
			Avg: decimal.Zero,
			Min: decimal.Zero,
			Max: decimal.Zero,
		},
	}
	for _, t := range db_models.PlanTypes {
		stats.CountsByType[string(t)] = 0
	}
	for _, p := range plans {
		stats.CountsByType[string(p.Type)]++
	}

	if len(plans) == 0 {
		return stats
	}

	prices := lo.Map(plans, func(p db_models.Plan, _ int) decimal.Decimal { return p.Price })
	stats.PriceStats = response_models.PriceStats{
		Avg: decimal.Avg(prices[0], prices[1:]...).Round(2),
		Min: decimal.Min(prices[0], prices[1:]...),
		Max: decimal.Max(prices[0], prices[1:]...),
	}
	return stats
}
