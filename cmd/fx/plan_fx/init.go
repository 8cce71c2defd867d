package plan_fx

import (
	"go.uber.org/fx"

	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/internal/repositories"
	"subhub/internal/services"
)

var Module = fx.Provide(
	providePlanService)

func providePlanService(planRepo repositories.IPlanRepository, cfg *config.Config, log *logger.Logger) services.PlanServiceInterface {
	return services.NewPlanService(planRepo, cfg.PlanCacheTTL, log)
}
