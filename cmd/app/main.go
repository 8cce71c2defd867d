package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"subhub/cmd/fx/account_fx"
	"subhub/cmd/fx/config_fx"
	"subhub/cmd/fx/controllers_fx"
	"subhub/cmd/fx/dashboard_fx"
	"subhub/cmd/fx/db_fx"
	"subhub/cmd/fx/payment_service_fx"
	"subhub/cmd/fx/plan_fx"
	"subhub/cmd/fx/subscription_fx"
	"subhub/internal/api/controllers"
	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/internal/services"
	"subhub/pkg/metrics"
	"subhub/pkg/middleware"
)

func main() {
	// prices travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		plan_fx.Module,
		account_fx.Module,
		payment_service_fx.Module,
		subscription_fx.Module,
		dashboard_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(SeedData),
		fx.Invoke(StartServer),
	)

	app.Run()
}

// SeedData loads the default catalog and the configured admin account.
func SeedData(lc fx.Lifecycle, cfg *config.Config, plans services.PlanServiceInterface, accounts services.AccountServiceInterface) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.SeedPlans {
				if _, err := plans.SeedDefaultPlans(ctx); err != nil {
					return err
				}
			}
			return accounts.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		},
	})
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting HTTP server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalw("failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg *config.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	auth middleware.Authenticator,
	accountController *controllers.AccountController,
	planController *controllers.PlanController,
	subscriptionController *controllers.SubscriptionController,
	dashboardController *controllers.DashboardController) *gin.Engine {

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.GetGinLogger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.MetricsMiddleware(m))
	r.Use(middleware.CORSMiddleware())

	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterRoutes(r, auth, accountController, planController, subscriptionController, dashboardController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	auth middleware.Authenticator,
	accountController *controllers.AccountController,
	planController *controllers.PlanController,
	subscriptionController *controllers.SubscriptionController,
	dashboardController *controllers.DashboardController) {

	requireAuth := middleware.JWTAuthMiddleware(auth)
	requireAdmin := middleware.RoleMiddleware("admin")

	authGroup := r.Group("/auth")
	authGroup.POST("/register", accountController.Register)
	authGroup.POST("/login", accountController.Login)
	authGroup.GET("/me", requireAuth, accountController.Me)
	authGroup.PUT("/profile", requireAuth, accountController.UpdateProfile)
	authGroup.PUT("/change-password", requireAuth, accountController.ChangePassword)

	plansGroup := r.Group("/plans")
	plansGroup.GET("", planController.ListPlans)
	plansGroup.GET("/stats/overview", requireAuth, requireAdmin, planController.GetStats)
	plansGroup.GET("/:id", planController.GetPlan)
	plansGroup.POST("", requireAuth, requireAdmin, planController.CreatePlan)
	plansGroup.PUT("/:id", requireAuth, requireAdmin, planController.UpdatePlan)
	plansGroup.DELETE("/:id", requireAuth, requireAdmin, planController.DeletePlan)
	plansGroup.PATCH("/:id/toggle", requireAuth, requireAdmin, planController.TogglePlan)

	subsGroup := r.Group("/subscriptions", requireAuth)
	subsGroup.GET("/current", subscriptionController.GetCurrent)
	subsGroup.POST("/subscribe", subscriptionController.Subscribe)
	subsGroup.PUT("/cancel", subscriptionController.Cancel)
	subsGroup.PUT("/renew", subscriptionController.Renew)
	subsGroup.PUT("/usage", subscriptionController.UpdateUsage)
	subsGroup.GET("/usage", subscriptionController.GetUsage)
	subsGroup.GET("/history", subscriptionController.GetHistory)

	dashboardGroup := r.Group("/dashboard", requireAuth, requireAdmin)
	dashboardGroup.GET("/stats", dashboardController.GetDashboard)
}
