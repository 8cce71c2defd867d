package db_fx

import (
	"context"

	"go.uber.org/fx"

	"subhub/internal/config"
	"subhub/internal/infra"
	"subhub/internal/logger"
	"subhub/internal/repositories"
)

var Module = fx.Provide(
	provideStores)

type Stores struct {
	fx.Out

	Plans         repositories.IPlanRepository
	Subscriptions repositories.SubscriptionRepository
	Accounts      repositories.AccountRepository
}

// provideStores selects the storage backend named by STORE_BACKEND.
func provideStores(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (Stores, error) {
	if cfg.StoreBackend != config.StorePostgres {
		log.Infow("using in-memory store")
		return Stores{
			Plans:         repositories.NewMemoryPlanRepository(),
			Subscriptions: repositories.NewMemorySubscriptionRepository(),
			Accounts:      repositories.NewMemoryAccountRepository(),
		}, nil
	}

	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return Stores{}, err
	}
	if err := infra.Migrate(db); err != nil {
		return Stores{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})

	return Stores{
		Plans:         repositories.NewPlanRepository(db),
		Subscriptions: repositories.NewSubscriptionRepository(db),
		Accounts:      repositories.NewAccountRepository(db),
	}, nil
}
