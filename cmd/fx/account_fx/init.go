package account_fx

import (
	"go.uber.org/fx"

	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/internal/repositories"
	"subhub/internal/services"
	"subhub/pkg/middleware"
	"subhub/pkg/utils"
)

var Module = fx.Provide(
	provideTokenManager, provideAccountService, provideAuthenticator)

func provideTokenManager(cfg *config.Config) *utils.TokenManager {
	return utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
}

func provideAccountService(accountRepo repositories.AccountRepository, tokens *utils.TokenManager, log *logger.Logger) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, tokens, log)
}

func provideAuthenticator(accounts services.AccountServiceInterface) middleware.Authenticator {
	return accounts
}
