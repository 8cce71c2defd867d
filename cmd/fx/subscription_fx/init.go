package subscription_fx

import (
	"go.uber.org/fx"

	"subhub/internal/services"
)

var Module = fx.Provide(
	services.NewSubscriptionService)
