package payment_service_fx

import (
	"go.uber.org/fx"

	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/internal/services"
	"subhub/pkg/metrics"
)

var Module = fx.Provide(
	services.NewSimulatedGateway, providePaymentService,
)

func providePaymentService(gateway services.PaymentGateway, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) services.PaymentService {
	return services.NewPaymentService(gateway, services.PaymentConfig{
		Timeout:      cfg.PaymentTimeout,
		MaxRetries:   cfg.PaymentMaxRetries,
		ProviderName: "simulated",
	}, m, log)
}
