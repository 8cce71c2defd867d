package config_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/pkg/metrics"
)

var Module = fx.Provide(
	config.Load, provideLogger, provideMetrics)

func provideLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	// handlers outside the graph log through zap.S()
	zap.ReplaceGlobals(log.Desugar())
	return log, nil
}

func provideMetrics() *metrics.Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewMetrics(registry)
}
