package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"subhub/internal/logger"
	dbm "subhub/internal/models/db_models"
	"subhub/pkg/metrics"
)

type PaymentConfig struct {
	Timeout      time.Duration // upper bound for one capture including retries
	MaxRetries   uint64
	ProviderName string
}

type PaymentRequest struct {
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	Method        dbm.PaymentMethod
	TransactionID string
	Description   string
}

type PaymentResult struct {
	Status        dbm.PaymentStatus
	GatewayRef    string
	ProcessedAt   time.Time
	FailureReason string
}

// ErrGatewayUnavailable marks a transient gateway failure that is safe to retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentGateway charges a customer. Implementations return a result with a
// final status, or an error when no decision could be obtained.
//
// Charges run while the caller holds the subscription lock, after the pending
// payment is stored. The gateway has no refund call: a successful charge whose
// settlement write then fails is logged as "captured payment not recorded"
// with its gateway reference for a manual refund.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// simulatedGateway approves every charge except transaction ids prefixed with
// "fail_". It never leaves the process.
type simulatedGateway struct {
	now func() time.Time
}

func NewSimulatedGateway() PaymentGateway {
	return &simulatedGateway{now: time.Now}
}

func (g *simulatedGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &PaymentResult{
		GatewayRef:  "sim_" + uuid.NewString(),
		ProcessedAt: g.now(),
	}
	if strings.HasPrefix(req.TransactionID, "fail_") {
		res.Status = dbm.PaymentStatusFailed
		res.FailureReason = "declined by issuer"
		return res, nil
	}
	res.Status = dbm.PaymentStatusSuccess
	return res, nil
}

type PaymentService interface {
	// Capture charges through the gateway, bounded by the configured timeout.
	// A declined charge is a result with status failed, not an error.
	Capture(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

type paymentService struct {
	gateway PaymentGateway
	cfg     PaymentConfig
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewPaymentService(gateway PaymentGateway, cfg PaymentConfig, m *metrics.Metrics, log *logger.Logger) PaymentService {
	if cfg.ProviderName == "" {
		cfg.ProviderName = "simulated"
	}
	return &paymentService{
		gateway: gateway,
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

func (p *paymentService) Capture(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	log := p.log.WithContext(ctx)
	log.Infow("payment pending",
		"provider", p.cfg.ProviderName,
		"method", req.Method,
		"transaction_id", req.TransactionID,
		"amount", req.Amount.String())

	var result *PaymentResult
	op := func() error {
		res, err := p.gateway.Charge(ctx, req)
		if err != nil {
			if errors.Is(err, ErrGatewayUnavailable) {
				log.Warnw("payment gateway unavailable, retrying", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.cfg.MaxRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		p.metrics.RecordPayment(string(req.Method), "error")
		return nil, fmt.Errorf("capture payment: %w", err)
	}

	p.metrics.RecordPayment(string(req.Method), string(result.Status))
	log.Infow("payment settled",
		"transaction_id", req.TransactionID,
		"status", result.Status,
		"gateway_ref", result.GatewayRef)

	return result, nil
}
