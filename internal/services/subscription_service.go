package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"subhub/internal/logger"
	dbm "subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
	resp "subhub/internal/models/response_models"
	"subhub/internal/repositories"
	"subhub/pkg/metrics"
	"subhub/pkg/utils"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, req request_models.SubscribeRequest) (*resp.SubscriptionResponse, error)
	Renew(ctx context.Context, userID uuid.UUID, req request_models.RenewRequest) (*resp.SubscriptionResponse, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*resp.SubscriptionResponse, error)
	UpdateUsage(ctx context.Context, userID uuid.UUID, usage float64) (*resp.SubscriptionResponse, error)

	// GetCurrent returns nil without error when the user has no active subscription.
	GetCurrent(ctx context.Context, userID uuid.UUID) (*resp.SubscriptionResponse, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]resp.SubscriptionResponse, error)
	GetUsage(ctx context.Context, userID uuid.UUID) (*resp.UsageResponse, error)
}

type subscriptionService struct {
	subRepo  repositories.SubscriptionRepository
	plans    PlanServiceInterface
	payments PaymentService
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewSubscriptionService(
	subRepo repositories.SubscriptionRepository,
	plans PlanServiceInterface,
	payments PaymentService,
	m *metrics.Metrics,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		subRepo:  subRepo,
		plans:    plans,
		payments: payments,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

var periodSeconds = int64(dbm.SubscriptionPeriod / time.Second)

func parsePayment(method, transactionID string) (dbm.PaymentMethod, string, error) {
	m := dbm.PaymentMethod(strings.ToLower(strings.TrimSpace(method)))
	if !m.Valid() {
		return "", "", utils.ErrInvalidPaymentMethod
	}
	txn := strings.TrimSpace(transactionID)
	if txn == "" {
		return "", "", validationError("transactionId is required")
	}
	return m, txn, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req request_models.SubscribeRequest) (out *resp.SubscriptionResponse, err error) {
	defer func() { s.metrics.RecordTransition("subscribe", err) }()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	method, txnID, err := parsePayment(req.PaymentMethod, req.TransactionID)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.GetPlanModel(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, utils.ErrPlanInactive
	}

	var created *dbm.Subscription
	err = s.subRepo.WithUserLock(ctx, userID, func(repo repositories.SubscriptionRepository) error {
		now := s.now()

		current, err := repo.FindActiveByAccount(ctx, userID)
		if err != nil {
			return dbError("find active subscription", err)
		}
		if current != nil {
			if current.IsEffectivelyActive(now) {
				return utils.ErrDuplicateActiveSubscription
			}
			// past its end date: settle the stored status before a new term starts
			current.Status = dbm.SubStatusExpired
			if err := repo.Update(ctx, current); err != nil {
				return dbError("expire stale subscription", err)
			}
		}

		description := "Subscription " + plan.Name
		sub := &dbm.Subscription{
			AccountID: userID,
			PlanID:    plan.ID,
			Status:    dbm.SubStatusActive,
			StartsAt:  now.Unix(),
			EndsAt:    now.Unix() + periodSeconds,
			AutoRenew: true,
			Usage:     dbm.UsageData{CurrentUsage: 0, LastResetDate: now.Unix()},
			Payments:  []dbm.Payment{pendingPayment(userID, plan.Price, method, txnID, description, now)},
		}
		if err := repo.Create(ctx, sub); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return utils.ErrDuplicateActiveSubscription
			}
			return dbError("create subscription", err)
		}

		// a decline returns an error, which drops the pending term as well
		payment := &sub.Payments[0]
		if err := s.settle(ctx, repo, payment, PaymentRequest{
			AccountID:     userID,
			Amount:        plan.Price,
			Method:        method,
			TransactionID: txnID,
			Description:   description,
		}); err != nil {
			return err
		}
		if payment.Status != dbm.PaymentStatusSuccess {
			return fmt.Errorf("%w: %s", utils.ErrPaymentFailed, payment.FailureReason())
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("subscription created",
		"user_id", userID, "subscription_id", created.ID, "plan_id", plan.ID)

	view := toSubscriptionResponse(created, plan, s.now())
	return &view, nil
}

func (s *subscriptionService) Renew(ctx context.Context, userID uuid.UUID, req request_models.RenewRequest) (out *resp.SubscriptionResponse, err error) {
	defer func() { s.metrics.RecordTransition("renew", err) }()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	method, txnID, err := parsePayment(req.PaymentMethod, req.TransactionID)
	if err != nil {
		return nil, err
	}

	var (
		renewed *dbm.Subscription
		plan    *dbm.Plan
		// a declined charge is still recorded, so it must not roll the scope back
		declined error
	)
	err = s.subRepo.WithUserLock(ctx, userID, func(repo repositories.SubscriptionRepository) error {
		current, err := s.activeSubscription(ctx, repo, userID)
		if err != nil {
			return err
		}

		plan, err = s.plans.GetPlanModel(ctx, current.PlanID)
		if err != nil {
			return err
		}

		description := "Renewal " + plan.Name
		payment := pendingPayment(userID, plan.Price, method, txnID, description, s.now())
		payment.SubscriptionID = current.ID
		if err := repo.AppendPayment(ctx, &payment); err != nil {
			return dbError("append payment", err)
		}

		if err := s.settle(ctx, repo, &payment, PaymentRequest{
			AccountID:     userID,
			Amount:        plan.Price,
			Method:        method,
			TransactionID: txnID,
			Description:   description,
		}); err != nil {
			return err
		}
		current.Payments = append(current.Payments, payment)

		if payment.Status != dbm.PaymentStatusSuccess {
			declined = fmt.Errorf("%w: %s", utils.ErrPaymentFailed, payment.FailureReason())
			return nil
		}

		// extend from the prior end date, never from now
		current.EndsAt += periodSeconds
		if err := repo.Update(ctx, current); err != nil {
			return dbError("renew subscription", err)
		}
		renewed = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if declined != nil {
		return nil, declined
	}

	s.log.WithContext(ctx).Infow("subscription renewed",
		"user_id", userID, "subscription_id", renewed.ID, "ends_at", renewed.EndsAt)

	view := toSubscriptionResponse(renewed, plan, s.now())
	return &view, nil
}

func pendingPayment(userID uuid.UUID, amount decimal.Decimal, method dbm.PaymentMethod, txnID, description string, now time.Time) dbm.Payment {
	return dbm.Payment{
		AccountID:     userID,
		Amount:        amount,
		Method:        method,
		TransactionID: txnID,
		PaidAt:        now.Unix(),
		Status:        dbm.PaymentStatusPending,
		Metadata:      datatypes.JSONMap{dbm.MetadataDescription: description},
	}
}

// settle captures the charge for a stored pending payment and moves it to the
// gateway's verdict. A capture that yields no verdict settles as failed.
func (s *subscriptionService) settle(ctx context.Context, repo repositories.SubscriptionRepository, payment *dbm.Payment, req PaymentRequest) error {
	result, err := s.payments.Capture(ctx, req)
	if err != nil {
		result = &PaymentResult{
			Status:        dbm.PaymentStatusFailed,
			ProcessedAt:   s.now(),
			FailureReason: err.Error(),
		}
	}

	payment.Status = result.Status
	payment.GatewayRef = result.GatewayRef
	payment.PaidAt = result.ProcessedAt.Unix()
	if result.FailureReason != "" {
		payment.Metadata[dbm.MetadataFailureReason] = result.FailureReason
	}

	if err := repo.UpdatePayment(ctx, payment); err != nil {
		if payment.Status == dbm.PaymentStatusSuccess {
			// the charge went through but cannot be recorded; it needs a manual refund
			s.log.WithContext(ctx).Errorw("captured payment not recorded",
				"transaction_id", payment.TransactionID,
				"gateway_ref", payment.GatewayRef,
				"amount", payment.Amount.String(),
				"error", err)
		}
		return dbError("settle payment", err)
	}
	return nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (out *resp.SubscriptionResponse, err error) {
	defer func() { s.metrics.RecordTransition("cancel", err) }()

	var cancelled *dbm.Subscription
	err = s.subRepo.WithUserLock(ctx, userID, func(repo repositories.SubscriptionRepository) error {
		current, err := s.activeSubscription(ctx, repo, userID)
		if err != nil {
			return err
		}

		at := s.now().Unix()
		current.Status = dbm.SubStatusCancelled
		current.CancelledAt = &at
		current.AutoRenew = false
		if err := repo.Update(ctx, current); err != nil {
			return dbError("cancel subscription", err)
		}
		cancelled = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("subscription cancelled", "user_id", userID, "subscription_id", cancelled.ID)
	return s.render(ctx, cancelled), nil
}

func (s *subscriptionService) UpdateUsage(ctx context.Context, userID uuid.UUID, usage float64) (out *resp.SubscriptionResponse, err error) {
	defer func() { s.metrics.RecordTransition("usage", err) }()

	if usage < 0 || math.IsNaN(usage) || math.IsInf(usage, 0) {
		return nil, utils.ErrInvalidUsageValue
	}

	var updated *dbm.Subscription
	err = s.subRepo.WithUserLock(ctx, userID, func(repo repositories.SubscriptionRepository) error {
		current, err := s.activeSubscription(ctx, repo, userID)
		if err != nil {
			return err
		}

		current.Usage.CurrentUsage = usage
		if err := repo.Update(ctx, current); err != nil {
			return dbError("update usage", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.render(ctx, updated), nil
}

func (s *subscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*resp.SubscriptionResponse, error) {
	current, err := s.subRepo.FindActiveByAccount(ctx, userID)
	if err != nil {
		return nil, dbError("find active subscription", err)
	}
	if current == nil || !current.IsEffectivelyActive(s.now()) {
		return nil, nil
	}
	return s.render(ctx, current), nil
}

func (s *subscriptionService) GetHistory(ctx context.Context, userID uuid.UUID) ([]resp.SubscriptionResponse, error) {
	subs, err := s.subRepo.ListByAccount(ctx, userID)
	if err != nil {
		return nil, dbError("list subscriptions", err)
	}
	return lo.Map(subs, func(sub dbm.Subscription, _ int) resp.SubscriptionResponse {
		return *s.render(ctx, &sub)
	}), nil
}

func (s *subscriptionService) GetUsage(ctx context.Context, userID uuid.UUID) (*resp.UsageResponse, error) {
	current, err := s.activeSubscription(ctx, s.subRepo, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetPlanModel(ctx, current.PlanID)
	if err != nil {
		return nil, err
	}

	active := true
	catalog, err := s.plans.ListPlanModels(ctx, request_models.PlanFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}

	raw := RawUsagePercentage(current.Usage.CurrentUsage, plan.MonthlyQuota)
	pct := UsagePercentage(current.Usage.CurrentUsage, plan.MonthlyQuota)
	return &resp.UsageResponse{
		CurrentUsage:    current.Usage.CurrentUsage,
		MonthlyQuota:    plan.MonthlyQuota,
		UsagePercentage: pct,
		UsageStatus:     UsageStatus(pct),
		Recommendation:  RecommendPlan(*plan, raw, catalog),
	}, nil
}

// activeSubscription loads the user's effectively active record or fails with
// utils.ErrNoActiveSubscription.
func (s *subscriptionService) activeSubscription(ctx context.Context, repo repositories.SubscriptionRepository, userID uuid.UUID) (*dbm.Subscription, error) {
	current, err := repo.FindActiveByAccount(ctx, userID)
	if err != nil {
		return nil, dbError("find active subscription", err)
	}
	if current == nil || !current.IsEffectivelyActive(s.now()) {
		return nil, utils.ErrNoActiveSubscription
	}
	return current, nil
}

// render embeds the live plan. A plan that no longer exists renders as nil.
func (s *subscriptionService) render(ctx context.Context, sub *dbm.Subscription) *resp.SubscriptionResponse {
	plan, err := s.plans.GetPlanModel(ctx, sub.PlanID)
	if err != nil {
		if !errors.Is(err, utils.ErrPlanNotFound) {
			s.log.WithContext(ctx).Warnw("plan lookup failed while rendering subscription",
				"subscription_id", sub.ID, "plan_id", sub.PlanID, "error", err)
		}
		plan = nil
	}
	view := toSubscriptionResponse(sub, plan, s.now())
	return &view
}
