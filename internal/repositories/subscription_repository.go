package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"subhub/internal/models/db_models"
)

type SubscriptionRepository interface {
	// WithUserLock runs fn while holding the lifecycle lock for accountID. Every
	// write made through the repo handed to fn commits or rolls back together.
	WithUserLock(ctx context.Context, accountID uuid.UUID, fn func(repo SubscriptionRepository) error) error

	// Create stores sub together with its payments. Returns ErrDuplicateKey when
	// the account already holds a record with status active.
	Create(ctx context.Context, sub *db_models.Subscription) error
	// FindActiveByAccount returns the record stored with status active, if any.
	FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.Subscription, error)
	ListAll(ctx context.Context) ([]db_models.Subscription, error)
	// Update persists the scalar fields of sub. Payments are untouched.
	Update(ctx context.Context, sub *db_models.Subscription) error
	AppendPayment(ctx context.Context, payment *db_models.Payment) error
	// UpdatePayment settles a payment: status, gateway reference, paid-at and metadata.
	UpdatePayment(ctx context.Context, payment *db_models.Payment) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func userLockKey(accountID uuid.UUID) string {
	return "subscription:" + accountID.String()
}

func (r *subscriptionRepository) WithUserLock(ctx context.Context, accountID uuid.UUID, fn func(repo SubscriptionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// released automatically on commit or rollback
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userLockKey(accountID)).Error; err != nil {
			return fmt.Errorf("acquire subscription lock: %w", err)
		}
		return fn(&subscriptionRepository{db: tx})
	})
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *subscriptionRepository) FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Payments", orderPayments).
		Where("account_id = ? AND status = ?", accountID, db_models.SubStatusActive).
		Order("ends_at DESC").
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Payments", orderPayments).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) ListAll(ctx context.Context) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Payments", orderPayments).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *db_models.Subscription) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Subscription{BaseModel: db_models.BaseModel{ID: sub.ID}}).
		Omit(clause.Associations).
		Updates(map[string]interface{}{
			"status":                sub.Status,
			"ends_at":               sub.EndsAt,
			"cancelled_at":          sub.CancelledAt,
			"auto_renew":            sub.AutoRenew,
			"usage_current_usage":   sub.Usage.CurrentUsage,
			"usage_last_reset_date": sub.Usage.LastResetDate,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicateKey
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) AppendPayment(ctx context.Context, payment *db_models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *subscriptionRepository) UpdatePayment(ctx context.Context, payment *db_models.Payment) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Payment{BaseModel: db_models.BaseModel{ID: payment.ID}}).
		Updates(map[string]interface{}{
			"status":      payment.Status,
			"gateway_ref": payment.GatewayRef,
			"paid_at":     payment.PaidAt,
			"metadata":    payment.Metadata,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func orderPayments(db *gorm.DB) *gorm.DB {
	return db.Order("paid_at ASC").Order("created_at ASC")
}
