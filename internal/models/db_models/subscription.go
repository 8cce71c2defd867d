package db_models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusCancelled SubscriptionStatus = "cancelled"
	SubStatusExpired   SubscriptionStatus = "expired"
)

// SubscriptionPeriod is the fixed length of one paid term.
const SubscriptionPeriod = 30 * 24 * time.Hour

type UsageData struct {
	CurrentUsage  float64 `gorm:"not null;default:0"` // GB
	LastResetDate int64
}

type Subscription struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;index:idx_subscriptions_account_status"`
	PlanID    uuid.UUID `gorm:"type:uuid;index"`

	Status      SubscriptionStatus `gorm:"type:varchar(16);index:idx_subscriptions_account_status"`
	StartsAt    int64              `gorm:"not null"`
	EndsAt      int64              `gorm:"not null;index"`
	CancelledAt *int64
	AutoRenew   bool `gorm:"not null"`

	Usage UsageData `gorm:"embedded;embeddedPrefix:usage_"`

	// PlanID carries no foreign key: history keeps pointing at hard-deleted plans.
	Payments []Payment `gorm:"foreignKey:SubscriptionID"`
}

func (s *Subscription) StartTime() time.Time { return time.Unix(s.StartsAt, 0).UTC() }
func (s *Subscription) EndTime() time.Time   { return time.Unix(s.EndsAt, 0).UTC() }

// EffectiveStatus derives the status a reader should see at now. A record still
// stored as active reads as expired once its end date has passed.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubStatusActive && s.EndsAt < now.Unix() {
		return SubStatusExpired
	}
	return s.Status
}

func (s *Subscription) IsEffectivelyActive(now time.Time) bool {
	return s.EffectiveStatus(now) == SubStatusActive
}
