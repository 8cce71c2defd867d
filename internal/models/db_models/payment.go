package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is an append-only entry in a subscription's payment history.
type Payment struct {
	BaseModel
	SubscriptionID uuid.UUID       `gorm:"type:uuid;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2)"`
	Method         PaymentMethod   `gorm:"type:varchar(16)"`
	TransactionID  string          `gorm:"index"`
	GatewayRef     string
	PaidAt         int64
	Status         PaymentStatus `gorm:"type:varchar(16);index"`

	// gateway details: description, failure reason
	Metadata datatypes.JSONMap `gorm:"type:jsonb"`
}

const (
	MetadataDescription   = "description"
	MetadataFailureReason = "failureReason"
)

// FailureReason returns the gateway's decline reason, if one was recorded.
func (p *Payment) FailureReason() string {
	if p.Metadata == nil {
		return ""
	}
	v, _ := p.Metadata[MetadataFailureReason].(string)
	return v
}
