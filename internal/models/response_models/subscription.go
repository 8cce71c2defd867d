package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
	Date          string          `json:"paymentDate"`
	Status        string          `json:"status"`
	FailureReason string          `json:"failureReason,omitempty"`
}

type UsageDataResponse struct {
	CurrentUsage  float64 `json:"currentUsage"`
	LastResetDate string  `json:"lastResetDate"`
}

type SubscriptionResponse struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	PlanID          uuid.UUID         `json:"planId"`
	Plan            *PlanResponse     `json:"plan"`
	Status          string            `json:"status"`
	StartDate       string            `json:"startDate"`
	EndDate         string            `json:"endDate"`
	AutoRenew       bool              `json:"autoRenew"`
	UsageData       UsageDataResponse `json:"usageData"`
	UsagePercentage float64           `json:"usagePercentage"`
	DaysUntilExpiry int               `json:"daysUntilExpiry"`
	PaymentHistory  []PaymentResponse `json:"paymentHistory"`
}

type Recommendation struct {
	Plan    PlanResponse     `json:"plan"`
	Reason  string           `json:"reason"`
	Savings *decimal.Decimal `json:"savings,omitempty"`
}

type UsageResponse struct {
	CurrentUsage    float64         `json:"currentUsage"`
	MonthlyQuota    int             `json:"monthlyQuota"`
	UsagePercentage float64         `json:"usagePercentage"`
	UsageStatus     string          `json:"usageStatus"`
	Recommendation  *Recommendation `json:"recommendation"`
}
