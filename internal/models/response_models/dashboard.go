package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type KPIBlock struct {
	TotalAccounts          int64 `json:"totalAccounts"`
	ActiveSubscriptions    int64 `json:"activeSubscriptions"`
	CancelledSubscriptions int64 `json:"cancelledSubscriptions"`
	ExpiredSubscriptions   int64 `json:"expiredSubscriptions"`
	// Sum of successful payments across all subscriptions.
	Revenue decimal.Decimal `json:"revenue"`
	// Monthly recurring revenue from effectively active subscriptions at current plan prices.
	MRR decimal.Decimal `json:"mrr"`
}

type PlanMixItem struct {
	PlanID   uuid.UUID `json:"planId"`
	PlanName string    `json:"planName"`
	Count    int64     `json:"count"`
	Percent  float64   `json:"percent"`
}

type DashboardReport struct {
	KPIs    KPIBlock      `json:"kpis"`
	PlanMix []PlanMixItem `json:"planMix"`
}
