package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	MonthlyQuota int             `json:"monthlyQuota"`
	Price        decimal.Decimal `json:"price"`
	Features     []string        `json:"features"`
	Provider     string          `json:"provider"`
	Speed        string          `json:"speed"`
	IsActive     bool            `json:"isActive"`
	IsSpecial    bool            `json:"isSpecial"`
	Category     string          `json:"category"`
}

type PriceStats struct {
	Avg decimal.Decimal `json:"avg"`
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type PlanStats struct {
	TotalPlans   int            `json:"totalPlans"`
	ActivePlans  int            `json:"activePlans"`
	CountsByType map[string]int `json:"countsByType"`
	PriceStats   PriceStats     `json:"priceStats"`
}
