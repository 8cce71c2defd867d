package request_models

import "github.com/shopspring/decimal"

type CreatePlanRequest struct {
	Name         string           `json:"name" validate:"required,max=100"`
	Type         string           `json:"type" validate:"required"`
	MonthlyQuota int              `json:"monthlyQuota" validate:"required,min=1"`
	Price        *decimal.Decimal `json:"price"`
	Features     []string         `json:"features" validate:"required,min=1,dive,required"`
	Provider     string           `json:"provider" validate:"required"`
	Speed        string           `json:"speed" validate:"required"`
	IsActive     *bool            `json:"isActive"`
	IsSpecial    bool             `json:"isSpecial"`
}

// UpdatePlanRequest is a partial update; nil fields are left untouched.
type UpdatePlanRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Type         *string          `json:"type"`
	MonthlyQuota *int             `json:"monthlyQuota" validate:"omitempty,min=1"`
	Price        *decimal.Decimal `json:"price"`
	Features     []string         `json:"features" validate:"omitempty,min=1,dive,required"`
	Provider     *string          `json:"provider" validate:"omitempty,min=1"`
	Speed        *string          `json:"speed" validate:"omitempty,min=1"`
	IsActive     *bool            `json:"isActive"`
	IsSpecial    *bool            `json:"isSpecial"`
}

type PlanFilter struct {
	Type     string
	Provider string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	IsActive *bool
}
