package db_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PlanType string

const (
	PlanTypeFibernet        PlanType = "Fibernet"
	PlanTypeBroadbandCopper PlanType = "Broadband Copper"
)

var PlanTypes = []PlanType{PlanTypeFibernet, PlanTypeBroadbandCopper}

func (t PlanType) Valid() bool {
	return t == PlanTypeFibernet || t == PlanTypeBroadbandCopper
}

type Plan struct {
	BaseModel
	Name         string                      `gorm:"size:100;not null"`
	Type         PlanType                    `gorm:"type:varchar(32);index:idx_plans_type_active"`
	MonthlyQuota int                         `gorm:"not null"` // GB
	Price        decimal.Decimal             `gorm:"type:numeric(12,2);index"`
	Features     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Provider     string                      `gorm:"index"`
	Speed        string
	// bools carry no column default so an explicit false is stored as given
	IsActive  bool `gorm:"not null;index:idx_plans_type_active"`
	IsSpecial bool `gorm:"not null"`
}

// Category buckets a plan by price for display.
func (p *Plan) Category() string {
	switch {
	case p.IsSpecial:
		return "Special"
	case p.Price.LessThanOrEqual(decimal.NewFromInt(400)):
		return "Budget"
	case p.Price.LessThanOrEqual(decimal.NewFromInt(800)):
		return "Popular"
	case p.Price.LessThanOrEqual(decimal.NewFromInt(1200)):
		return "Premium"
	default:
		return "Business"
	}
}
