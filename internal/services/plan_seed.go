package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
)

func seedPlan(name string, t db_models.PlanType, quota int, price int64, provider, speed string, special bool, features ...string) db_models.Plan {
	return db_models.Plan{
		Name:         name,
		Type:         t,
		MonthlyQuota: quota,
		Price:        decimal.NewFromInt(price),
		Features:     datatypes.JSONSlice[string](features),
		Provider:     provider,
		Speed:        speed,
		IsActive:     true,
		IsSpecial:    special,
	}
}

func defaultPlans() []db_models.Plan {
	fiber, copper := db_models.PlanTypeFibernet, db_models.PlanTypeBroadbandCopper
	return []db_models.Plan{
		seedPlan("Fiber Basic 50", fiber, 50, 399, "BSNL Fiber", "100 Mbps", false,
			"50 GB high-speed data", "Up to 100 Mbps speed", "24/7 customer support", "Free installation", "WiFi router included"),
		seedPlan("Fiber Unlimited 100", fiber, 100, 599, "Airtel Fiber", "150 Mbps", false,
			"100 GB high-speed data", "Up to 150 Mbps speed", "Priority customer support", "Free installation", "Advanced WiFi router", "OTT platform access"),
		seedPlan("Fiber Unlimited 200", fiber, 200, 799, "Jio Fiber", "200 Mbps", false,
			"200 GB high-speed data", "Up to 200 Mbps speed", "Premium customer support", "Smart WiFi router", "Multiple OTT platforms", "Parental controls"),
		seedPlan("Fiber Unlimited 500", fiber, 500, 1299, "Tata Play Fiber", "300 Mbps", false,
			"500 GB high-speed data", "Up to 300 Mbps speed", "VIP customer support", "Gaming router included", "All OTT platforms", "Cloud storage (100 GB)"),
		seedPlan("Fiber Unlimited 1000", fiber, 1000, 1999, "ACT Fibernet", "500 Mbps", false,
			"1000 GB high-speed data", "Up to 500 Mbps speed", "Dedicated account manager", "Enterprise router", "All OTT platforms", "Static IP address"),
		seedPlan("Broadband Basic 20", copper, 20, 299, "BSNL Broadband", "50 Mbps", false,
			"20 GB data", "Up to 50 Mbps speed", "Standard support", "Basic modem"),
		seedPlan("Broadband Standard 40", copper, 40, 449, "MTNL Broadband", "80 Mbps", false,
			"40 GB data", "Up to 80 Mbps speed", "Standard support", "WiFi modem", "Email support"),
		seedPlan("Broadband Premium 80", copper, 80, 649, "Hathway Broadband", "100 Mbps", false,
			"80 GB data", "Up to 100 Mbps speed", "Priority support", "Dual-band WiFi router", "OTT platform access"),
		seedPlan("Broadband Unlimited 150", copper, 150, 899, "Excitel Broadband", "150 Mbps", false,
			"150 GB data", "Up to 150 Mbps speed", "Premium support", "Advanced WiFi router", "Multiple OTT platforms"),
		seedPlan("Student Special 30", fiber, 30, 249, "BSNL Fiber", "100 Mbps", true,
			"30 GB high-speed data", "Up to 100 Mbps speed", "Student discount", "Free installation"),
		seedPlan("Senior Citizen 25", copper, 25, 199, "BSNL Broadband", "50 Mbps", true,
			"25 GB data", "Up to 50 Mbps speed", "Senior citizen discount", "Home assistance"),
	}
}

// SeedDefaultPlans loads the bundled catalog when no plans exist yet.
func (p *PlanService) SeedDefaultPlans(ctx context.Context) (int, error) {
	existing, err := p.planRepo.List(ctx, request_models.PlanFilter{})
	if err != nil {
		return 0, dbError("list plans", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	plans := defaultPlans()
	for i := range plans {
		if err := p.planRepo.Create(ctx, &plans[i]); err != nil {
			return i, dbError("seed plan", err)
		}
	}

	p.log.WithContext(ctx).Infow("seeded plan catalog", "count", len(plans))
	return len(plans), nil
}
