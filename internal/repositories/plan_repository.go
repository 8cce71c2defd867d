package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"subhub/internal/models/db_models"
	"subhub/internal/models/request_models"
)

type IPlanRepository interface {
	Create(ctx context.Context, plan *db_models.Plan) error
	GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error)
	// List returns plans matching filter ordered by price ascending.
	List(ctx context.Context, filter request_models.PlanFilter) ([]db_models.Plan, error)
	Update(ctx context.Context, plan *db_models.Plan) error
	// Delete removes the plan permanently. Returns false when it did not exist.
	Delete(ctx context.Context, planID uuid.UUID) (bool, error)
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p PlanRepository) Create(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Create(plan).Error
}

func (p PlanRepository) GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	var plan db_models.Plan
	err := p.db.WithContext(ctx).First(&plan, "id = ?", planID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &plan, nil
}

func (p PlanRepository) List(ctx context.Context, filter request_models.PlanFilter) ([]db_models.Plan, error) {
	q := p.db.WithContext(ctx).Model(&db_models.Plan{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Provider != "" {
		q = q.Where("provider ILIKE ?", "%"+escapeLike(filter.Provider)+"%")
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var plans []db_models.Plan
	err := q.Order("price ASC").Order("created_at ASC").Find(&plans).Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (p PlanRepository) Update(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Save(plan).Error
}

func (p PlanRepository) Delete(ctx context.Context, planID uuid.UUID) (bool, error) {
	res := p.db.WithContext(ctx).Unscoped().Delete(&db_models.Plan{}, "id = ?", planID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
