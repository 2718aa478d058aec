package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// GormRecurringTemplateRepository implements billing.RecurringTemplateRepository using GORM
type GormRecurringTemplateRepository struct {
	db *gorm.DB
}

var _ billing.RecurringTemplateRepository = (*GormRecurringTemplateRepository)(nil)

// NewGormRecurringTemplateRepository creates a new GormRecurringTemplateRepository
func NewGormRecurringTemplateRepository(db *gorm.DB) *GormRecurringTemplateRepository {
	return &GormRecurringTemplateRepository{db: db}
}

// Save creates or updates a template
func (r *GormRecurringTemplateRepository) Save(ctx context.Context, template *billing.RecurringTemplate) error {
	if err := dbFrom(ctx, r.db).Save(template).Error; err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// FindByID finds a template by ID
func (r *GormRecurringTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringTemplate, error) {
	var template billing.RecurringTemplate
	if err := dbFrom(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// FindAll finds templates with a total count
func (r *GormRecurringTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*billing.RecurringTemplate, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.RecurringTemplate{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payee ILIKE ? OR code ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, "code")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var templates []*billing.RecurringTemplate
	if err := query.Find(&templates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

// FindActive finds every active template
func (r *GormRecurringTemplateRepository) FindActive(ctx context.Context) ([]*billing.RecurringTemplate, error) {
	var templates []*billing.RecurringTemplate
	if err := dbFrom(ctx, r.db).
		Where("active = ?", true).
		Order("code asc").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to find active templates: %w", err)
	}
	return templates, nil
}

// Delete removes a template
func (r *GormRecurringTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := dbFrom(ctx, r.db).Delete(&billing.RecurringTemplate{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// GormRecurringInstanceRepository implements billing.RecurringInstanceRepository using GORM
type GormRecurringInstanceRepository struct {
	db *gorm.DB
}

var _ billing.RecurringInstanceRepository = (*GormRecurringInstanceRepository)(nil)

// NewGormRecurringInstanceRepository creates a new GormRecurringInstanceRepository
func NewGormRecurringInstanceRepository(db *gorm.DB) *GormRecurringInstanceRepository {
	return &GormRecurringInstanceRepository{db: db}
}

// Save creates or updates an instance
func (r *GormRecurringInstanceRepository) Save(ctx context.Context, instance *billing.RecurringInstance) error {
	if err := dbFrom(ctx, r.db).Save(instance).Error; err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}
	return nil
}

// FindByID finds an instance by ID
func (r *GormRecurringInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringInstance, error) {
	var instance billing.RecurringInstance
	if err := dbFrom(ctx, r.db).First(&instance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// FindByTemplateAndPeriod finds the instance of a template for a period
func (r *GormRecurringInstanceRepository) FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (*billing.RecurringInstance, error) {
	var instance billing.RecurringInstance
	if err := dbFrom(ctx, r.db).
		First(&instance, "template_id = ? AND period = ?", templateID, period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// FindByPeriod finds every instance materialized for a period
func (r *GormRecurringInstanceRepository) FindByPeriod(ctx context.Context, period valueobject.Period) ([]*billing.RecurringInstance, error) {
	var instances []*billing.RecurringInstance
	if err := dbFrom(ctx, r.db).
		Where("period = ?", period).
		Order("due_date asc").
		Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to find instances for period: %w", err)
	}
	return instances, nil
}

// ExistsForPeriod reports whether a template already materialized an
// instance for a period
func (r *GormRecurringInstanceRepository) ExistsForPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&billing.RecurringInstance{}).
		Where("template_id = ? AND period = ?", templateID, period).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check instances for period: %w", err)
	}
	return count > 0, nil
}
