package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/rental"
	"gorm.io/gorm"
)

// GormSpaceRepository implements rental.SpaceRepository using GORM
type GormSpaceRepository struct {
	db *gorm.DB
}

var _ rental.SpaceRepository = (*GormSpaceRepository)(nil)

// NewGormSpaceRepository creates a new GormSpaceRepository
func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

// Save creates or updates a space
func (r *GormSpaceRepository) Save(ctx context.Context, space *rental.Space) error {
	if err := dbFrom(ctx, r.db).Save(space).Error; err != nil {
		return fmt.Errorf("failed to save space: %w", err)
	}
	return nil
}

// FindByID finds a space by ID
func (r *GormSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Space, error) {
	var space rental.Space
	if err := dbFrom(ctx, r.db).First(&space, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &space, nil
}

// FindAll finds spaces matching the filter with a total count
func (r *GormSpaceRepository) FindAll(ctx context.Context, filter rental.SpaceFilter) ([]*rental.Space, int64, error) {
	query := dbFrom(ctx, r.db).Model(&rental.Space{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("label ILIKE ? OR payer_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count spaces: %w", err)
	}

	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, "label")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var spaces []*rental.Space
	if err := query.Find(&spaces).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list spaces: %w", err)
	}
	return spaces, total, nil
}

// FindActive finds every active space
func (r *GormSpaceRepository) FindActive(ctx context.Context) ([]*rental.Space, error) {
	var spaces []*rental.Space
	if err := dbFrom(ctx, r.db).
		Where("active = ?", true).
		Order("label asc").
		Find(&spaces).Error; err != nil {
		return nil, fmt.Errorf("failed to find active spaces: %w", err)
	}
	return spaces, nil
}

// Delete removes a space
func (r *GormSpaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := dbFrom(ctx, r.db).Delete(&rental.Space{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	return nil
}
