package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// GormChargeRepository implements billing.ChargeRepository using GORM
type GormChargeRepository struct {
	db *gorm.DB
}

var _ billing.ChargeRepository = (*GormChargeRepository)(nil)

// NewGormChargeRepository creates a new GormChargeRepository
func NewGormChargeRepository(db *gorm.DB) *GormChargeRepository {
	return &GormChargeRepository{db: db}
}

// Save creates or updates a charge
func (r *GormChargeRepository) Save(ctx context.Context, charge *billing.Charge) error {
	if err := dbFrom(ctx, r.db).Save(charge).Error; err != nil {
		return fmt.Errorf("failed to save charge: %w", err)
	}
	return nil
}

// FindByID finds a charge by ID
func (r *GormChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	var charge billing.Charge
	if err := dbFrom(ctx, r.db).First(&charge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// FindByCode finds a charge by its sequence code
func (r *GormChargeRepository) FindByCode(ctx context.Context, code string) (*billing.Charge, error) {
	var charge billing.Charge
	if err := dbFrom(ctx, r.db).First(&charge, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// FindAll finds charges matching the filter with a total count
func (r *GormChargeRepository) FindAll(ctx context.Context, filter billing.ChargeFilter) ([]*billing.Charge, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.Charge{})

	if filter.SpaceID != nil {
		query = query.Where("space_id = ?", *filter.SpaceID)
	}
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.SpaceKind != nil {
		query = query.Where("space_kind = ?", *filter.SpaceKind)
	}
	if filter.Concept != nil {
		query = query.Where("concept = ?", *filter.Concept)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != nil {
		query = query.Where("period = ?", *filter.Period)
	}
	if filter.IsPartial != nil {
		query = query.Where("is_partial = ?", *filter.IsPartial)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date < ?", *filter.DueTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR concept_label ILIKE ? OR reference ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count charges: %w", err)
	}

	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, "due_date")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var charges []*billing.Charge
	if err := query.Find(&charges).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list charges: %w", err)
	}
	return charges, total, nil
}

// FindDueBetween finds charges whose due date falls in [from, to)
func (r *GormChargeRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*billing.Charge, error) {
	var charges []*billing.Charge
	if err := dbFrom(ctx, r.db).
		Where("due_date >= ? AND due_date < ?", from, to).
		Order("due_date asc").
		Find(&charges).Error; err != nil {
		return nil, fmt.Errorf("failed to find charges by due date: %w", err)
	}
	return charges, nil
}

// FindChildren finds the installments of a principal charge
func (r *GormChargeRepository) FindChildren(ctx context.Context, principalID uuid.UUID) ([]*billing.Charge, error) {
	var charges []*billing.Charge
	if err := dbFrom(ctx, r.db).
		Where("related_charge_id = ?", principalID).
		Order("paid_date asc").
		Find(&charges).Error; err != nil {
		return nil, fmt.Errorf("failed to find installments: %w", err)
	}
	return charges, nil
}

// CountChildren counts the installments of a principal charge
func (r *GormChargeRepository) CountChildren(ctx context.Context, principalID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&billing.Charge{}).
		Where("related_charge_id = ?", principalID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count installments: %w", err)
	}
	return count, nil
}

// ExistsForSpacePeriod reports whether a charge is persisted for the
// (space, period) pair
func (r *GormChargeRepository) ExistsForSpacePeriod(ctx context.Context, spaceID uuid.UUID, period valueobject.Period) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&billing.Charge{}).
		Where("space_id = ? AND period = ?", spaceID, period).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check charges for period: %w", err)
	}
	return count > 0, nil
}

// SumPaidByBooking totals the money collected against a booking across
// its charge and any installments
func (r *GormChargeRepository) SumPaidByBooking(ctx context.Context, bookingID uuid.UUID) (valueobject.Money, error) {
	var total valueobject.Money
	err := dbFrom(ctx, r.db).Model(&billing.Charge{}).
		Select("COALESCE(SUM(paid_amount), 0)").
		Where("booking_id = ?", bookingID).
		Scan(&total).Error
	if err != nil {
		return valueobject.ZeroPEN(), fmt.Errorf("failed to sum booking payments: %w", err)
	}
	return total, nil
}

// Delete removes a charge
func (r *GormChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&billing.Charge{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete charge: %w", result.Error)
	}
	return nil
}

// applyOrdering appends a sanitized ORDER BY clause
func applyOrdering(query *gorm.DB, orderBy, orderDir, fallback string) *gorm.DB {
	column := fallback
	switch orderBy {
	case "due_date", "paid_date", "created_at", "code", "status", "check_in", "label", "payee":
		column = orderBy
	}
	dir := "asc"
	if orderDir == "desc" {
		dir = "desc"
	}
	return query.Order(column + " " + dir)
}

// applyPagination appends LIMIT/OFFSET; a zero page size means no paging
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
