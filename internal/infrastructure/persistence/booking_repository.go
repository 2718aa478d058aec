package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/rental"
	"gorm.io/gorm"
)

// GormBookingRepository implements rental.BookingRepository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

var _ rental.BookingRepository = (*GormBookingRepository)(nil)

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save creates or updates a booking
func (r *GormBookingRepository) Save(ctx context.Context, booking *rental.Booking) error {
	if err := dbFrom(ctx, r.db).Save(booking).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// FindByID finds a booking by ID
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Booking, error) {
	var booking rental.Booking
	if err := dbFrom(ctx, r.db).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByCode finds a booking by its sequence code
func (r *GormBookingRepository) FindByCode(ctx context.Context, code string) (*rental.Booking, error) {
	var booking rental.Booking
	if err := dbFrom(ctx, r.db).First(&booking, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindAll finds bookings matching the filter with a total count
func (r *GormBookingRepository) FindAll(ctx context.Context, filter rental.BookingFilter) ([]*rental.Booking, int64, error) {
	query := dbFrom(ctx, r.db).Model(&rental.Booking{})
	if filter.SpaceID != nil {
		query = query.Where("space_id = ?", *filter.SpaceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("check_out > ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("check_in < ?", *filter.To)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR guest_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, "check_in")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var bookings []*rental.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

// FindOverlapping finds bookings whose stay intersects [from, to)
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, from, to time.Time) ([]*rental.Booking, error) {
	var bookings []*rental.Booking
	if err := dbFrom(ctx, r.db).
		Where("check_in < ? AND check_out >= ?", to, from).
		Order("check_in asc").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return bookings, nil
}

// Delete removes a booking
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := dbFrom(ctx, r.db).Delete(&rental.Booking{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// GormServiceAccountRepository implements rental.ServiceAccountRepository using GORM
type GormServiceAccountRepository struct {
	db *gorm.DB
}

var _ rental.ServiceAccountRepository = (*GormServiceAccountRepository)(nil)

// NewGormServiceAccountRepository creates a new GormServiceAccountRepository
func NewGormServiceAccountRepository(db *gorm.DB) *GormServiceAccountRepository {
	return &GormServiceAccountRepository{db: db}
}

// Save creates or updates a service account
func (r *GormServiceAccountRepository) Save(ctx context.Context, account *rental.ServiceAccount) error {
	if err := dbFrom(ctx, r.db).Save(account).Error; err != nil {
		return fmt.Errorf("failed to save service account: %w", err)
	}
	return nil
}

// FindByID finds a service account by ID
func (r *GormServiceAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.ServiceAccount, error) {
	var account rental.ServiceAccount
	if err := dbFrom(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindActive finds every active service account
func (r *GormServiceAccountRepository) FindActive(ctx context.Context) ([]*rental.ServiceAccount, error) {
	var accounts []*rental.ServiceAccount
	if err := dbFrom(ctx, r.db).
		Where("active = ?", true).
		Order("name asc").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to find active service accounts: %w", err)
	}
	return accounts, nil
}

// GormEmployeeRepository implements rental.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

var _ rental.EmployeeRepository = (*GormEmployeeRepository)(nil)

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Save creates or updates an employee
func (r *GormEmployeeRepository) Save(ctx context.Context, employee *rental.Employee) error {
	if err := dbFrom(ctx, r.db).Save(employee).Error; err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// FindByID finds an employee by ID
func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Employee, error) {
	var employee rental.Employee
	if err := dbFrom(ctx, r.db).First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

// FindActive finds every active employee
func (r *GormEmployeeRepository) FindActive(ctx context.Context) ([]*rental.Employee, error) {
	var employees []*rental.Employee
	if err := dbFrom(ctx, r.db).
		Where("active = ?", true).
		Order("name asc").
		Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to find active employees: %w", err)
	}
	return employees, nil
}
