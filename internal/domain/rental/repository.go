package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// SpaceFilter represents filter options for space queries
type SpaceFilter struct {
	shared.Filter
	Kind   *SpaceKind
	Active *bool
}

// SpaceRepository defines the persistence contract for spaces
type SpaceRepository interface {
	Save(ctx context.Context, space *Space) error
	FindByID(ctx context.Context, id uuid.UUID) (*Space, error)
	FindAll(ctx context.Context, filter SpaceFilter) ([]*Space, int64, error)
	FindActive(ctx context.Context) ([]*Space, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingFilter represents filter options for booking queries
type BookingFilter struct {
	shared.Filter
	SpaceID *uuid.UUID
	Status  *BookingStatus
	From    *time.Time
	To      *time.Time
}

// BookingRepository defines the persistence contract for bookings
type BookingRepository interface {
	Save(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByCode(ctx context.Context, code string) (*Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]*Booking, int64, error)
	FindOverlapping(ctx context.Context, from, to time.Time) ([]*Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceAccountRepository defines the persistence contract for services
type ServiceAccountRepository interface {
	Save(ctx context.Context, account *ServiceAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceAccount, error)
	FindActive(ctx context.Context) ([]*ServiceAccount, error)
}

// EmployeeRepository defines the persistence contract for employees
type EmployeeRepository interface {
	Save(ctx context.Context, employee *Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindActive(ctx context.Context) ([]*Employee, error)
}
