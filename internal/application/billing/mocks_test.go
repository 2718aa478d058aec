package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/mock"
)

// MockChargeRepository is a mock implementation of billing.ChargeRepository
type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) Save(ctx context.Context, charge *billing.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindByCode(ctx context.Context, code string) (*billing.Charge, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindAll(ctx context.Context, filter billing.ChargeFilter) ([]*billing.Charge, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*billing.Charge), args.Get(1).(int64), args.Error(2)
}

func (m *MockChargeRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*billing.Charge, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindChildren(ctx context.Context, principalID uuid.UUID) ([]*billing.Charge, error) {
	args := m.Called(ctx, principalID)
	return args.Get(0).([]*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) CountChildren(ctx context.Context, principalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, principalID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChargeRepository) ExistsForSpacePeriod(ctx context.Context, spaceID uuid.UUID, period valueobject.Period) (bool, error) {
	args := m.Called(ctx, spaceID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockChargeRepository) SumPaidByBooking(ctx context.Context, bookingID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTemplateRepository is a mock implementation of billing.RecurringTemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *billing.RecurringTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*billing.RecurringTemplate, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*billing.RecurringTemplate), args.Get(1).(int64), args.Error(2)
}

func (m *MockTemplateRepository) FindActive(ctx context.Context) ([]*billing.RecurringTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*billing.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInstanceRepository is a mock implementation of billing.RecurringInstanceRepository
type MockInstanceRepository struct {
	mock.Mock
}

func (m *MockInstanceRepository) Save(ctx context.Context, instance *billing.RecurringInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RecurringInstance), args.Error(1)
}

func (m *MockInstanceRepository) FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (*billing.RecurringInstance, error) {
	args := m.Called(ctx, templateID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RecurringInstance), args.Error(1)
}

func (m *MockInstanceRepository) FindByPeriod(ctx context.Context, period valueobject.Period) ([]*billing.RecurringInstance, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]*billing.RecurringInstance), args.Error(1)
}

func (m *MockInstanceRepository) ExistsForPeriod(ctx context.Context, templateID uuid.UUID, period valueobject.Period) (bool, error) {
	args := m.Called(ctx, templateID, period)
	return args.Bool(0), args.Error(1)
}

// MockSpaceRepository is a mock implementation of rental.SpaceRepository
type MockSpaceRepository struct {
	mock.Mock
}

func (m *MockSpaceRepository) Save(ctx context.Context, space *rental.Space) error {
	args := m.Called(ctx, space)
	return args.Error(0)
}

func (m *MockSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Space), args.Error(1)
}

func (m *MockSpaceRepository) FindAll(ctx context.Context, filter rental.SpaceFilter) ([]*rental.Space, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*rental.Space), args.Get(1).(int64), args.Error(2)
}

func (m *MockSpaceRepository) FindActive(ctx context.Context) ([]*rental.Space, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*rental.Space), args.Error(1)
}

func (m *MockSpaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceAccountRepository is a mock implementation of rental.ServiceAccountRepository
type MockServiceAccountRepository struct {
	mock.Mock
}

func (m *MockServiceAccountRepository) Save(ctx context.Context, account *rental.ServiceAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockServiceAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.ServiceAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ServiceAccount), args.Error(1)
}

func (m *MockServiceAccountRepository) FindActive(ctx context.Context) ([]*rental.ServiceAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*rental.ServiceAccount), args.Error(1)
}

// MockEmployeeRepository is a mock implementation of rental.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Save(ctx context.Context, employee *rental.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindActive(ctx context.Context) ([]*rental.Employee, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*rental.Employee), args.Error(1)
}

// MockBookingRepository is a mock implementation of rental.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Save(ctx context.Context, booking *rental.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByCode(ctx context.Context, code string) (*rental.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindAll(ctx context.Context, filter rental.BookingFilter) ([]*rental.Booking, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*rental.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, from, to time.Time) ([]*rental.Booking, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*rental.Booking), args.Error(1)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockObligationChecker is a mock implementation of billing.ObligationChecker
type MockObligationChecker struct {
	mock.Mock
}

func (m *MockObligationChecker) IsSatisfied(ctx context.Context, kind billing.ObligationKind, ownerID uuid.UUID, period valueobject.Period) (bool, error) {
	args := m.Called(ctx, kind, ownerID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockObligationChecker) SatisfiedSet(ctx context.Context, kind billing.ObligationKind, ownerIDs []uuid.UUID, period valueobject.Period) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, kind, ownerIDs, period)
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

// stubAllocator hands out sequential codes without a database
type stubAllocator struct {
	next map[billing.CodeFamily]int
}

func newStubAllocator() *stubAllocator {
	return &stubAllocator{next: make(map[billing.CodeFamily]int)}
}

func (a *stubAllocator) Next(_ context.Context, family billing.CodeFamily) (string, error) {
	a.next[family]++
	return billing.FormatCode(family, a.next[family]), nil
}

// passthroughTx runs the unit of work without a real transaction
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memoryIdempotency is an in-memory IdempotencyStore
type memoryIdempotency struct {
	entries map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{entries: make(map[string]string)}
}

func (s *memoryIdempotency) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *memoryIdempotency) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.entries[key] = value
	return nil
}
