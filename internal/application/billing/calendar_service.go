package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// CalendarService assembles the unified monthly payments calendar
type CalendarService struct {
	spaceRepo    rental.SpaceRepository
	serviceRepo  rental.ServiceAccountRepository
	employeeRepo rental.EmployeeRepository
	bookingRepo  rental.BookingRepository
	checker      billing.ObligationChecker
	projections  *ProjectionService
	calendar     *billing.CalendarService
	now          func() time.Time
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(
	spaceRepo rental.SpaceRepository,
	serviceRepo rental.ServiceAccountRepository,
	employeeRepo rental.EmployeeRepository,
	bookingRepo rental.BookingRepository,
	checker billing.ObligationChecker,
	projections *ProjectionService,
) *CalendarService {
	return &CalendarService{
		spaceRepo:    spaceRepo,
		serviceRepo:  serviceRepo,
		employeeRepo: employeeRepo,
		bookingRepo:  bookingRepo,
		checker:      checker,
		projections:  projections,
		calendar:     billing.NewCalendarService(),
		now:          time.Now,
	}
}

// EventsFor builds the calendar for one month, optionally filtered to a
// single event kind
func (s *CalendarService) EventsFor(ctx context.Context, year int, month time.Month, kind billing.EventKind) ([]billing.Event, error) {
	if kind != "" && !kind.IsValid() {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	period := valueobject.NewPeriod(year, month)
	input := billing.CalendarInput{
		Year:  year,
		Month: month,
		Today: s.now(),
	}

	spaces, err := s.spaceRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces: %w", err)
	}
	spaceIDs := make([]uuid.UUID, 0, len(spaces))
	spaceLabels := make(map[uuid.UUID]string, len(spaces))
	for _, sp := range spaces {
		input.Spaces = append(input.Spaces, spaceBillingInfo(sp))
		spaceIDs = append(spaceIDs, sp.ID)
		spaceLabels[sp.ID] = sp.Label
	}
	input.RentSatisfied, err = s.checker.SatisfiedSet(ctx, billing.ObligationRent, spaceIDs, period)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rent obligations: %w", err)
	}

	services, err := s.serviceRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	serviceIDs := make([]uuid.UUID, 0, len(services))
	for _, svc := range services {
		input.Services = append(input.Services, billing.ObligorInfo{
			ID:     svc.ID,
			Name:   svc.Name,
			PayDay: svc.PayDay,
			Amount: svc.MonthlyAmount,
			Active: svc.Active,
		})
		serviceIDs = append(serviceIDs, svc.ID)
	}
	input.ServiceSatisfied, err = s.checker.SatisfiedSet(ctx, billing.ObligationService, serviceIDs, period)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service obligations: %w", err)
	}

	employees, err := s.employeeRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	employeeIDs := make([]uuid.UUID, 0, len(employees))
	for _, emp := range employees {
		input.Employees = append(input.Employees, billing.ObligorInfo{
			ID:     emp.ID,
			Name:   emp.Name,
			PayDay: emp.PayDay,
			Amount: emp.Salary,
			Active: emp.Active,
		})
		employeeIDs = append(employeeIDs, emp.ID)
	}
	input.EmployeeSatisfied, err = s.checker.SatisfiedSet(ctx, billing.ObligationEmployee, employeeIDs, period)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payroll obligations: %w", err)
	}

	input.OtherPayments, err = s.projections.ProjectMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	// Materialized but unpaid instances still represent money to move
	pending, err := s.projections.PendingInstances(ctx, year, month)
	if err != nil {
		return nil, err
	}
	input.OtherPayments = append(input.OtherPayments, pending...)

	bookings, err := s.bookingRepo.FindOverlapping(ctx, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	for _, b := range bookings {
		if b.Status == rental.BookingCancelled {
			continue
		}
		label := spaceLabels[b.SpaceID]
		if label == "" {
			label = b.Code
		}
		input.Bookings = append(input.Bookings, billing.BookingWindow{
			ID:         b.ID,
			Code:       b.Code,
			GuestName:  b.GuestName,
			SpaceLabel: label,
			CheckIn:    b.CheckIn,
			CheckOut:   b.CheckOut,
		})
	}

	return s.calendar.EventsFor(input, kind), nil
}
