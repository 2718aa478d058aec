package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// BookingService implements short-stay booking use cases. A booking's
// receivable lives in the charge ledger; every payment flows through
// the linked charge and the booking mirrors the resulting totals.
type BookingService struct {
	bookingRepo rental.BookingRepository
	spaceRepo   rental.SpaceRepository
	chargeRepo  billing.ChargeRepository
	allocator   billing.SequenceAllocator
	txManager   shared.TxManager
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo rental.BookingRepository,
	spaceRepo rental.SpaceRepository,
	chargeRepo billing.ChargeRepository,
	allocator billing.SequenceAllocator,
	txManager shared.TxManager,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		spaceRepo:   spaceRepo,
		chargeRepo:  chargeRepo,
		allocator:   allocator,
		txManager:   txManager,
	}
}

// CreateBookingRequest represents a request to create a booking
type CreateBookingRequest struct {
	SpaceID      uuid.UUID
	GuestName    string
	GuestContact string
	CheckIn      time.Time
	CheckOut     time.Time
	AgreedPrice  valueobject.Money
}

// CreateBooking persists a reservation and spawns its receivable in one
// transaction: an AB code for the booking, a P code for the charge, and
// the charge itself for the full price, due at check-out.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*rental.Booking, error) {
	var booking *rental.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		space, err := s.spaceRepo.FindByID(ctx, req.SpaceID)
		if err != nil {
			return fmt.Errorf("failed to load space: %w", err)
		}
		if space == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("space %s not found", req.SpaceID))
		}
		if space.Kind != rental.SpaceAirbnb {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("space %q is not a short-stay unit", space.Label))
		}
		if !space.Active {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("space %q is inactive", space.Label))
		}

		bookingCode, err := s.allocator.Next(ctx, billing.FamilyBooking)
		if err != nil {
			return fmt.Errorf("failed to allocate booking code: %w", err)
		}
		booking, err = rental.NewBooking(bookingCode, req.SpaceID, req.GuestName,
			req.GuestContact, req.CheckIn, req.CheckOut, req.AgreedPrice)
		if err != nil {
			return err
		}

		chargeCode, err := s.allocator.Next(ctx, billing.FamilyCharge)
		if err != nil {
			return fmt.Errorf("failed to allocate charge code: %w", err)
		}
		period := valueobject.PeriodOf(req.CheckOut)
		charge, err := billing.NewCharge(
			chargeCode, req.SpaceID, billing.OwnerAirbnb,
			billing.ConceptAirbnb, booking.GuestName, &period,
			req.AgreedPrice, valueobject.Zero(req.AgreedPrice.Currency()),
			req.CheckOut, nil, "", "",
		)
		if err != nil {
			return err
		}
		charge.BookingID = &booking.ID
		booking.LinkCharge(charge.ID)

		if err := s.bookingRepo.Save(ctx, booking); err != nil {
			return err
		}
		return s.chargeRepo.Save(ctx, charge)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ApplyPaymentRequest represents a payment received for a booking
type ApplyPaymentRequest struct {
	BookingID uuid.UUID
	Amount    valueobject.Money
	PaidDate  time.Time
	Method    billing.PaymentMethod
	Reference string
}

// ApplyPayment records money received against a booking's charge and
// re-derives the booking's totals from the ledger, all in one
// transaction so the two can never diverge.
func (s *BookingService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*rental.Booking, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "payment amount must be greater than zero")
	}
	var booking *rental.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookingRepo.FindByID(ctx, req.BookingID)
		if err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}
		if booking == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("booking %s not found", req.BookingID))
		}
		if booking.Status == rental.BookingCancelled {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("booking %s is cancelled", booking.Code))
		}
		if booking.ChargeID == nil {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("booking %s has no linked charge", booking.Code))
		}
		charge, err := s.chargeRepo.FindByID(ctx, *booking.ChargeID)
		if err != nil {
			return fmt.Errorf("failed to load booking charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("charge for booking %s not found", booking.Code))
		}

		newPaid, err := charge.PaidAmount.Add(req.Amount)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", err.Error())
		}
		exceeds, err := newPaid.GreaterThan(charge.AgreedAmount)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", err.Error())
		}
		if exceeds {
			outstanding := charge.AgreedAmount.MustSubtract(charge.PaidAmount)
			return shared.NewDomainError("EXCEEDS_BALANCE",
				fmt.Sprintf("payment of %s exceeds outstanding balance of %s on booking %s",
					req.Amount.StringFixed(2), outstanding.StringFixed(2), booking.Code))
		}

		status := billing.DeriveStatus(newPaid.MustSubtract(charge.AgreedAmount))
		if err := charge.ApplyPaymentUpdate(billing.PaymentUpdate{
			PaidAmount:    &newPaid,
			PaidDate:      &req.PaidDate,
			PaymentMethod: &req.Method,
			Reference:     &req.Reference,
			Status:        &status,
		}); err != nil {
			return err
		}
		if err := s.chargeRepo.Save(ctx, charge); err != nil {
			return err
		}

		// the ledger is the source of truth; the booking only mirrors it
		total, err := s.chargeRepo.SumPaidByBooking(ctx, booking.ID)
		if err != nil {
			return fmt.Errorf("failed to sum booking payments: %w", err)
		}
		if err := booking.SyncPayment(total); err != nil {
			return err
		}
		return s.bookingRepo.Save(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetBooking loads a single booking
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*rental.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("booking %s not found", bookingID))
	}
	return booking, nil
}

// ListBookings returns bookings matching the filter with a total count
func (s *BookingService) ListBookings(ctx context.Context, filter rental.BookingFilter) (*shared.Paginated[*rental.Booking], error) {
	bookings, total, err := s.bookingRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	page := shared.NewPaginated(bookings, total, filter.Page, filter.PageSize)
	return &page, nil
}

// StartBooking marks the guest as checked in
func (s *BookingService) StartBooking(ctx context.Context, bookingID uuid.UUID) (*rental.Booking, error) {
	return s.transition(ctx, bookingID, (*rental.Booking).Start)
}

// CompleteBooking marks the guest as checked out
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*rental.Booking, error) {
	return s.transition(ctx, bookingID, (*rental.Booking).Complete)
}

// CancelBooking aborts a booking that has not completed
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*rental.Booking, error) {
	return s.transition(ctx, bookingID, (*rental.Booking).Cancel)
}

func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, fn func(*rental.Booking) error) (*rental.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := fn(booking); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Save(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
