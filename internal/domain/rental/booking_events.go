package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// Event type constants
const (
	EventBookingCreated       = "rental.booking.created"
	EventBookingPaymentSynced = "rental.booking.payment_synced"
	EventBookingCancelled     = "rental.booking.cancelled"
)

// BookingCreatedEvent is raised when a reservation is confirmed
type BookingCreatedEvent struct {
	shared.BaseDomainEvent
	Code        string            `json:"code"`
	SpaceID     uuid.UUID         `json:"space_id"`
	GuestName   string            `json:"guest_name"`
	CheckIn     time.Time         `json:"check_in"`
	CheckOut    time.Time         `json:"check_out"`
	AgreedPrice valueobject.Money `json:"agreed_price"`
}

// NewBookingCreatedEvent creates a new BookingCreatedEvent
func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBookingCreated, "Booking", b.ID),
		Code:            b.Code,
		SpaceID:         b.SpaceID,
		GuestName:       b.GuestName,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		AgreedPrice:     b.AgreedPrice,
	}
}

// BookingPaymentSyncedEvent is raised when the booking mirrors a new
// paid total from its linked charge
type BookingPaymentSyncedEvent struct {
	shared.BaseDomainEvent
	Code          string            `json:"code"`
	PaidAmount    valueobject.Money `json:"paid_amount"`
	Balance       valueobject.Money `json:"balance"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
}

// NewBookingPaymentSyncedEvent creates a new BookingPaymentSyncedEvent
func NewBookingPaymentSyncedEvent(b *Booking) *BookingPaymentSyncedEvent {
	return &BookingPaymentSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBookingPaymentSynced, "Booking", b.ID),
		Code:            b.Code,
		PaidAmount:      b.PaidAmount,
		Balance:         b.Balance,
		PaymentStatus:   b.PaymentStatus,
	}
}

// BookingCancelledEvent is raised when a booking is aborted
type BookingCancelledEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewBookingCancelledEvent creates a new BookingCancelledEvent
func NewBookingCancelledEvent(b *Booking) *BookingCancelledEvent {
	return &BookingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBookingCancelled, "Booking", b.ID),
		Code:            b.Code,
	}
}
