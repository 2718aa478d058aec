package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// BookingStatus represents the lifecycle state of a short-stay booking
type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// IsValid checks whether the status is known
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// PaymentStatus mirrors the charge lifecycle on the booking side
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Booking is a short-stay (Airbnb) reservation. Its receivable lives in
// the charge ledger: on creation the application spawns exactly one
// linked charge for the full price, due at check-out, and the booking's
// paid amount and balance are derived from that charge afterwards.
type Booking struct {
	shared.BaseAggregateRoot
	Code          string            `gorm:"uniqueIndex;not null;size:20" json:"code"`
	SpaceID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"space_id"`
	GuestName     string            `gorm:"not null;size:120" json:"guest_name"`
	GuestContact  string            `gorm:"size:120" json:"guest_contact,omitempty"`
	CheckIn       time.Time         `gorm:"not null;index" json:"check_in"`
	CheckOut      time.Time         `gorm:"not null;index" json:"check_out"`
	Nights        int               `gorm:"not null" json:"nights"`
	AgreedPrice   valueobject.Money `gorm:"type:decimal(18,2);not null" json:"agreed_price"`
	PaidAmount    valueobject.Money `gorm:"type:decimal(18,2);not null" json:"paid_amount"`
	Balance       valueobject.Money `gorm:"type:decimal(18,2);not null" json:"balance"`
	PaymentStatus PaymentStatus     `gorm:"not null;size:10" json:"payment_status"`
	Status        BookingStatus     `gorm:"not null;size:15;index" json:"status"`
	ChargeID      *uuid.UUID        `gorm:"type:uuid;index" json:"charge_id,omitempty"`
}

// TableName specifies the database table name
func (Booking) TableName() string {
	return "bookings"
}

// NewBooking creates a confirmed reservation with nothing collected yet
func NewBooking(
	code string,
	spaceID uuid.UUID,
	guestName string,
	guestContact string,
	checkIn time.Time,
	checkOut time.Time,
	agreedPrice valueobject.Money,
) (*Booking, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "booking code is required")
	}
	if spaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "space is required")
	}
	if guestName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "guest name is required")
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "check-in and check-out dates are required")
	}
	if !checkOut.After(checkIn) {
		return nil, shared.NewDomainError("INVALID_INPUT", "check-out must be after check-in")
	}
	if !agreedPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "agreed price must be greater than zero")
	}

	nights := int(dateOnly(checkOut).Sub(dateOnly(checkIn)).Hours() / 24)
	booking := &Booking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SpaceID:           spaceID,
		GuestName:         guestName,
		GuestContact:      guestContact,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Nights:            nights,
		AgreedPrice:       agreedPrice,
		PaidAmount:        valueobject.Zero(agreedPrice.Currency()),
		Balance:           agreedPrice,
		PaymentStatus:     PaymentPending,
		Status:            BookingConfirmed,
	}
	booking.AddDomainEvent(NewBookingCreatedEvent(booking))
	return booking, nil
}

// LinkCharge records the receivable spawned for this booking
func (b *Booking) LinkCharge(chargeID uuid.UUID) {
	b.ChargeID = &chargeID
}

// SyncPayment derives the booking's collected amount, balance and
// payment status from its linked charge. The charge ledger is the
// source of truth; the booking only mirrors it.
func (b *Booking) SyncPayment(paid valueobject.Money) error {
	if paid.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "paid amount cannot be negative")
	}
	balance, err := b.AgreedPrice.Subtract(paid)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	b.PaidAmount = paid
	b.Balance = balance
	switch {
	case paid.IsZero():
		b.PaymentStatus = PaymentPending
	case balance.IsPositive():
		b.PaymentStatus = PaymentPartial
	default:
		b.PaymentStatus = PaymentPaid
	}
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingPaymentSyncedEvent(b))
	return nil
}

// Start marks the guest as checked in
func (b *Booking) Start() error {
	if b.Status != BookingConfirmed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("booking %s is %s; only a CONFIRMED booking can start", b.Code, b.Status))
	}
	b.Status = BookingInProgress
	b.IncrementVersion()
	return nil
}

// Complete marks the guest as checked out
func (b *Booking) Complete() error {
	if b.Status != BookingInProgress {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("booking %s is %s; only a booking IN_PROGRESS can complete", b.Code, b.Status))
	}
	b.Status = BookingCompleted
	b.IncrementVersion()
	return nil
}

// Cancel aborts a booking that has not completed
func (b *Booking) Cancel() error {
	if b.Status == BookingCompleted || b.Status == BookingCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("booking %s is %s and can no longer be cancelled", b.Code, b.Status))
	}
	b.Status = BookingCancelled
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingCancelledEvent(b))
	return nil
}

// dateOnly truncates a time to midnight UTC for calendar-day arithmetic
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
