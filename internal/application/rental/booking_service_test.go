package rental

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pen(amount float64) valueobject.Money {
	return valueobject.NewMoneyPENFromFloat(amount)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newBookingFixture(t *testing.T) (*BookingService, *MockBookingRepository, *MockSpaceRepository, *MockChargeRepository) {
	t.Helper()
	bookings := new(MockBookingRepository)
	spaces := new(MockSpaceRepository)
	charges := new(MockChargeRepository)
	svc := NewBookingService(bookings, spaces, charges, newStubAllocator(), passthroughTx{})
	return svc, bookings, spaces, charges
}

func airbnbSpace(t *testing.T) *rental.Space {
	t.Helper()
	sp, err := rental.NewSpace("Loft 1", rental.SpaceAirbnb, "", 0, pen(0), "AIRBNB")
	require.NoError(t, err)
	return sp
}

func TestCreateBooking_SpawnsReceivable(t *testing.T) {
	svc, bookings, spaces, charges := newBookingFixture(t)
	sp := airbnbSpace(t)
	spaces.On("FindByID", mock.Anything, sp.ID).Return(sp, nil)
	bookings.On("Save", mock.Anything, mock.AnythingOfType("*rental.Booking")).Return(nil)

	var spawned *billing.Charge
	charges.On("Save", mock.Anything, mock.AnythingOfType("*billing.Charge")).
		Run(func(args mock.Arguments) { spawned = args.Get(1).(*billing.Charge) }).
		Return(nil)

	booking, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		SpaceID:     sp.ID,
		GuestName:   "Ana Torres",
		CheckIn:     date(2026, time.March, 12),
		CheckOut:    date(2026, time.March, 16),
		AgreedPrice: pen(480),
	})
	require.NoError(t, err)
	assert.Equal(t, "AB-0001", booking.Code)

	require.NotNil(t, spawned)
	assert.Equal(t, "P-0001", spawned.Code)
	assert.Equal(t, billing.ConceptAirbnb, spawned.Concept)
	assert.Equal(t, date(2026, time.March, 16), spawned.DueDate, "receivable due at check-out")
	assert.True(t, spawned.AgreedAmount.Equals(pen(480)))
	assert.True(t, spawned.PaidAmount.IsZero())
	require.NotNil(t, spawned.BookingID)
	assert.Equal(t, booking.ID, *spawned.BookingID)
	require.NotNil(t, booking.ChargeID)
	assert.Equal(t, spawned.ID, *booking.ChargeID)
	require.NotNil(t, spawned.Period)
	assert.Equal(t, "2026-03", spawned.Period.String())
}

func TestCreateBooking_RejectsWrongSpace(t *testing.T) {
	svc, _, spaces, _ := newBookingFixture(t)

	longTerm, err := rental.NewSpace("Dpto 101", rental.SpaceRental, "Carlos", 5, pen(900), "")
	require.NoError(t, err)
	spaces.On("FindByID", mock.Anything, longTerm.ID).Return(longTerm, nil)

	_, err = svc.CreateBooking(context.Background(), CreateBookingRequest{
		SpaceID:     longTerm.ID,
		GuestName:   "Ana",
		CheckIn:     date(2026, time.March, 12),
		CheckOut:    date(2026, time.March, 16),
		AgreedPrice: pen(480),
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", de.Code)

	missing := uuid.New()
	spaces.On("FindByID", mock.Anything, missing).Return(nil, nil)
	_, err = svc.CreateBooking(context.Background(), CreateBookingRequest{
		SpaceID:     missing,
		GuestName:   "Ana",
		CheckIn:     date(2026, time.March, 12),
		CheckOut:    date(2026, time.March, 16),
		AgreedPrice: pen(480),
	})
	require.Error(t, err)
	de, ok = shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func applyPaymentFixture(t *testing.T) (*BookingService, *rental.Booking, *billing.Charge, *MockBookingRepository, *MockChargeRepository) {
	t.Helper()
	svc, bookings, _, charges := newBookingFixture(t)

	booking, err := rental.NewBooking("AB-0001", uuid.New(), "Ana Torres", "",
		date(2026, time.March, 12), date(2026, time.March, 16), pen(480))
	require.NoError(t, err)
	charge, err := billing.NewCharge("P-0001", booking.SpaceID, billing.OwnerAirbnb,
		billing.ConceptAirbnb, booking.GuestName, nil, pen(480), pen(0),
		booking.CheckOut, nil, "", "")
	require.NoError(t, err)
	charge.BookingID = &booking.ID
	booking.LinkCharge(charge.ID)

	bookings.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	charges.On("FindByID", mock.Anything, charge.ID).Return(charge, nil)
	return svc, booking, charge, bookings, charges
}

func TestApplyPayment_LedgerIsSourceOfTruth(t *testing.T) {
	svc, booking, charge, bookings, charges := applyPaymentFixture(t)
	charges.On("Save", mock.Anything, charge).Return(nil)
	charges.On("SumPaidByBooking", mock.Anything, booking.ID).Return(pen(200), nil)
	bookings.On("Save", mock.Anything, booking).Return(nil)

	updated, err := svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
		BookingID: booking.ID,
		Amount:    pen(200),
		PaidDate:  date(2026, time.March, 12),
		Method:    billing.MethodCard,
	})
	require.NoError(t, err)

	assert.True(t, charge.PaidAmount.Equals(pen(200)))
	assert.Equal(t, billing.ChargeStatusPartial, charge.Status)
	assert.True(t, updated.PaidAmount.Equals(pen(200)), "booking mirrors the ledger")
	assert.True(t, updated.Balance.Equals(pen(280)))
	assert.Equal(t, rental.PaymentPartial, updated.PaymentStatus)
}

func TestApplyPayment_FullPaymentSettlesBoth(t *testing.T) {
	svc, booking, charge, bookings, charges := applyPaymentFixture(t)
	charges.On("Save", mock.Anything, charge).Return(nil)
	charges.On("SumPaidByBooking", mock.Anything, booking.ID).Return(pen(480), nil)
	bookings.On("Save", mock.Anything, booking).Return(nil)

	updated, err := svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
		BookingID: booking.ID,
		Amount:    pen(480),
		PaidDate:  date(2026, time.March, 16),
		Method:    billing.MethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, billing.ChargeStatusPaid, charge.Status)
	assert.Equal(t, rental.PaymentPaid, updated.PaymentStatus)
	assert.True(t, updated.Balance.IsZero())
}

func TestApplyPayment_ExceedsBalance(t *testing.T) {
	svc, booking, _, _, charges := applyPaymentFixture(t)

	_, err := svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
		BookingID: booking.ID,
		Amount:    pen(481),
		PaidDate:  date(2026, time.March, 12),
		Method:    billing.MethodCash,
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "EXCEEDS_BALANCE", de.Code)
	assert.Contains(t, de.Message, "480.00")
	charges.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestApplyPayment_CancelledBooking(t *testing.T) {
	svc, booking, _, _, _ := applyPaymentFixture(t)
	require.NoError(t, booking.Cancel())

	_, err := svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
		BookingID: booking.ID,
		Amount:    pen(100),
		PaidDate:  date(2026, time.March, 12),
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", de.Code)
}

func TestBookingLifecycleTransitions(t *testing.T) {
	svc, bookings, _, _ := newBookingFixture(t)
	booking, err := rental.NewBooking("AB-0001", uuid.New(), "Ana", "",
		date(2026, time.March, 12), date(2026, time.March, 16), pen(480))
	require.NoError(t, err)
	bookings.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookings.On("Save", mock.Anything, booking).Return(nil)

	started, err := svc.StartBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, rental.BookingInProgress, started.Status)

	completed, err := svc.CompleteBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, rental.BookingCompleted, completed.Status)

	_, err = svc.CancelBooking(context.Background(), booking.ID)
	assert.Error(t, err, "completed bookings cannot be cancelled")
}
