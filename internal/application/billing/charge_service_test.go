package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
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

func newChargeService(repo *MockChargeRepository) *ChargeService {
	return NewChargeService(repo, newStubAllocator(), passthroughTx{}, newMemoryIdempotency())
}

func partialPrincipal(t *testing.T) *billing.Charge {
	t.Helper()
	c, err := billing.NewCharge("P-0001", uuid.New(), billing.OwnerRental,
		billing.ConceptRent, "", nil, pen(500), pen(300),
		date(2026, time.March, 15), nil, billing.MethodTransfer, "")
	require.NoError(t, err)
	return c
}

func TestRegisterCharge(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Charge")).Return(nil)

	charge, err := svc.RegisterCharge(context.Background(), RegisterChargeRequest{
		SpaceID:      uuid.New(),
		SpaceKind:    billing.OwnerRental,
		Concept:      billing.ConceptRent,
		AgreedAmount: pen(900),
		PaidAmount:   pen(900),
		DueDate:      date(2026, time.March, 5),
		Method:       billing.MethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "P-0001", charge.Code, "first code of the family")
	assert.Equal(t, billing.ChargeStatusPaid, charge.Status)
	repo.AssertExpectations(t)
}

func TestRegisterCharge_InvalidInputAllocatesNothingPersisted(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)

	_, err := svc.RegisterCharge(context.Background(), RegisterChargeRequest{
		SpaceID:      uuid.New(),
		SpaceKind:    billing.OwnerRental,
		Concept:      billing.ConceptRent,
		AgreedAmount: pen(0), // invalid
		PaidAmount:   pen(0),
		DueDate:      date(2026, time.March, 5),
	})
	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecordPaymentUpdate_NotFound(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.RecordPaymentUpdate(context.Background(), id, UpdateChargeRequest{})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestRecordPaymentUpdate(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("Save", mock.Anything, principal).Return(nil)

	newPaid := pen(450)
	updated, err := svc.RecordPaymentUpdate(context.Background(), principal.ID, UpdateChargeRequest{
		PaidAmount: &newPaid,
	})
	require.NoError(t, err)
	assert.True(t, updated.Difference.Equals(pen(-50)))
	repo.AssertExpectations(t)
}

func TestDeleteCharge_BlockedByInstallments(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("CountChildren", mock.Anything, principal.ID).Return(int64(2), nil)

	err := svc.DeleteCharge(context.Background(), principal.ID)
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", de.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteCharge(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("CountChildren", mock.Anything, principal.ID).Return(int64(0), nil)
	repo.On("Delete", mock.Anything, principal.ID).Return(nil)

	require.NoError(t, svc.DeleteCharge(context.Background(), principal.ID))
	repo.AssertExpectations(t)
}

func TestRegisterPartialPayment(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("FindChildren", mock.Anything, principal.ID).Return([]*billing.Charge{}, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Charge")).Return(nil)

	child, err := svc.RegisterPartialPayment(context.Background(), RegisterPartialRequest{
		PrincipalID: principal.ID,
		Amount:      pen(200),
		PaidDate:    date(2026, time.March, 20),
		Method:      billing.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "P-0001", child.Code, "stub allocator starts each family at one")
	assert.True(t, child.IsPartial)
	assert.Equal(t, billing.ChargeStatusPaid, principal.Status, "chain completed")
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestRegisterPartialPayment_IdempotentRetry(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("FindChildren", mock.Anything, principal.ID).Return([]*billing.Charge{}, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Charge")).Return(nil)

	req := RegisterPartialRequest{
		PrincipalID:    principal.ID,
		Amount:         pen(100),
		PaidDate:       date(2026, time.March, 20),
		Method:         billing.MethodCash,
		IdempotencyKey: "req-abc-123",
	}
	child, err := svc.RegisterPartialPayment(context.Background(), req)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, child.ID).Return(child, nil)
	again, err := svc.RegisterPartialPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, child.ID, again.ID, "retry returns the original installment")
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestRegisterPartialPayment_ExceedsBalance(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)
	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("FindChildren", mock.Anything, principal.ID).Return([]*billing.Charge{}, nil)

	_, err := svc.RegisterPartialPayment(context.Background(), RegisterPartialRequest{
		PrincipalID: principal.ID,
		Amount:      pen(201),
		PaidDate:    date(2026, time.March, 20),
		Method:      billing.MethodCash,
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "EXCEEDS_BALANCE", de.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSummarizeChain(t *testing.T) {
	repo := new(MockChargeRepository)
	svc := newChargeService(repo)
	principal := partialPrincipal(t)

	child, err := billing.NewCharge("P-0002", principal.SpaceID, principal.SpaceKind,
		principal.Concept, "", nil, pen(100), pen(100),
		principal.DueDate, nil, billing.MethodCash, "")
	require.NoError(t, err)
	child.IsPartial = true
	child.RelatedChargeID = &principal.ID

	repo.On("FindByID", mock.Anything, principal.ID).Return(principal, nil)
	repo.On("FindChildren", mock.Anything, principal.ID).Return([]*billing.Charge{child}, nil)

	summary, err := svc.SummarizeChain(context.Background(), principal.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalPaid.Equals(pen(400)))
	assert.True(t, summary.Balance.Equals(pen(100)))
	require.Len(t, summary.Payments, 2)
	assert.True(t, summary.Payments[0].Principal)
}
