package billing

import (
	"context"
	"testing"
	"time"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func occupiedSpace(t *testing.T, label string, payDay int) *rental.Space {
	t.Helper()
	sp, err := rental.NewSpace(label, rental.SpaceRental, "Inquilino "+label, payDay, pen(900), "")
	require.NoError(t, err)
	return sp
}

func TestReconcileService_ReconcileMonth(t *testing.T) {
	charges := new(MockChargeRepository)
	spaces := new(MockSpaceRepository)
	svc := NewReconcileService(charges, spaces)

	billed := occupiedSpace(t, "Dpto 101", 5)
	unbilled := occupiedSpace(t, "Dpto 102", 10)
	period := valueobject.NewPeriod(2026, time.March)

	real, err := billing.NewCharge("P-0005", billed.ID, billing.OwnerRental,
		billing.ConceptRent, "", &period, pen(900), pen(900),
		date(2026, time.March, 5), nil, billing.MethodTransfer, "")
	require.NoError(t, err)

	charges.On("FindDueBetween", mock.Anything, period.Start(), period.End()).
		Return([]*billing.Charge{real}, nil)
	spaces.On("FindAll", mock.Anything, mock.Anything).
		Return([]*rental.Space{billed, unbilled}, int64(2), nil)
	charges.On("ExistsForSpacePeriod", mock.Anything, billed.ID, period).Return(true, nil)
	charges.On("ExistsForSpacePeriod", mock.Anything, unbilled.ID, period).Return(false, nil)

	bills, err := svc.ReconcileMonth(context.Background(), 2026, time.March)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.False(t, bills[0].Virtual)
	assert.Equal(t, "Dpto 101", bills[0].SpaceLabel)
	assert.True(t, bills[1].Virtual)
	assert.Equal(t, unbilled.ID, bills[1].SpaceID)
}

func TestReconcileService_PeriodChargeDueElsewhereStillCovers(t *testing.T) {
	charges := new(MockChargeRepository)
	spaces := new(MockSpaceRepository)
	svc := NewReconcileService(charges, spaces)

	sp := occupiedSpace(t, "Dpto 201", 5)
	period := valueobject.NewPeriod(2026, time.March)

	// the March charge was registered with an April due date, so it is
	// not among the month's charges but still covers the period
	charges.On("FindDueBetween", mock.Anything, period.Start(), period.End()).
		Return([]*billing.Charge{}, nil)
	spaces.On("FindAll", mock.Anything, mock.Anything).
		Return([]*rental.Space{sp}, int64(1), nil)
	charges.On("ExistsForSpacePeriod", mock.Anything, sp.ID, period).Return(true, nil)

	bills, err := svc.ReconcileMonth(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.Empty(t, bills)
}
