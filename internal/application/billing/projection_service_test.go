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

func newProjectionService(templates *MockTemplateRepository, instances *MockInstanceRepository) *ProjectionService {
	return NewProjectionService(templates, instances, newStubAllocator(), passthroughTx{})
}

func monthlyTemplate(t *testing.T) *billing.RecurringTemplate {
	t.Helper()
	tpl, err := billing.NewRecurringTemplate("PR-0001", "Seguro Rimac", "",
		pen(120), false, billing.CadenceMonthly, 15, date(2025, time.January, 1), nil)
	require.NoError(t, err)
	return tpl
}

func TestCreateTemplate(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	templates.On("Save", mock.Anything, mock.AnythingOfType("*billing.RecurringTemplate")).Return(nil)

	tpl, err := svc.CreateTemplate(context.Background(), CreateTemplateRequest{
		Payee:     "Seguro Rimac",
		Amount:    pen(120),
		Cadence:   billing.CadenceMonthly,
		PayDay:    15,
		StartDate: date(2025, time.January, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "PR-0001", tpl.Code)
	templates.AssertExpectations(t)
}

func TestProjectRecurring(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	tpl := monthlyTemplate(t)
	period := valueobject.NewPeriod(2025, time.November)

	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)
	instances.On("ExistsForPeriod", mock.Anything, tpl.ID, period).Return(false, nil).Once()

	vi, err := svc.ProjectRecurring(context.Background(), tpl.ID, 2025, time.November)
	require.NoError(t, err)
	require.NotNil(t, vi)
	assert.Equal(t, date(2025, time.November, 15), vi.DueDate)

	// identical until something is materialized
	instances.On("ExistsForPeriod", mock.Anything, tpl.ID, period).Return(false, nil).Once()
	again, err := svc.ProjectRecurring(context.Background(), tpl.ID, 2025, time.November)
	require.NoError(t, err)
	assert.Equal(t, vi, again)

	// nothing once a persisted instance exists
	instances.On("ExistsForPeriod", mock.Anything, tpl.ID, period).Return(true, nil).Once()
	gone, err := svc.ProjectRecurring(context.Background(), tpl.ID, 2025, time.November)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestProjectRecurring_TemplateNotFound(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	id := uuid.New()
	templates.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.ProjectRecurring(context.Background(), id, 2025, time.November)
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestProjectMonth(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)

	due := monthlyTemplate(t)
	weekly, err := billing.NewRecurringTemplate("PR-0002", "Jardinero", "",
		pen(80), false, billing.CadenceWeekly, 5, date(2025, time.January, 1), nil)
	require.NoError(t, err)

	templates.On("FindActive", mock.Anything).Return([]*billing.RecurringTemplate{due, weekly}, nil)
	instances.On("ExistsForPeriod", mock.Anything, due.ID, mock.Anything).Return(false, nil)
	instances.On("ExistsForPeriod", mock.Anything, weekly.ID, mock.Anything).Return(false, nil)

	projections, err := svc.ProjectMonth(context.Background(), 2025, time.November)
	require.NoError(t, err)
	require.Len(t, projections, 1, "weekly cadence projects nothing at month granularity")
	assert.Equal(t, due.ID, projections[0].TemplateID)
}

func TestPendingInstances(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	tpl := monthlyTemplate(t)
	period := valueobject.NewPeriod(2025, time.November)

	unpaid, err := billing.NewRecurringInstance(tpl, period, pen(120),
		date(2025, time.November, 15), nil, billing.MethodTransfer, "")
	require.NoError(t, err)
	settledDate := date(2025, time.November, 16)
	settled, err := billing.NewRecurringInstance(tpl, period, pen(80),
		date(2025, time.November, 16), &settledDate, billing.MethodCash, "")
	require.NoError(t, err)

	instances.On("FindByPeriod", mock.Anything, period).
		Return([]*billing.RecurringInstance{unpaid, settled}, nil)
	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)

	pending, err := svc.PendingInstances(context.Background(), 2025, time.November)
	require.NoError(t, err)
	require.Len(t, pending, 1, "paid instances are settled obligations")
	assert.Equal(t, tpl.ID, pending[0].TemplateID)
	assert.Equal(t, "PR-0001", pending[0].TemplateCode)
	assert.Equal(t, "Seguro Rimac", pending[0].Payee)
	assert.True(t, pending[0].Amount.Equals(pen(120)))
	assert.False(t, pending[0].Calculated, "a persisted amount is not a projection")
}

func TestMaterializeInstance(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	tpl := monthlyTemplate(t)
	period := valueobject.NewPeriod(2025, time.November)

	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)
	instances.On("FindByTemplateAndPeriod", mock.Anything, tpl.ID, period).Return(nil, nil)
	instances.On("Save", mock.Anything, mock.AnythingOfType("*billing.RecurringInstance")).Return(nil)

	paid := date(2025, time.November, 14)
	inst, err := svc.MaterializeInstance(context.Background(), MaterializeRequest{
		TemplateID: tpl.ID,
		Year:       2025,
		Month:      time.November,
		PaidDate:   &paid,
		Method:     billing.MethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, period, inst.Period)
	assert.True(t, inst.Amount.Equals(pen(120)), "fixed templates use the template amount")
	instances.AssertExpectations(t)
}

func TestMaterializeInstance_DuplicatePeriod(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)
	tpl := monthlyTemplate(t)
	period := valueobject.NewPeriod(2025, time.November)

	existing, err := billing.NewRecurringInstance(tpl, period, pen(120),
		date(2025, time.November, 15), nil, billing.MethodCash, "")
	require.NoError(t, err)
	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)
	instances.On("FindByTemplateAndPeriod", mock.Anything, tpl.ID, period).Return(existing, nil)

	_, err = svc.MaterializeInstance(context.Background(), MaterializeRequest{
		TemplateID: tpl.ID,
		Year:       2025,
		Month:      time.November,
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	instances.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMaterializeInstance_VariableRequiresAmount(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)

	tpl, err := billing.NewRecurringTemplate("PR-0003", "Luz del Sur", "",
		pen(0), true, billing.CadenceMonthly, 20, date(2025, time.January, 1), nil)
	require.NoError(t, err)
	period := valueobject.NewPeriod(2025, time.November)

	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)
	instances.On("FindByTemplateAndPeriod", mock.Anything, tpl.ID, period).Return(nil, nil)

	_, err = svc.MaterializeInstance(context.Background(), MaterializeRequest{
		TemplateID: tpl.ID,
		Year:       2025,
		Month:      time.November,
	})
	require.Error(t, err)

	instances.On("Save", mock.Anything, mock.AnythingOfType("*billing.RecurringInstance")).Return(nil)
	real := pen(87.40)
	inst, err := svc.MaterializeInstance(context.Background(), MaterializeRequest{
		TemplateID: tpl.ID,
		Year:       2025,
		Month:      time.November,
		Amount:     &real,
	})
	require.NoError(t, err)
	assert.True(t, inst.Amount.Equals(real))
}

func TestMaterializeInstance_NotDueThatMonth(t *testing.T) {
	templates := new(MockTemplateRepository)
	instances := new(MockInstanceRepository)
	svc := newProjectionService(templates, instances)

	tpl, err := billing.NewRecurringTemplate("PR-0004", "SUNAT", "",
		pen(900), false, billing.CadenceAnnual, 1, date(2025, time.April, 10), nil)
	require.NoError(t, err)

	templates.On("FindByID", mock.Anything, tpl.ID).Return(tpl, nil)
	instances.On("FindByTemplateAndPeriod", mock.Anything, tpl.ID, mock.Anything).Return(nil, nil)

	_, err = svc.MaterializeInstance(context.Background(), MaterializeRequest{
		TemplateID: tpl.ID,
		Year:       2025,
		Month:      time.May,
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", de.Code)
}
