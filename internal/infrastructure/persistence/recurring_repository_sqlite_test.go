package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// openSQLiteDB opens a throwaway sqlite database for repository tests
// that need real SQL execution instead of a mocked driver.
func openSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "repo_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billing.RecurringTemplate{},
		&billing.RecurringInstance{},
	))
	return db
}

func newTestTemplate(t *testing.T, code, payee string, active bool) *billing.RecurringTemplate {
	t.Helper()

	template, err := billing.NewRecurringTemplate(
		code,
		payee,
		"",
		valueobject.NewMoneyPENFromFloat(150),
		false,
		billing.CadenceMonthly,
		10,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		nil,
	)
	require.NoError(t, err)
	if !active {
		template.Deactivate()
	}
	return template
}

func TestGormRecurringTemplateRepository_SaveAndFindByID(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)
	ctx := context.Background()

	template := newTestTemplate(t, "PR-0001", "Seguros La Posada", true)
	require.NoError(t, repo.Save(ctx, template))

	found, err := repo.FindByID(ctx, template.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "PR-0001", found.Code)
	assert.Equal(t, "Seguros La Posada", found.Payee)
	assert.Equal(t, billing.CadenceMonthly, found.Cadence)
	assert.Equal(t, 10, found.PayDay)
	assert.Equal(t, "150.00", found.Amount.StringFixed(2))
	assert.True(t, found.Active)

	// Save again with changes updates in place
	found.Payee = "Seguros La Posada SAC"
	found.Deactivate()
	require.NoError(t, repo.Save(ctx, found))

	updated, err := repo.FindByID(ctx, template.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Seguros La Posada SAC", updated.Payee)
	assert.False(t, updated.Active)
}

func TestGormRecurringTemplateRepository_InsertKeepsInactive(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)
	ctx := context.Background()

	// Deactivated before the first save: the INSERT must persist the
	// false value rather than a column default.
	template := newTestTemplate(t, "PR-0001", "Movistar", false)
	require.NoError(t, repo.Save(ctx, template))

	found, err := repo.FindByID(ctx, template.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)
}

func TestGormRecurringTemplateRepository_FindByIDNotFound(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGormRecurringTemplateRepository_FindActive(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestTemplate(t, "PR-0003", "Luz del Sur", true)))
	require.NoError(t, repo.Save(ctx, newTestTemplate(t, "PR-0001", "Sedapal", true)))
	require.NoError(t, repo.Save(ctx, newTestTemplate(t, "PR-0002", "Movistar", false)))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "PR-0001", active[0].Code)
	assert.Equal(t, "PR-0003", active[1].Code)
}

func TestGormRecurringTemplateRepository_FindAllPagination(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)
	ctx := context.Background()

	codes := []string{"PR-0001", "PR-0002", "PR-0003"}
	for _, code := range codes {
		require.NoError(t, repo.Save(ctx, newTestTemplate(t, code, "Payee "+code, true)))
	}

	page, total, err := repo.FindAll(ctx, shared.Filter{
		Page:     2,
		PageSize: 2,
		OrderBy:  "code",
		OrderDir: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "PR-0003", page[0].Code)
}

func TestGormRecurringTemplateRepository_Delete(t *testing.T) {
	db := openSQLiteDB(t)
	repo := NewGormRecurringTemplateRepository(db)
	ctx := context.Background()

	template := newTestTemplate(t, "PR-0001", "Sedapal", true)
	require.NoError(t, repo.Save(ctx, template))
	require.NoError(t, repo.Delete(ctx, template.ID))

	found, err := repo.FindByID(ctx, template.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func newTestInstance(t *testing.T, template *billing.RecurringTemplate, period valueobject.Period, dueDate time.Time) *billing.RecurringInstance {
	t.Helper()

	instance, err := billing.NewRecurringInstance(
		template,
		period,
		valueobject.NewMoneyPENFromFloat(150),
		dueDate,
		nil,
		billing.MethodTransfer,
		"",
	)
	require.NoError(t, err)
	return instance
}

func TestGormRecurringInstanceRepository_PeriodLookups(t *testing.T) {
	db := openSQLiteDB(t)
	templateRepo := NewGormRecurringTemplateRepository(db)
	repo := NewGormRecurringInstanceRepository(db)
	ctx := context.Background()

	template := newTestTemplate(t, "PR-0001", "Sedapal", true)
	require.NoError(t, templateRepo.Save(ctx, template))

	period := valueobject.NewPeriod(2026, time.March)
	dueDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	exists, err := repo.ExistsForPeriod(ctx, template.ID, period)
	require.NoError(t, err)
	assert.False(t, exists)

	instance := newTestInstance(t, template, period, dueDate)
	require.NoError(t, repo.Save(ctx, instance))

	exists, err = repo.ExistsForPeriod(ctx, template.ID, period)
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := repo.FindByTemplateAndPeriod(ctx, template.ID, period)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, instance.ID, found.ID)
	assert.Equal(t, period, found.Period)
	assert.Equal(t, "150.00", found.Amount.StringFixed(2))

	missing, err := repo.FindByTemplateAndPeriod(ctx, template.ID, valueobject.NewPeriod(2026, time.April))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormRecurringInstanceRepository_FindByPeriodOrdering(t *testing.T) {
	db := openSQLiteDB(t)
	templateRepo := NewGormRecurringTemplateRepository(db)
	repo := NewGormRecurringInstanceRepository(db)
	ctx := context.Background()

	first := newTestTemplate(t, "PR-0001", "Sedapal", true)
	second := newTestTemplate(t, "PR-0002", "Luz del Sur", true)
	require.NoError(t, templateRepo.Save(ctx, first))
	require.NoError(t, templateRepo.Save(ctx, second))

	period := valueobject.NewPeriod(2026, time.March)
	late := newTestInstance(t, first, period, time.Date(2026, time.March, 25, 0, 0, 0, 0, time.UTC))
	early := newTestInstance(t, second, period, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, late))
	require.NoError(t, repo.Save(ctx, early))

	instances, err := repo.FindByPeriod(ctx, period)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, early.ID, instances[0].ID)
	assert.Equal(t, late.ID, instances[1].ID)
}
