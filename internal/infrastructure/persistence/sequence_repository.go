package persistence

import (
	"context"
	"fmt"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// SequenceCounter is the per-family counter row backing code allocation
type SequenceCounter struct {
	Family string `gorm:"primaryKey;size:10"`
	Value  int    `gorm:"not null"`
}

// TableName specifies the database table name
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// legacySeedSources maps a family to the table still holding codes
// issued before the counter rows existed. Families without history
// start at zero.
var legacySeedSources = map[billing.CodeFamily]string{
	billing.FamilyCharge:    "charges",
	billing.FamilyBooking:   "bookings",
	billing.FamilyRecurring: "recurring_templates",
}

// GormSequenceAllocator implements billing.SequenceAllocator with an
// atomically incremented counter row per family. Two concurrent callers
// serialize on the row update and never receive the same code.
type GormSequenceAllocator struct {
	db *gorm.DB
}

var _ billing.SequenceAllocator = (*GormSequenceAllocator)(nil)

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next returns the next code of a family
func (a *GormSequenceAllocator) Next(ctx context.Context, family billing.CodeFamily) (string, error) {
	if !family.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown sequence family %q", family))
	}
	db := dbFrom(ctx, a.db)

	if err := a.ensureSeeded(db, family); err != nil {
		return "", err
	}

	var value int
	err := db.Raw(
		`INSERT INTO sequence_counters (family, value) VALUES (?, 1)
		 ON CONFLICT (family) DO UPDATE SET value = sequence_counters.value + 1
		 RETURNING value`,
		family.String(),
	).Scan(&value).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", family, err)
	}
	return billing.FormatCode(family, value), nil
}

// ensureSeeded creates the counter row from the highest code already
// issued in the legacy table. A code that cannot be parsed aborts the
// allocation: restarting the sequence would reissue used numbers.
func (a *GormSequenceAllocator) ensureSeeded(db *gorm.DB, family billing.CodeFamily) error {
	var count int64
	if err := db.Model(&SequenceCounter{}).
		Where("family = ?", family.String()).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check sequence %s: %w", family, err)
	}
	if count > 0 {
		return nil
	}

	seed, err := a.legacyMax(db, family)
	if err != nil {
		return err
	}
	err = db.Exec(
		`INSERT INTO sequence_counters (family, value) VALUES (?, ?)
		 ON CONFLICT (family) DO NOTHING`,
		family.String(), seed,
	).Error
	if err != nil {
		return fmt.Errorf("failed to seed sequence %s: %w", family, err)
	}
	return nil
}

// legacyMax scans the highest existing code of a family. Zero-padded
// codes order correctly by length then value.
func (a *GormSequenceAllocator) legacyMax(db *gorm.DB, family billing.CodeFamily) (int, error) {
	table, ok := legacySeedSources[family]
	if !ok {
		return 0, nil
	}
	var code string
	err := db.Table(table).
		Select("code").
		Where("code LIKE ?", family.String()+"-%").
		Order("length(code) DESC, code DESC").
		Limit(1).
		Scan(&code).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s codes: %w", table, err)
	}
	if code == "" {
		return 0, nil
	}
	return billing.ParseCode(family, code)
}
