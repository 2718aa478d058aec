package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// LegacyLedgerEntry is a row of the historical payments table imported
// from the previous system. The application only reads it.
type LegacyLedgerEntry struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerKind string             `gorm:"size:20;not null;index:idx_legacy_owner_period,priority:1"`
	OwnerID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_legacy_owner_period,priority:2"`
	Period    valueobject.Period `gorm:"size:7;not null;index:idx_legacy_owner_period,priority:3"`
	Amount    valueobject.Money  `gorm:"type:decimal(18,2)"`
	PaidAt    time.Time
}

// TableName specifies the database table name
func (LegacyLedgerEntry) TableName() string {
	return "legacy_payments"
}

// UnionObligationChecker implements billing.ObligationChecker against
// both payment records: the legacy ledger and the charge ledger. Rent
// can be settled in either, so a hit in one is enough. Services and
// employees were never migrated to charges and only have legacy rows.
type UnionObligationChecker struct {
	db *gorm.DB
}

var _ billing.ObligationChecker = (*UnionObligationChecker)(nil)

// NewUnionObligationChecker creates a new UnionObligationChecker
func NewUnionObligationChecker(db *gorm.DB) *UnionObligationChecker {
	return &UnionObligationChecker{db: db}
}

// IsSatisfied reports whether the owner has a payment record for the period
func (c *UnionObligationChecker) IsSatisfied(ctx context.Context, kind billing.ObligationKind, ownerID uuid.UUID, period valueobject.Period) (bool, error) {
	set, err := c.SatisfiedSet(ctx, kind, []uuid.UUID{ownerID}, period)
	if err != nil {
		return false, err
	}
	return set[ownerID], nil
}

// SatisfiedSet reports, for each owner, whether a payment record exists
// for the period
func (c *UnionObligationChecker) SatisfiedSet(ctx context.Context, kind billing.ObligationKind, ownerIDs []uuid.UUID, period valueobject.Period) (map[uuid.UUID]bool, error) {
	satisfied := make(map[uuid.UUID]bool, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return satisfied, nil
	}
	db := dbFrom(ctx, c.db)

	var legacy []uuid.UUID
	err := db.Model(&LegacyLedgerEntry{}).
		Where("owner_kind = ? AND owner_id IN ? AND period = ?", string(kind), ownerIDs, period).
		Distinct().
		Pluck("owner_id", &legacy).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy ledger: %w", err)
	}
	for _, id := range legacy {
		satisfied[id] = true
	}

	if kind == billing.ObligationRent {
		var billed []uuid.UUID
		err := db.Model(&billing.Charge{}).
			Where("space_id IN ? AND period = ?", ownerIDs, period).
			Distinct().
			Pluck("space_id", &billed).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query charge ledger: %w", err)
		}
		for _, id := range billed {
			satisfied[id] = true
		}
	}
	return satisfied, nil
}
