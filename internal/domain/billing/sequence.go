package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/propman/backend/internal/domain/shared"
)

// CodeFamily identifies an independent document numbering sequence.
// Every financial record carries a human-readable code of the form
// "<PREFIX>-<zero-padded number>", e.g. "P-0042".
type CodeFamily string

const (
	FamilyCharge        CodeFamily = "P"   // charges (cobros)
	FamilyBooking       CodeFamily = "AB"  // short-term bookings
	FamilyInventoryItem CodeFamily = "INV" // inventory items
	FamilyStockMovement CodeFamily = "MOV" // stock movements
	FamilyTicket        CodeFamily = "TKT" // maintenance tickets
	FamilyRecurring     CodeFamily = "PR"  // recurring payment templates
)

// codePadWidth is the minimum digit width of the numeric suffix.
// Numbers past 9999 expand naturally without re-padding.
const codePadWidth = 4

// IsValid checks whether the family is a known sequence family
func (f CodeFamily) IsValid() bool {
	switch f {
	case FamilyCharge, FamilyBooking, FamilyInventoryItem,
		FamilyStockMovement, FamilyTicket, FamilyRecurring:
		return true
	}
	return false
}

// String returns the family prefix
func (f CodeFamily) String() string {
	return string(f)
}

// FormatCode renders the nth code of a family, e.g. FormatCode(FamilyCharge, 7) == "P-0007"
func FormatCode(family CodeFamily, n int) string {
	return fmt.Sprintf("%s-%0*d", family, codePadWidth, n)
}

// ParseCode extracts the numeric suffix of an existing code.
// A code that does not match "<family>-<int>" fails with FORMAT_ERROR:
// silently restarting a sequence would reissue already-used numbers.
func ParseCode(family CodeFamily, code string) (int, error) {
	prefix := string(family) + "-"
	if !strings.HasPrefix(code, prefix) {
		return 0, shared.NewDomainError("FORMAT_ERROR",
			fmt.Sprintf("code %q does not belong to family %q", code, family))
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
	if err != nil || n < 0 {
		return 0, shared.NewDomainError("FORMAT_ERROR",
			fmt.Sprintf("code %q has a non-numeric suffix", code))
	}
	return n, nil
}

// NextCode computes the code following maxExisting within a family.
// An empty maxExisting starts the sequence at "<PREFIX>-0001".
func NextCode(family CodeFamily, maxExisting string) (string, error) {
	if maxExisting == "" {
		return FormatCode(family, 1), nil
	}
	n, err := ParseCode(family, maxExisting)
	if err != nil {
		return "", err
	}
	return FormatCode(family, n+1), nil
}
