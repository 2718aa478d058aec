package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// IdempotencyStore remembers the outcome of mutating requests keyed by a
// client-supplied token, so a retried request returns the original
// record instead of collecting money twice.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// defaultIdempotencyTTL is how long a processed request key stays recognizable
const defaultIdempotencyTTL = 24 * time.Hour

// ChargeService implements the charge ledger use cases
type ChargeService struct {
	chargeRepo     billing.ChargeRepository
	allocator      billing.SequenceAllocator
	chainSvc       *billing.ChainService
	txManager      shared.TxManager
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	chargeRepo billing.ChargeRepository,
	allocator billing.SequenceAllocator,
	txManager shared.TxManager,
	idempotency IdempotencyStore,
) *ChargeService {
	return &ChargeService{
		chargeRepo:     chargeRepo,
		allocator:      allocator,
		chainSvc:       billing.NewChainService(),
		txManager:      txManager,
		idempotency:    idempotency,
		idempotencyTTL: defaultIdempotencyTTL,
	}
}

// SetIdempotencyTTL overrides how long processed request keys are kept
func (s *ChargeService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// RegisterChargeRequest represents a request to register a charge
type RegisterChargeRequest struct {
	SpaceID      uuid.UUID
	SpaceKind    billing.OwnerKind
	BookingID    *uuid.UUID
	Concept      billing.ChargeConcept
	ConceptLabel string
	Period       *valueobject.Period
	AgreedAmount valueobject.Money
	PaidAmount   valueobject.Money
	DueDate      time.Time
	PaidDate     *time.Time
	Method       billing.PaymentMethod
	Reference    string
}

// RegisterCharge allocates a code and persists a new charge. Code
// allocation and the insert share one transaction so a failed insert
// never burns a code.
func (s *ChargeService) RegisterCharge(ctx context.Context, req RegisterChargeRequest) (*billing.Charge, error) {
	var charge *billing.Charge
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		code, err := s.allocator.Next(ctx, billing.FamilyCharge)
		if err != nil {
			return fmt.Errorf("failed to allocate charge code: %w", err)
		}
		charge, err = billing.NewCharge(
			code, req.SpaceID, req.SpaceKind,
			req.Concept, req.ConceptLabel, req.Period,
			req.AgreedAmount, req.PaidAmount,
			req.DueDate, req.PaidDate,
			req.Method, req.Reference,
		)
		if err != nil {
			return err
		}
		charge.BookingID = req.BookingID
		return s.chargeRepo.Save(ctx, charge)
	})
	if err != nil {
		return nil, err
	}
	return charge, nil
}

// UpdateChargeRequest represents a request to amend a charge
type UpdateChargeRequest struct {
	AgreedAmount *valueobject.Money
	PaidAmount   *valueobject.Money
	DueDate      *time.Time
	PaidDate     *time.Time
	Method       *billing.PaymentMethod
	Reference    *string
	Status       *billing.ChargeStatus
	ConceptLabel *string
}

// RecordPaymentUpdate amends a charge's amounts, dates or status and
// recomputes its difference
func (s *ChargeService) RecordPaymentUpdate(ctx context.Context, chargeID uuid.UUID, req UpdateChargeRequest) (*billing.Charge, error) {
	var charge *billing.Charge
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		charge, err = s.chargeRepo.FindByID(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("charge %s not found", chargeID))
		}
		if err := charge.ApplyPaymentUpdate(billing.PaymentUpdate{
			AgreedAmount:  req.AgreedAmount,
			PaidAmount:    req.PaidAmount,
			DueDate:       req.DueDate,
			PaidDate:      req.PaidDate,
			PaymentMethod: req.Method,
			Reference:     req.Reference,
			Status:        req.Status,
			ConceptLabel:  req.ConceptLabel,
		}); err != nil {
			return err
		}
		return s.chargeRepo.Save(ctx, charge)
	})
	if err != nil {
		return nil, err
	}
	return charge, nil
}

// GetCharge loads a single charge
func (s *ChargeService) GetCharge(ctx context.Context, chargeID uuid.UUID) (*billing.Charge, error) {
	charge, err := s.chargeRepo.FindByID(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("charge %s not found", chargeID))
	}
	return charge, nil
}

// ListCharges returns charges matching the filter with a total count
func (s *ChargeService) ListCharges(ctx context.Context, filter billing.ChargeFilter) (*shared.Paginated[*billing.Charge], error) {
	charges, total, err := s.chargeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	page := shared.NewPaginated(charges, total, filter.Page, filter.PageSize)
	return &page, nil
}

// DeleteCharge removes a charge that has no installment children
func (s *ChargeService) DeleteCharge(ctx context.Context, chargeID uuid.UUID) error {
	return s.txManager.Do(ctx, func(ctx context.Context) error {
		charge, err := s.chargeRepo.FindByID(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("charge %s not found", chargeID))
		}
		children, err := s.chargeRepo.CountChildren(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to count installments: %w", err)
		}
		if children > 0 {
			return shared.NewDomainError("CONFLICT",
				fmt.Sprintf("charge %s has %d partial payment(s) and cannot be deleted", charge.Code, children))
		}
		return s.chargeRepo.Delete(ctx, chargeID)
	})
}

// RegisterPartialRequest represents a request to add an installment
type RegisterPartialRequest struct {
	PrincipalID    uuid.UUID
	Amount         valueobject.Money
	PaidDate       time.Time
	Method         billing.PaymentMethod
	Reference      string
	IdempotencyKey string
}

// RegisterPartialPayment attaches an installment to a PARTIAL principal
// inside one transaction: code allocation, the child insert and the
// principal's status flip commit together or not at all.
func (s *ChargeService) RegisterPartialPayment(ctx context.Context, req RegisterPartialRequest) (*billing.Charge, error) {
	if req.IdempotencyKey != "" && s.idempotency != nil {
		if existing, ok, err := s.idempotency.Get(ctx, req.IdempotencyKey); err == nil && ok {
			id, err := uuid.Parse(existing)
			if err == nil {
				return s.GetCharge(ctx, id)
			}
		}
	}

	var child *billing.Charge
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		principal, err := s.chargeRepo.FindByID(ctx, req.PrincipalID)
		if err != nil {
			return fmt.Errorf("failed to load principal charge: %w", err)
		}
		if principal == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("charge %s not found", req.PrincipalID))
		}
		children, err := s.chargeRepo.FindChildren(ctx, req.PrincipalID)
		if err != nil {
			return fmt.Errorf("failed to load installments: %w", err)
		}
		code, err := s.allocator.Next(ctx, billing.FamilyCharge)
		if err != nil {
			return fmt.Errorf("failed to allocate installment code: %w", err)
		}
		child, err = s.chainSvc.RegisterPartial(principal, children, code,
			req.Amount, req.PaidDate, req.Method, req.Reference)
		if err != nil {
			return err
		}
		if err := s.chargeRepo.Save(ctx, child); err != nil {
			return err
		}
		return s.chargeRepo.Save(ctx, principal)
	})
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		_ = s.idempotency.Set(ctx, req.IdempotencyKey, child.ID.String(), s.idempotencyTTL)
	}
	return child, nil
}

// SummarizeChain consolidates a principal and its installments
func (s *ChargeService) SummarizeChain(ctx context.Context, principalID uuid.UUID) (*billing.ChainSummary, error) {
	principal, err := s.chargeRepo.FindByID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load principal charge: %w", err)
	}
	if principal == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("charge %s not found", principalID))
	}
	children, err := s.chargeRepo.FindChildren(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}
	summary := s.chainSvc.SummarizeChain(principal, children)
	return &summary, nil
}
