package rental

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// SpaceService implements rentable unit use cases
type SpaceService struct {
	spaceRepo rental.SpaceRepository
}

// NewSpaceService creates a new SpaceService
func NewSpaceService(spaceRepo rental.SpaceRepository) *SpaceService {
	return &SpaceService{spaceRepo: spaceRepo}
}

// CreateSpaceRequest represents a request to register a space
type CreateSpaceRequest struct {
	Label          string
	Kind           rental.SpaceKind
	PayerName      string
	PayDay         int
	MonthlyAmount  valueobject.Money
	DefaultConcept string
}

// CreateSpace registers a rentable unit
func (s *SpaceService) CreateSpace(ctx context.Context, req CreateSpaceRequest) (*rental.Space, error) {
	space, err := rental.NewSpace(req.Label, req.Kind, req.PayerName,
		req.PayDay, req.MonthlyAmount, req.DefaultConcept)
	if err != nil {
		return nil, err
	}
	if err := s.spaceRepo.Save(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// GetSpace loads a single space
func (s *SpaceService) GetSpace(ctx context.Context, spaceID uuid.UUID) (*rental.Space, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load space: %w", err)
	}
	if space == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("space %s not found", spaceID))
	}
	return space, nil
}

// ListSpaces returns spaces matching the filter with a total count
func (s *SpaceService) ListSpaces(ctx context.Context, filter rental.SpaceFilter) (*shared.Paginated[*rental.Space], error) {
	spaces, total, err := s.spaceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	page := shared.NewPaginated(spaces, total, filter.Page, filter.PageSize)
	return &page, nil
}

// AssignPayer sets the monthly payer and terms of a space
func (s *SpaceService) AssignPayer(ctx context.Context, spaceID uuid.UUID, name string, payDay int, monthlyAmount valueobject.Money) (*rental.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := space.AssignPayer(name, payDay, monthlyAmount); err != nil {
		return nil, err
	}
	if err := s.spaceRepo.Save(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// ReleasePayer clears the payer of a space
func (s *SpaceService) ReleasePayer(ctx context.Context, spaceID uuid.UUID) (*rental.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	space.ReleasePayer()
	if err := s.spaceRepo.Save(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// SetSpaceActive activates or deactivates a space
func (s *SpaceService) SetSpaceActive(ctx context.Context, spaceID uuid.UUID, active bool) (*rental.Space, error) {
	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if active {
		space.Activate()
	} else {
		space.Deactivate()
	}
	if err := s.spaceRepo.Save(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}
