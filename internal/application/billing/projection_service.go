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

// ProjectionService implements recurring obligation use cases: template
// management, month projection and instance materialization.
type ProjectionService struct {
	templateRepo billing.RecurringTemplateRepository
	instanceRepo billing.RecurringInstanceRepository
	allocator    billing.SequenceAllocator
	txManager    shared.TxManager
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(
	templateRepo billing.RecurringTemplateRepository,
	instanceRepo billing.RecurringInstanceRepository,
	allocator billing.SequenceAllocator,
	txManager shared.TxManager,
) *ProjectionService {
	return &ProjectionService{
		templateRepo: templateRepo,
		instanceRepo: instanceRepo,
		allocator:    allocator,
		txManager:    txManager,
	}
}

// CreateTemplateRequest represents a request to create a template
type CreateTemplateRequest struct {
	Payee     string
	Detail    string
	Amount    valueobject.Money
	Variable  bool
	Cadence   billing.Cadence
	PayDay    int
	StartDate time.Time
	EndDate   *time.Time
}

// CreateTemplate allocates a PR code and persists a recurring template
func (s *ProjectionService) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*billing.RecurringTemplate, error) {
	var template *billing.RecurringTemplate
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		code, err := s.allocator.Next(ctx, billing.FamilyRecurring)
		if err != nil {
			return fmt.Errorf("failed to allocate template code: %w", err)
		}
		template, err = billing.NewRecurringTemplate(code, req.Payee, req.Detail,
			req.Amount, req.Variable, req.Cadence, req.PayDay, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		return s.templateRepo.Save(ctx, template)
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

// GetTemplate loads a single template
func (s *ProjectionService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*billing.RecurringTemplate, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("template %s not found", templateID))
	}
	return template, nil
}

// ListTemplates returns templates with a total count
func (s *ProjectionService) ListTemplates(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.RecurringTemplate], error) {
	templates, total, err := s.templateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	page := shared.NewPaginated(templates, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SetTemplateActive activates or deactivates a template
func (s *ProjectionService) SetTemplateActive(ctx context.Context, templateID uuid.UUID, active bool) (*billing.RecurringTemplate, error) {
	template, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if active {
		template.Activate()
	} else {
		template.Deactivate()
	}
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// ProjectRecurring computes the virtual occurrence of one template for a
// month. It returns nil when nothing is due or an instance is already
// materialized; recomputing it never mutates anything.
func (s *ProjectionService) ProjectRecurring(ctx context.Context, templateID uuid.UUID, year int, month time.Month) (*billing.VirtualInstance, error) {
	template, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	period := valueobject.NewPeriod(year, month)
	generated, err := s.instanceRepo.ExistsForPeriod(ctx, templateID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to check generated instances: %w", err)
	}
	return billing.Project(template, year, month, generated), nil
}

// ProjectMonth projects every active template for a month
func (s *ProjectionService) ProjectMonth(ctx context.Context, year int, month time.Month) ([]billing.VirtualInstance, error) {
	templates, err := s.templateRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active templates: %w", err)
	}
	period := valueobject.NewPeriod(year, month)
	projections := make([]billing.VirtualInstance, 0, len(templates))
	for _, template := range templates {
		generated, err := s.instanceRepo.ExistsForPeriod(ctx, template.ID, period)
		if err != nil {
			return nil, fmt.Errorf("failed to check generated instances: %w", err)
		}
		if vi := billing.Project(template, year, month, generated); vi != nil {
			projections = append(projections, *vi)
		}
	}
	return projections, nil
}

// PendingInstances returns the instances materialized for a month whose
// payment has not been recorded yet, shaped as calendar entries. The
// template is resolved per instance so deactivated templates still show
// their outstanding occurrences.
func (s *ProjectionService) PendingInstances(ctx context.Context, year int, month time.Month) ([]billing.VirtualInstance, error) {
	period := valueobject.NewPeriod(year, month)
	instances, err := s.instanceRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load instances for period: %w", err)
	}
	pending := make([]billing.VirtualInstance, 0, len(instances))
	for _, inst := range instances {
		if inst.PaidDate != nil {
			continue
		}
		vi := billing.VirtualInstance{
			TemplateID: inst.TemplateID,
			Amount:     inst.Amount,
			DueDate:    inst.DueDate,
			Period:     inst.Period,
		}
		template, err := s.templateRepo.FindByID(ctx, inst.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to load template: %w", err)
		}
		if template != nil {
			vi.TemplateCode = template.Code
			vi.Payee = template.Payee
			vi.Detail = template.Detail
			vi.Variable = template.Variable
		}
		pending = append(pending, vi)
	}
	return pending, nil
}

// MaterializeRequest represents a request to persist a projected instance
type MaterializeRequest struct {
	TemplateID uuid.UUID
	Year       int
	Month      time.Month
	Amount     *valueobject.Money // required for variable templates
	PaidDate   *time.Time
	Method     billing.PaymentMethod
	Reference  string
}

// MaterializeInstance persists the occurrence of a template for one
// period, at most once per (template, period)
func (s *ProjectionService) MaterializeInstance(ctx context.Context, req MaterializeRequest) (*billing.RecurringInstance, error) {
	var instance *billing.RecurringInstance
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		template, err := s.GetTemplate(ctx, req.TemplateID)
		if err != nil {
			return err
		}
		period := valueobject.NewPeriod(req.Year, req.Month)
		existing, err := s.instanceRepo.FindByTemplateAndPeriod(ctx, req.TemplateID, period)
		if err != nil {
			return fmt.Errorf("failed to check generated instances: %w", err)
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS",
				fmt.Sprintf("template %s already has an instance for %s", template.Code, period))
		}
		due := template.DueDateFor(req.Year, req.Month)
		if due == nil {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("template %s is not due in %s", template.Code, period))
		}
		amount := template.Amount
		if template.Variable {
			if req.Amount == nil {
				return shared.NewDomainError("INVALID_INPUT",
					fmt.Sprintf("template %s has a variable amount; the real figure is required", template.Code))
			}
			amount = *req.Amount
		} else if req.Amount != nil {
			amount = *req.Amount
		}
		instance, err = billing.NewRecurringInstance(template, period, amount,
			*due, req.PaidDate, req.Method, req.Reference)
		if err != nil {
			return err
		}
		return s.instanceRepo.Save(ctx, instance)
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}
