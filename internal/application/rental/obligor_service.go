package rental

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ObligorService manages the monthly obligors the calendar watches:
// service accounts and salaried employees
type ObligorService struct {
	serviceRepo  rental.ServiceAccountRepository
	employeeRepo rental.EmployeeRepository
}

// NewObligorService creates a new ObligorService
func NewObligorService(
	serviceRepo rental.ServiceAccountRepository,
	employeeRepo rental.EmployeeRepository,
) *ObligorService {
	return &ObligorService{
		serviceRepo:  serviceRepo,
		employeeRepo: employeeRepo,
	}
}

// CreateServiceAccount registers a monthly service obligation
func (s *ObligorService) CreateServiceAccount(ctx context.Context, name, provider string, payDay int, amount valueobject.Money) (*rental.ServiceAccount, error) {
	account, err := rental.NewServiceAccount(name, provider, payDay, amount)
	if err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetServiceAccount loads a single service account
func (s *ObligorService) GetServiceAccount(ctx context.Context, id uuid.UUID) (*rental.ServiceAccount, error) {
	account, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("service account %s not found", id))
	}
	return account, nil
}

// ListActiveServiceAccounts returns every active service account
func (s *ObligorService) ListActiveServiceAccounts(ctx context.Context) ([]*rental.ServiceAccount, error) {
	return s.serviceRepo.FindActive(ctx)
}

// CreateEmployee registers a payroll obligation
func (s *ObligorService) CreateEmployee(ctx context.Context, name, role string, payDay int, salary valueobject.Money) (*rental.Employee, error) {
	employee, err := rental.NewEmployee(name, role, payDay, salary)
	if err != nil {
		return nil, err
	}
	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// GetEmployee loads a single employee
func (s *ObligorService) GetEmployee(ctx context.Context, id uuid.UUID) (*rental.Employee, error) {
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if employee == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("employee %s not found", id))
	}
	return employee, nil
}

// ListActiveEmployees returns every active employee
func (s *ObligorService) ListActiveEmployees(ctx context.Context) ([]*rental.Employee, error) {
	return s.employeeRepo.FindActive(ctx)
}
