package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apprental "github.com/propman/backend/internal/application/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ObligorHandler handles service account and employee API endpoints
type ObligorHandler struct {
	BaseHandler
	obligorService *apprental.ObligorService
}

// NewObligorHandler creates a new ObligorHandler
func NewObligorHandler(obligorService *apprental.ObligorService) *ObligorHandler {
	return &ObligorHandler{obligorService: obligorService}
}

// RegisterRoutes registers obligor routes
func (h *ObligorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/rental/services")
	{
		services.POST("", h.CreateServiceAccount)
		services.GET("", h.ListServiceAccounts)
		services.GET("/:id", h.GetServiceAccount)
	}
	employees := rg.Group("/rental/employees")
	{
		employees.POST("", h.CreateEmployee)
		employees.GET("", h.ListEmployees)
		employees.GET("/:id", h.GetEmployee)
	}
}

// CreateServiceAccountRequest represents a monthly service obligation
type CreateServiceAccountRequest struct {
	Name          string  `json:"name" binding:"required,max=120"`
	Provider      string  `json:"provider" binding:"max=120"`
	PayDay        int     `json:"pay_day" binding:"required,min=1,max=31"`
	MonthlyAmount float64 `json:"monthly_amount" binding:"required,gt=0"`
}

// CreateServiceAccount registers a recurring service bill to watch
func (h *ObligorHandler) CreateServiceAccount(c *gin.Context) {
	var req CreateServiceAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	account, err := h.obligorService.CreateServiceAccount(c.Request.Context(),
		req.Name, req.Provider, req.PayDay, valueobject.NewMoneyPENFromFloat(req.MonthlyAmount))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, account)
}

// ListServiceAccounts returns every active service account
func (h *ObligorHandler) ListServiceAccounts(c *gin.Context) {
	accounts, err := h.obligorService.ListActiveServiceAccounts(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, accounts)
}

// GetServiceAccount returns a single service account
func (h *ObligorHandler) GetServiceAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid service account ID format")
		return
	}
	account, err := h.obligorService.GetServiceAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// CreateEmployeeRequest represents a payroll obligation
type CreateEmployeeRequest struct {
	Name   string  `json:"name" binding:"required,max=120"`
	Role   string  `json:"role" binding:"max=80"`
	PayDay int     `json:"pay_day" binding:"required,min=1,max=31"`
	Salary float64 `json:"salary" binding:"required,gt=0"`
}

// CreateEmployee registers a salaried employee to watch
func (h *ObligorHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	employee, err := h.obligorService.CreateEmployee(c.Request.Context(),
		req.Name, req.Role, req.PayDay, valueobject.NewMoneyPENFromFloat(req.Salary))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, employee)
}

// ListEmployees returns every active employee
func (h *ObligorHandler) ListEmployees(c *gin.Context) {
	employees, err := h.obligorService.ListActiveEmployees(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, employees)
}

// GetEmployee returns a single employee
func (h *ObligorHandler) GetEmployee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}
	employee, err := h.obligorService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, employee)
}
