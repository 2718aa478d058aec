package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// RecurringHandler handles recurring obligation API endpoints
type RecurringHandler struct {
	BaseHandler
	projectionService *appbilling.ProjectionService
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(projectionService *appbilling.ProjectionService) *RecurringHandler {
	return &RecurringHandler{projectionService: projectionService}
}

// RegisterRoutes registers recurring obligation routes
func (h *RecurringHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recurring := rg.Group("/billing/recurring")
	{
		recurring.POST("/templates", h.CreateTemplate)
		recurring.GET("/templates", h.ListTemplates)
		recurring.GET("/templates/:id", h.GetTemplate)
		recurring.POST("/templates/:id/activate", h.Activate)
		recurring.POST("/templates/:id/deactivate", h.Deactivate)
		recurring.GET("/templates/:id/projection", h.ProjectTemplate)
		recurring.POST("/templates/:id/instances", h.Materialize)
		recurring.GET("/projections", h.ProjectMonth)
	}
}

// CreateTemplateRequest represents a request to create a recurring template
type CreateTemplateRequest struct {
	Payee     string     `json:"payee" binding:"required,max=120"`
	Detail    string     `json:"detail" binding:"max=200"`
	Amount    float64    `json:"amount" binding:"gte=0"`
	Variable  bool       `json:"variable"`
	Cadence   string     `json:"cadence" binding:"required,oneof=MONTHLY BIWEEKLY WEEKLY ANNUAL"`
	PayDay    int        `json:"pay_day" binding:"required,min=1,max=31"`
	StartDate time.Time  `json:"start_date" binding:"required"`
	EndDate   *time.Time `json:"end_date"`
}

// CreateTemplate registers a recurring payment template
func (h *RecurringHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.projectionService.CreateTemplate(c.Request.Context(), appbilling.CreateTemplateRequest{
		Payee:     req.Payee,
		Detail:    req.Detail,
		Amount:    valueobject.NewMoneyPENFromFloat(req.Amount),
		Variable:  req.Variable,
		Cadence:   billing.Cadence(req.Cadence),
		PayDay:    req.PayDay,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, template)
}

// ListTemplates returns templates with pagination
func (h *RecurringHandler) ListTemplates(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	page, err := h.projectionService.ListTemplates(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetTemplate returns a single template
func (h *RecurringHandler) GetTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}
	template, err := h.projectionService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, template)
}

// Activate re-enables a template
func (h *RecurringHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate stops a template from projecting
func (h *RecurringHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *RecurringHandler) setActive(c *gin.Context, active bool) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}
	template, err := h.projectionService.SetTemplateActive(c.Request.Context(), templateID, active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, template)
}

// ProjectTemplate computes the virtual occurrence of one template for a
// month. Data is null when nothing is due or the instance already exists.
func (h *RecurringHandler) ProjectTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	projection, err := h.projectionService.ProjectRecurring(c.Request.Context(), templateID, req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, projection)
}

// ProjectMonth projects every active template for a month
func (h *RecurringHandler) ProjectMonth(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	projections, err := h.projectionService.ProjectMonth(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, projections)
}

// MaterializeRequest represents a request to persist a projected instance
type MaterializeRequest struct {
	Year      int        `json:"year" binding:"required,min=2000,max=2100"`
	Month     int        `json:"month" binding:"required,min=1,max=12"`
	Amount    *float64   `json:"amount" binding:"omitempty,gt=0"`
	PaidDate  *time.Time `json:"paid_date"`
	Method    string     `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER CARD YAPE OTHER"`
	Reference string     `json:"reference" binding:"max=200"`
}

// Materialize persists the occurrence of a template for one period
func (h *RecurringHandler) Materialize(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}
	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appbilling.MaterializeRequest{
		TemplateID: templateID,
		Year:       req.Year,
		Month:      time.Month(req.Month),
		PaidDate:   req.PaidDate,
		Method:     billing.PaymentMethod(req.Method),
		Reference:  req.Reference,
	}
	if req.Amount != nil {
		m := valueobject.NewMoneyPENFromFloat(*req.Amount)
		appReq.Amount = &m
	}

	instance, err := h.projectionService.MaterializeInstance(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, instance)
}
