package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// ChargeHandler handles charge ledger API endpoints
type ChargeHandler struct {
	BaseHandler
	chargeService *appbilling.ChargeService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(chargeService *appbilling.ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeService: chargeService}
}

// RegisterRoutes registers charge routes
func (h *ChargeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	charges := rg.Group("/billing/charges")
	{
		charges.POST("", h.Create)
		charges.GET("", h.List)
		charges.GET("/:id", h.GetByID)
		charges.PUT("/:id", h.Update)
		charges.DELETE("/:id", h.Delete)
		charges.POST("/:id/installments", h.RegisterInstallment)
		charges.GET("/:id/chain", h.Chain)
	}
}

// CreateChargeRequest represents a request to register a charge
type CreateChargeRequest struct {
	SpaceID      string     `json:"space_id" binding:"required,uuid"`
	SpaceKind    string     `json:"space_kind" binding:"required,oneof=RENTAL AIRBNB"`
	BookingID    *string    `json:"booking_id" binding:"omitempty,uuid"`
	Concept      string     `json:"concept" binding:"required,oneof=RENT AIRBNB OTHER"`
	ConceptLabel string     `json:"concept_label" binding:"max=120"`
	Period       *string    `json:"period" binding:"omitempty,period"`
	AgreedAmount float64    `json:"agreed_amount" binding:"required,gt=0"`
	PaidAmount   float64    `json:"paid_amount" binding:"gte=0"`
	DueDate      time.Time  `json:"due_date" binding:"required"`
	PaidDate     *time.Time `json:"paid_date"`
	Method       string     `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER CARD YAPE OTHER"`
	Reference    string     `json:"reference" binding:"max=200"`
}

// Create registers a new charge
func (h *ChargeHandler) Create(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appbilling.RegisterChargeRequest{
		SpaceID:      uuid.MustParse(req.SpaceID),
		SpaceKind:    billing.OwnerKind(req.SpaceKind),
		Concept:      billing.ChargeConcept(req.Concept),
		ConceptLabel: req.ConceptLabel,
		AgreedAmount: valueobject.NewMoneyPENFromFloat(req.AgreedAmount),
		PaidAmount:   valueobject.NewMoneyPENFromFloat(req.PaidAmount),
		DueDate:      req.DueDate,
		PaidDate:     req.PaidDate,
		Method:       billing.PaymentMethod(req.Method),
		Reference:    req.Reference,
	}
	if req.BookingID != nil {
		id := uuid.MustParse(*req.BookingID)
		appReq.BookingID = &id
	}
	if req.Period != nil {
		period, err := valueobject.ParsePeriod(*req.Period)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		appReq.Period = &period
	}

	charge, err := h.chargeService.RegisterCharge(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, charge)
}

// ListChargesRequest represents charge list query parameters
type ListChargesRequest struct {
	dto.ListRequest
	SpaceID   string `form:"space_id" binding:"omitempty,uuid"`
	BookingID string `form:"booking_id" binding:"omitempty,uuid"`
	SpaceKind string `form:"space_kind" binding:"omitempty,oneof=RENTAL AIRBNB"`
	Concept   string `form:"concept" binding:"omitempty,oneof=RENT AIRBNB OTHER"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	Period    string `form:"period" binding:"omitempty,period"`
	IsPartial *bool  `form:"is_partial"`
	DueFrom   string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo     string `form:"due_to" binding:"omitempty,datetime=2006-01-02"`
}

// List returns charges matching the query filters
func (h *ChargeHandler) List(c *gin.Context) {
	req := ListChargesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.ChargeFilter{
		Filter:    toFilter(req.ListRequest),
		IsPartial: req.IsPartial,
	}
	if req.SpaceID != "" {
		id := uuid.MustParse(req.SpaceID)
		filter.SpaceID = &id
	}
	if req.BookingID != "" {
		id := uuid.MustParse(req.BookingID)
		filter.BookingID = &id
	}
	if req.SpaceKind != "" {
		kind := billing.OwnerKind(req.SpaceKind)
		filter.SpaceKind = &kind
	}
	if req.Concept != "" {
		concept := billing.ChargeConcept(req.Concept)
		filter.Concept = &concept
	}
	if req.Status != "" {
		status := billing.ChargeStatus(req.Status)
		filter.Status = &status
	}
	if req.Period != "" {
		period, err := valueobject.ParsePeriod(req.Period)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		filter.Period = &period
	}
	if req.DueFrom != "" {
		from, _ := time.Parse("2006-01-02", req.DueFrom)
		filter.DueFrom = &from
	}
	if req.DueTo != "" {
		to, _ := time.Parse("2006-01-02", req.DueTo)
		filter.DueTo = &to
	}

	page, err := h.chargeService.ListCharges(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single charge
func (h *ChargeHandler) GetByID(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}
	charge, err := h.chargeService.GetCharge(c.Request.Context(), chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, charge)
}

// UpdateChargeRequest represents a request to amend a charge
type UpdateChargeRequest struct {
	AgreedAmount *float64   `json:"agreed_amount" binding:"omitempty,gt=0"`
	PaidAmount   *float64   `json:"paid_amount" binding:"omitempty,gte=0"`
	DueDate      *time.Time `json:"due_date"`
	PaidDate     *time.Time `json:"paid_date"`
	Method       *string    `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER CARD YAPE OTHER"`
	Reference    *string    `json:"reference" binding:"omitempty,max=200"`
	Status       *string    `json:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	ConceptLabel *string    `json:"concept_label" binding:"omitempty,max=120"`
}

// Update amends a charge's amounts, dates or status
func (h *ChargeHandler) Update(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}
	var req UpdateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appbilling.UpdateChargeRequest{
		DueDate:      req.DueDate,
		PaidDate:     req.PaidDate,
		Reference:    req.Reference,
		ConceptLabel: req.ConceptLabel,
	}
	if req.AgreedAmount != nil {
		m := valueobject.NewMoneyPENFromFloat(*req.AgreedAmount)
		appReq.AgreedAmount = &m
	}
	if req.PaidAmount != nil {
		m := valueobject.NewMoneyPENFromFloat(*req.PaidAmount)
		appReq.PaidAmount = &m
	}
	if req.Method != nil {
		method := billing.PaymentMethod(*req.Method)
		appReq.Method = &method
	}
	if req.Status != nil {
		status := billing.ChargeStatus(*req.Status)
		appReq.Status = &status
	}

	charge, err := h.chargeService.RecordPaymentUpdate(c.Request.Context(), chargeID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, charge)
}

// Delete removes a charge without installments
func (h *ChargeHandler) Delete(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}
	if err := h.chargeService.DeleteCharge(c.Request.Context(), chargeID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// InstallmentRequest represents a partial payment against a principal
type InstallmentRequest struct {
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	PaidDate  time.Time `json:"paid_date" binding:"required"`
	Method    string    `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER CARD YAPE OTHER"`
	Reference string    `json:"reference" binding:"max=200"`
}

// RegisterInstallment attaches a partial payment to a principal charge.
// Clients may send an Idempotency-Key header; a retried request with the
// same key returns the installment created the first time.
func (h *ChargeHandler) RegisterInstallment(c *gin.Context) {
	principalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}
	var req InstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	child, err := h.chargeService.RegisterPartialPayment(c.Request.Context(), appbilling.RegisterPartialRequest{
		PrincipalID:    principalID,
		Amount:         valueobject.NewMoneyPENFromFloat(req.Amount),
		PaidDate:       req.PaidDate,
		Method:         billing.PaymentMethod(req.Method),
		Reference:      req.Reference,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, child)
}

// Chain returns a principal charge consolidated with its installments
func (h *ChargeHandler) Chain(c *gin.Context) {
	principalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}
	summary, err := h.chargeService.SummarizeChain(c.Request.Context(), principalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// toFilter maps the common list parameters to the repository filter
func toFilter(req dto.ListRequest) shared.Filter {
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
}
