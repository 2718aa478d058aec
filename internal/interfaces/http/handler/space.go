package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apprental "github.com/propman/backend/internal/application/rental"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// SpaceHandler handles rentable unit API endpoints
type SpaceHandler struct {
	BaseHandler
	spaceService *apprental.SpaceService
}

// NewSpaceHandler creates a new SpaceHandler
func NewSpaceHandler(spaceService *apprental.SpaceService) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService}
}

// RegisterRoutes registers space routes
func (h *SpaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	spaces := rg.Group("/rental/spaces")
	{
		spaces.POST("", h.Create)
		spaces.GET("", h.List)
		spaces.GET("/:id", h.GetByID)
		spaces.PUT("/:id/payer", h.AssignPayer)
		spaces.DELETE("/:id/payer", h.ReleasePayer)
		spaces.POST("/:id/activate", h.Activate)
		spaces.POST("/:id/deactivate", h.Deactivate)
	}
}

// CreateSpaceRequest represents a request to register a space
type CreateSpaceRequest struct {
	Label          string  `json:"label" binding:"required,max=120"`
	Kind           string  `json:"kind" binding:"required,oneof=RENTAL AIRBNB"`
	PayerName      string  `json:"payer_name" binding:"max=120"`
	PayDay         int     `json:"pay_day" binding:"omitempty,min=1,max=31"`
	MonthlyAmount  float64 `json:"monthly_amount" binding:"gte=0"`
	DefaultConcept string  `json:"default_concept" binding:"omitempty,oneof=RENT AIRBNB OTHER"`
}

// Create registers a rentable unit
func (h *SpaceHandler) Create(c *gin.Context) {
	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	space, err := h.spaceService.CreateSpace(c.Request.Context(), apprental.CreateSpaceRequest{
		Label:          req.Label,
		Kind:           rental.SpaceKind(req.Kind),
		PayerName:      req.PayerName,
		PayDay:         req.PayDay,
		MonthlyAmount:  valueobject.NewMoneyPENFromFloat(req.MonthlyAmount),
		DefaultConcept: req.DefaultConcept,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, space)
}

// ListSpacesRequest represents space list query parameters
type ListSpacesRequest struct {
	dto.ListRequest
	Kind   string `form:"kind" binding:"omitempty,oneof=RENTAL AIRBNB"`
	Active *bool  `form:"active"`
}

// List returns spaces matching the query filters
func (h *SpaceHandler) List(c *gin.Context) {
	req := ListSpacesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := rental.SpaceFilter{
		Filter: toFilter(req.ListRequest),
		Active: req.Active,
	}
	if req.Kind != "" {
		kind := rental.SpaceKind(req.Kind)
		filter.Kind = &kind
	}

	page, err := h.spaceService.ListSpaces(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single space
func (h *SpaceHandler) GetByID(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid space ID format")
		return
	}
	space, err := h.spaceService.GetSpace(c.Request.Context(), spaceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, space)
}

// AssignPayerRequest represents the monthly payer terms of a space
type AssignPayerRequest struct {
	PayerName     string  `json:"payer_name" binding:"required,max=120"`
	PayDay        int     `json:"pay_day" binding:"required,min=1,max=31"`
	MonthlyAmount float64 `json:"monthly_amount" binding:"required,gt=0"`
}

// AssignPayer sets who pays for a space each month, on what day, how much
func (h *SpaceHandler) AssignPayer(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid space ID format")
		return
	}
	var req AssignPayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	space, err := h.spaceService.AssignPayer(c.Request.Context(), spaceID,
		req.PayerName, req.PayDay, valueobject.NewMoneyPENFromFloat(req.MonthlyAmount))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, space)
}

// ReleasePayer clears the payer of a space
func (h *SpaceHandler) ReleasePayer(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid space ID format")
		return
	}
	space, err := h.spaceService.ReleasePayer(c.Request.Context(), spaceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, space)
}

// Activate puts a space back on the calendar
func (h *SpaceHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate removes a space from the calendar
func (h *SpaceHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *SpaceHandler) setActive(c *gin.Context, active bool) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid space ID format")
		return
	}
	space, err := h.spaceService.SetSpaceActive(c.Request.Context(), spaceID, active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, space)
}
