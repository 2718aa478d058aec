package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// ReconciliationHandler handles the monthly statement endpoint
type ReconciliationHandler struct {
	BaseHandler
	reconcileService *appbilling.ReconcileService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconcileService *appbilling.ReconcileService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileService: reconcileService}
}

// RegisterRoutes registers reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/billing/reconciliation", h.ReconcileMonth)
}

// ReconcileMonth returns the month's bills: real charges due in the
// month merged with pending bills synthesized for spaces nobody billed,
// sorted by due date
func (h *ReconciliationHandler) ReconcileMonth(c *gin.Context) {
	var req dto.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bills, err := h.reconcileService.ReconcileMonth(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bills)
}
