package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// CalendarHandler handles the unified payments calendar endpoint
type CalendarHandler struct {
	BaseHandler
	calendarService *appbilling.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(calendarService *appbilling.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// RegisterRoutes registers calendar routes
func (h *CalendarHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/billing/calendar", h.EventsFor)
}

// CalendarRequest represents calendar query parameters
type CalendarRequest struct {
	dto.MonthRequest
	Kind string `form:"kind" binding:"omitempty,oneof=rent service employee otherPayment airbnb"`
}

// EventsFor returns the month's calendar events, optionally filtered to
// a single kind
func (h *CalendarHandler) EventsFor(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	events, err := h.calendarService.EventsFor(c.Request.Context(),
		req.Year, time.Month(req.Month), billing.EventKind(req.Kind))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, events)
}
