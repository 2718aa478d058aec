package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apprental "github.com/propman/backend/internal/application/rental"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/rental"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// BookingHandler handles short-stay booking API endpoints
type BookingHandler struct {
	BaseHandler
	bookingService *apprental.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *apprental.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RegisterRoutes registers booking routes
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/rental/bookings")
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.GetByID)
		bookings.POST("/:id/payments", h.ApplyPayment)
		bookings.POST("/:id/check-in", h.CheckIn)
		bookings.POST("/:id/check-out", h.CheckOut)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

// CreateBookingRequest represents a request to create a booking
type CreateBookingRequest struct {
	SpaceID      string    `json:"space_id" binding:"required,uuid"`
	GuestName    string    `json:"guest_name" binding:"required,max=120"`
	GuestContact string    `json:"guest_contact" binding:"max=120"`
	CheckIn      time.Time `json:"check_in" binding:"required"`
	CheckOut     time.Time `json:"check_out" binding:"required,gtfield=CheckIn"`
	AgreedPrice  float64   `json:"agreed_price" binding:"required,gt=0"`
}

// Create registers a reservation together with its receivable charge
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), apprental.CreateBookingRequest{
		SpaceID:      uuid.MustParse(req.SpaceID),
		GuestName:    req.GuestName,
		GuestContact: req.GuestContact,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		AgreedPrice:  valueobject.NewMoneyPENFromFloat(req.AgreedPrice),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, booking)
}

// ListBookingsRequest represents booking list query parameters
type ListBookingsRequest struct {
	dto.ListRequest
	SpaceID string `form:"space_id" binding:"omitempty,uuid"`
	Status  string `form:"status" binding:"omitempty,oneof=CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
	From    string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// List returns bookings matching the query filters
func (h *BookingHandler) List(c *gin.Context) {
	req := ListBookingsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := rental.BookingFilter{Filter: toFilter(req.ListRequest)}
	if req.SpaceID != "" {
		id := uuid.MustParse(req.SpaceID)
		filter.SpaceID = &id
	}
	if req.Status != "" {
		status := rental.BookingStatus(req.Status)
		filter.Status = &status
	}
	if req.From != "" {
		from, _ := time.Parse("2006-01-02", req.From)
		filter.From = &from
	}
	if req.To != "" {
		to, _ := time.Parse("2006-01-02", req.To)
		filter.To = &to
	}

	page, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns a single booking
func (h *BookingHandler) GetByID(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}
	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, booking)
}

// BookingPaymentRequest represents money received for a booking
type BookingPaymentRequest struct {
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	PaidDate  time.Time `json:"paid_date" binding:"required"`
	Method    string    `json:"payment_method" binding:"omitempty,oneof=CASH TRANSFER CARD YAPE OTHER"`
	Reference string    `json:"reference" binding:"max=200"`
}

// ApplyPayment records a payment against the booking's charge
func (h *BookingHandler) ApplyPayment(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}
	var req BookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.ApplyPayment(c.Request.Context(), apprental.ApplyPaymentRequest{
		BookingID: bookingID,
		Amount:    valueobject.NewMoneyPENFromFloat(req.Amount),
		PaidDate:  req.PaidDate,
		Method:    billing.PaymentMethod(req.Method),
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, booking)
}

// CheckIn marks the guest as arrived
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.bookingService.StartBooking)
}

// CheckOut marks the stay as finished
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.bookingService.CompleteBooking)
}

// Cancel aborts a booking that has not completed
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookingService.CancelBooking)
}

func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*rental.Booking, error)) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}
	booking, err := fn(c.Request.Context(), bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, booking)
}
