package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servicehub/service-booking/internal/application"
	"github.com/servicehub/service-booking/internal/domain/actor"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/platform/auth"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/platform/response"
)

type lifecycleOp func(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*application.BookingDTO, error)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleClient), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/by-display-id/:displayId", h.GetBookingByDisplayID)
		bookings.POST("/:id/accept", h.AcceptBooking)
		bookings.POST("/:id/reject", h.RejectBooking)
		bookings.POST("/:id/depart", h.DepartBooking)
		bookings.POST("/:id/arrive", h.ArriveBooking)
		bookings.POST("/:id/complete", h.CompleteBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/confirm-payment", middleware.RequireRole(auth.RoleAdmin), h.ConfirmPayment)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), a, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Clients see their own bookings, providers see assigned ones.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)

	switch a.Role {
	case actor.RoleProvider:
		res, err := h.service.GetProviderBookings(c.Request.Context(), a.ID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)

	default:
		res, err := h.service.GetClientBookings(c.Request.Context(), a.ID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
	}
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), a, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBookingByDisplayID handles GET /api/v1/bookings/by-display-id/:displayId.
func (h *BookingHandler) GetBookingByDisplayID(c *gin.Context) {
	displayID := c.Param("displayId")
	if _, ok := bookingDomain.DecodeDisplayID(strings.ToUpper(displayID)); !ok {
		response.BadRequest(c, "invalid display id")
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetBookingByDisplayID(c.Request.Context(), a, displayID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AcceptBooking handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.lifecycle(c, h.service.AcceptBooking)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	h.lifecycle(c, h.service.RejectBooking)
}

// DepartBooking handles POST /api/v1/bookings/:id/depart (provider is on the way).
func (h *BookingHandler) DepartBooking(c *gin.Context) {
	h.lifecycle(c, h.service.DepartBooking)
}

// ArriveBooking handles POST /api/v1/bookings/:id/arrive.
func (h *BookingHandler) ArriveBooking(c *gin.Context) {
	h.lifecycle(c, h.service.ArriveBooking)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.lifecycle(c, h.service.CompleteBooking)
}

// ConfirmPayment handles POST /api/v1/bookings/:id/confirm-payment (manual confirmation by an admin).
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	h.lifecycle(c, h.service.ConfirmPayment)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	reason, err := cancelReason(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), a, bookingID, reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// cancelReason reads the optional cancel body. An empty body means no reason.
func cancelReason(c *gin.Context) (string, error) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return body.Reason, nil
}

func (h *BookingHandler) lifecycle(c *gin.Context, op lifecycleOp) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), a, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
