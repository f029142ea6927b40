package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servicehub/service-booking/internal/application"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/platform/auth"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/platform/response"
)

// NotificationAdmin is the dispatcher surface exposed to operators.
type NotificationAdmin interface {
	DrainQueued(ctx context.Context, limit int) (application.BatchResult, error)
	RetryFailed(ctx context.Context, limit int) (application.BatchResult, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

// EarningsViewer looks up the earning settlement recorded for a booking.
type EarningsViewer interface {
	GetForBooking(ctx context.Context, bookingID uuid.UUID) (*application.EarningDTO, error)
}

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service       *application.BookingService
	earnings      EarningsViewer
	notifications NotificationAdmin
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(
	service *application.BookingService,
	earnings EarningsViewer,
	notifications NotificationAdmin,
) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, earnings: earnings, notifications: notifications}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/:id/audit", h.AuditTrail)
		admin.GET("/bookings/:id/earning", h.BookingEarning)
		admin.POST("/bookings/:id/override-status", h.OverrideStatus)
		admin.POST("/bookings/:id/reconcile-payment", h.ReconcilePayment)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/stats/notifications", h.NotificationStats)
		admin.POST("/notifications/drain", h.DrainNotifications)
		admin.POST("/notifications/retry-failed", h.RetryFailedNotifications)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
// Supports status, client_id, provider_id, category, from and to (RFC 3339) filters.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := bookingDomain.ListFilter{
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}

	if v := c.Query("status"); v != "" {
		status, err := bookingDomain.ParseBookingStatus(strings.ToUpper(v))
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Status = &status
	}
	var ok bool
	if filter.ClientID, ok = optionalUUID(c, "client_id"); !ok {
		return
	}
	if filter.ProviderID, ok = optionalUUID(c, "provider_id"); !ok {
		return
	}
	if filter.From, ok = optionalTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = optionalTime(c, "to"); !ok {
		return
	}

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

type overrideStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// OverrideStatus handles POST /api/v1/admin/bookings/:id/override-status.
func (h *AdminBookingHandler) OverrideStatus(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	var req overrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	target, err := bookingDomain.ParseBookingStatus(strings.ToUpper(req.Status))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.OverrideStatus(c.Request.Context(), a, bookingID, target, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReconcilePayment handles POST /api/v1/admin/bookings/:id/reconcile-payment.
func (h *AdminBookingHandler) ReconcilePayment(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	outcome, err := h.service.ReconcilePayment(c.Request.Context(), a, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking_id": bookingID, "outcome": outcome})
}

// AuditTrail handles GET /api/v1/admin/bookings/:id/audit.
func (h *AdminBookingHandler) AuditTrail(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	a, ok := currentActor(c)
	if !ok {
		return
	}

	entries, err := h.service.GetAuditTrail(c.Request.Context(), a, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, entries)
}

// BookingEarning handles GET /api/v1/admin/bookings/:id/earning.
func (h *AdminBookingHandler) BookingEarning(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	earning, err := h.earnings.GetForBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, earning)
}

// NotificationStats handles GET /api/v1/admin/stats/notifications.
func (h *AdminBookingHandler) NotificationStats(c *gin.Context) {
	stats, err := h.notifications.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// DrainNotifications handles POST /api/v1/admin/notifications/drain.
func (h *AdminBookingHandler) DrainNotifications(c *gin.Context) {
	_, limit := parsePagination(c)
	result, err := h.notifications.DrainQueued(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RetryFailedNotifications handles POST /api/v1/admin/notifications/retry-failed.
func (h *AdminBookingHandler) RetryFailedNotifications(c *gin.Context) {
	_, limit := parsePagination(c)
	result, err := h.notifications.RetryFailed(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func optionalUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		response.BadRequest(c, "invalid "+key)
		return nil, false
	}
	return &id, true
}

func optionalTime(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		response.BadRequest(c, "invalid "+key+", expected RFC 3339")
		return nil, false
	}
	return &t, true
}
