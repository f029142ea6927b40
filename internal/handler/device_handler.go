package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/servicehub/service-booking/internal/application"
	"github.com/servicehub/service-booking/internal/platform/auth"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/platform/response"
)

// DeviceHandler handles push token registration.
type DeviceHandler struct {
	service *application.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(service *application.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// RegisterRoutes registers device routes.
func (h *DeviceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	devices := r.Group("/api/v1/devices")
	devices.Use(middleware.AuthMiddleware(jwtManager))
	{
		devices.GET("", h.ListDevices)
		devices.POST("", h.RegisterDevice)
		devices.DELETE("/:token", h.UnregisterDevice)
	}
}

// RegisterDevice handles POST /api/v1/devices.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RegisterDevice(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDevices handles GET /api/v1/devices.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.ListDevices(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UnregisterDevice handles DELETE /api/v1/devices/:token.
func (h *DeviceHandler) UnregisterDevice(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	if err := h.service.UnregisterDevice(c.Request.Context(), userID, c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "device unregistered"})
}
