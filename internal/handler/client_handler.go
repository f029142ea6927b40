package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/servicehub/service-booking/internal/application"
	"github.com/servicehub/service-booking/internal/platform/auth"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/platform/response"
)

// ClientHandler handles HTTP requests for the caller's client contact profile.
type ClientHandler struct {
	service *application.ClientProfileService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service *application.ClientProfileService) *ClientHandler {
	return &ClientHandler{service: service}
}

// RegisterRoutes registers client profile routes.
func (h *ClientHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	clients := r.Group("/api/v1/clients")
	clients.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleClient))
	{
		clients.GET("/me", h.GetMyProfile)
		clients.PUT("/me", h.UpdateMyProfile)
	}
}

// GetMyProfile handles GET /api/v1/clients/me.
func (h *ClientHandler) GetMyProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.GetMyProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateMyProfile handles PUT /api/v1/clients/me.
func (h *ClientHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.UpdateClientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateMyProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
