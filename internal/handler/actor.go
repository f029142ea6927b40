package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servicehub/service-booking/internal/domain/actor"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/platform/response"
)

// currentActor builds the actor from the authenticated claims, writing 401 when they are missing.
func currentActor(c *gin.Context) (actor.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return actor.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok || !actor.Role(role).IsValid() || actor.Role(role) == actor.RoleSystem {
		response.Unauthorized(c)
		return actor.Actor{}, false
	}
	return actor.New(userID, actor.Role(role)), true
}

// bookingIDParam parses the :id path parameter, writing 400 when it is not a UUID.
func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
