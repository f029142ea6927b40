package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servicehub/service-booking/internal/platform/domain"
)

// Envelope is the JSON body for every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta carries pagination info.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes 200 with a page of items and pagination meta.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// BadRequest writes 400 with message.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", nil)
}

// Error maps a domain error to its HTTP status. Unknown errors become 500 without leaking the message.
func Error(c *gin.Context, err error) {
	var (
		validation   *domain.ValidationError
		invalidState *domain.InvalidStateTransitionError
		unauthorized *domain.UnauthorizedActionError
		notFound     *domain.NotFoundError
		conflict     *domain.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		abort(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", validation.Message, nil)
	case errors.As(err, &invalidState):
		abort(c, http.StatusBadRequest, "INVALID_STATE_TRANSITION", invalidState.Error(), map[string]any{
			"current":   invalidState.Current,
			"attempted": invalidState.Attempted,
		})
	case errors.As(err, &unauthorized):
		abort(c, http.StatusForbidden, "FORBIDDEN", unauthorized.Error(), map[string]any{
			"action": unauthorized.Action,
		})
	case errors.As(err, &notFound):
		abort(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), map[string]any{
			"resource": notFound.Resource,
			"id":       notFound.ID,
		})
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, "CONFLICT", conflict.Message, nil)
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
	}
}

func abort(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}
