// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/http/v1/dto"
	"pgcledger/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts the request. The JSON
// body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Invalid reports a malformed field.
func (h *BaseHandler) Invalid(c *gin.Context, field string, err error) {
	h.Error(c, apperror.NewValidation("invalid "+field).
		WithDetail("field", field).
		WithDetail("error", err.Error()))
}

// PathID parses the path parameter name as an id.
func (h *BaseHandler) PathID(c *gin.Context, name string) (id.ID, bool) {
	raw := c.Param(name)
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").
			WithDetail("param", name).
			WithDetail("value", raw))
		return id.Nil(), false
	}
	return parsed, true
}

// PathIDAndDate parses the path id and the optional {"date": ...} body of a
// dated transition. A missing body means today.
func (h *BaseHandler) PathIDAndDate(c *gin.Context, name string) (id.ID, time.Time, bool) {
	parsed, ok := h.PathID(c, name)
	if !ok {
		return id.Nil(), time.Time{}, false
	}
	var req dto.DateRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return id.Nil(), time.Time{}, false
	}
	return parsed, req.Or(time.Now().UTC()), true
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// TenantID is the company of the request.
func (h *BaseHandler) TenantID(c *gin.Context) id.ID {
	return middleware.TenantID(c)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Posted sends data with what its transition posted.
func (h *BaseHandler) Posted(c *gin.Context, status int, data any, r posting.Result) {
	c.JSON(status, dto.ResultResponse{Data: data, Posting: dto.FromResult(r)})
}
