// Package handler holds the gin handlers of the storefront API. Handlers
// bind and validate requests, resolve the caller and translate domain errors
// into the response envelope; all business rules live in the application
// services behind them.
package handler

import (
	"errors"
	"net/http"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/logger"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/farmacia/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDContextKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope derived from the class code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInternal, message)
}

// HandleError renders err. Domain errors keep their message and report the
// specific code under details.reason; anything else is logged and hidden
// behind a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeInternal {
			logger.GetGinLogger(c).Error("Unclassified domain error", zap.String("code", domainErr.Code), zap.Error(err))
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewDetailedErrorResponse(
			code, domainErr.Message, getRequestID(c),
			map[string]string{"reason": domainErr.Code},
		))
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// BindJSON binds and validates the request body, writing the validation
// envelope on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Actor returns the authenticated caller or writes a 401
func (h *BaseHandler) Actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return shared.Actor{}, false
	}
	return actor, true
}

// ParamID parses a uuid path parameter or writes a 400
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Invalid "+name+" format", getRequestID(c),
			[]dto.ValidationDetail{{Field: name, Message: "Invalid UUID format", Tag: "uuid"}},
		))
		return uuid.Nil, false
	}
	return id, true
}
