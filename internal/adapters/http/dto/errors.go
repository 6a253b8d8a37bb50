// Package dto holds the JSON shapes of the admin API and the live socket,
// plus the error envelope and request validation shared by the handlers.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

// ErrorResponse is the envelope of every error answer.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the machine code, a message and optional per-field details.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeBadRequest  = "BAD_REQUEST"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeForbidden   = "FORBIDDEN"
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeWriteFailed = "WRITE_FAILED"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeInternal    = "INTERNAL_ERROR"
)

// NewErrorResponse creates an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// NewErrorResponseWithDetails creates an envelope with per-field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace id and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// traceIDKey is the gin context key the telemetry middleware sets.
const traceIDKey = "trace_id"

// GetTraceID returns the trace id of the request, falling back to its
// X-Request-ID so an envelope always carries something to search logs by.
func GetTraceID(c *gin.Context) string {
	if id := c.GetString(traceIDKey); id != "" {
		return id
	}

	return c.GetHeader("X-Request-ID")
}

// errorMapping ties a domain error class to its answer. A non-empty message
// replaces the error text so store internals are not echoed to the browser.
type errorMapping struct {
	is      func(error) bool
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{is: domain.IsNotFound, status: http.StatusNotFound, code: ErrorCodeNotFound},
	{is: domain.IsValidation, status: http.StatusBadRequest, code: ErrorCodeValidation},
	{is: domain.IsForbidden, status: http.StatusForbidden, code: ErrorCodeForbidden},
	{is: domain.IsWriteFailed, status: http.StatusBadGateway, code: ErrorCodeWriteFailed},
	{
		is:      domain.IsUnavailable,
		status:  http.StatusServiceUnavailable,
		code:    ErrorCodeUnavailable,
		message: "content store is temporarily unavailable",
	},
}

// MapError maps a domain error to a status and envelope. Anything not
// recognized is a 500 with a generic message.
func MapError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	for _, m := range errorMappings {
		if !m.is(err) {
			continue
		}

		message := m.message
		if message == "" {
			message = err.Error()
		}

		resp := NewErrorResponse(m.code, message)

		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			resp.Error.Details = map[string]string{ve.Field: ve.Message}
		}

		return m.status, resp
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
}

// HandleError answers err with its envelope and logs it, at error level for
// a 500 and warn otherwise.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	level := slog.LevelWarn
	if status == http.StatusInternalServerError {
		level = slog.LevelError
	}

	logging.FromContext(c.Request.Context()).Log(c.Request.Context(), level, "admin request failed",
		slog.String("error", err.Error()),
		slog.Int("status", status),
	)

	c.JSON(status, resp)
}
