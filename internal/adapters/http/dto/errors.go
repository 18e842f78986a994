// Package dto holds the request and response shapes of the JSON API and the
// error envelope shared by the API and the middleware.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/domain"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// TraceIDKey is where the telemetry middleware leaves the trace id.
const TraceIDKey = "trace_id"

const requestIDHeader = "X-Request-ID"

const (
	InternalErrorMessage    = "an internal error occurred"
	UnavailableErrorMessage = "characters backend temporarily unavailable"
)

const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeBadRequest  = "BAD_REQUEST"
	ErrorCodeForbidden   = "FORBIDDEN"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeForbidden:   http.StatusForbidden,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeInternal:    http.StatusInternalServerError,
}

// ErrorResponse is the envelope every JSON error is written in:
//
//	{"error":{"code":"NOT_FOUND","message":"..."},"traceId":"..."}
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

// NewErrorResponseWithDetails attaches per-field messages, keyed by json
// field name.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns 500 for codes it does not know.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// FromError classifies err by the domain taxonomy. Unavailable and
// unclassified errors get a fixed message so backend addresses and causes
// stay out of responses.
func FromError(err error) (int, *ErrorResponse) {
	var resp *ErrorResponse

	switch {
	case domain.IsValidation(err):
		resp = NewErrorResponse(ErrorCodeValidation, err.Error())

		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			resp.Error.Details = map[string]string{verr.Field: verr.Message}
		}
	case domain.IsNotFound(err):
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())
	case domain.IsForbidden(err):
		resp = NewErrorResponse(ErrorCodeForbidden, err.Error())
	case domain.IsUnavailable(err):
		resp = NewErrorResponse(ErrorCodeUnavailable, UnavailableErrorMessage)
	default:
		resp = NewErrorResponse(ErrorCodeInternal, InternalErrorMessage)
	}

	return HTTPStatusFromCode(resp.Error.Code), resp
}

// HandleError writes err in the envelope. 5xx causes are logged, since the
// body carries only the generic message.
func HandleError(c *gin.Context, err error) {
	status, resp := FromError(err)
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Any("error", err),
			slog.Int("status", status),
			slog.String(logging.KeyTraceID, resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// GetTraceID prefers the OpenTelemetry trace id and falls back to the
// request id header when tracing is off.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		id, _ := v.(string)
		return id
	}

	if c.Request == nil {
		return ""
	}

	return c.Request.Header.Get(requestIDHeader)
}
