package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/character-votes/internal/adapters/clients"
	"github.com/jsamuelsen/character-votes/internal/domain"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// errorBody covers the shapes json-server style backends answer with:
// {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (b *errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}

	var s string
	if json.Unmarshal(b.Error, &s) == nil {
		return s
	}

	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b.Error, &nested) == nil {
		return nested.Message
	}

	return ""
}

// backendMessage extracts a message from an error response, or "".
func backendMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var b errorBody
	if json.Unmarshal(raw, &b) != nil {
		return ""
	}

	return strings.TrimSpace(b.text())
}

// MapHTTPError turns a failed call into a domain error. resp is ignored when
// clientErr is set. entityID names the record a 404 refers to.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	return mapStatus(resp.StatusCode, backendMessage(resp.Body), serviceName, operation, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = "max retries exceeded during " + operation
	default:
		reason = fmt.Sprintf("%s failed: %v", operation, err)
	}

	return domain.NewUnavailableError(serviceName, reason)
}

func mapStatus(status int, message, serviceName, operation, entityID string) error {
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", operation, status)
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case status == http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	default:
		// 400, 409, 422 and the rest of 4xx: the backend refused the data.
		return domain.NewValidationError("", message)
	}
}
