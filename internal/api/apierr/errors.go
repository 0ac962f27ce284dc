package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/videocollect/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates an error for an unknown endpoint
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Endpoint not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInternalErrorRef creates an internal server error naming a request id
// the operator can look up in the logs
func NewInternalErrorRef(requestID string) error {
	if requestID == "" {
		return NewInternalError()
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error (request " + requestID + ")"}}
}
