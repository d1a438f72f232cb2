package api

import (
	"fmt"
	"net/http"
)

// APIError is a structured API error. Status is the HTTP status code the
// transport layer writes; Message is the client-visible text.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level
// error envelope: {"error": {"message", "status"}}.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewBadRequestError creates an APIError for malformed or invalid requests.
func NewBadRequestError(message string) *APIError {
	return &APIError{Message: message, Status: http.StatusBadRequest}
}

// NewUnauthorizedError creates an APIError for authentication and
// authorization failures. Callers supply a generic message so that
// rejection reasons are not distinguishable from the outside.
func NewUnauthorizedError(message string) *APIError {
	if message == "" {
		message = "Unauthorized"
	}
	return &APIError{Message: message, Status: http.StatusUnauthorized}
}

// NewNotFoundError creates an APIError for resources that do not exist.
func NewNotFoundError(message string) *APIError {
	return &APIError{Message: message, Status: http.StatusNotFound}
}

// NewConflictError creates an APIError for uniqueness violations,
// e.g. registering an already-taken username.
func NewConflictError(message string) *APIError {
	return &APIError{Message: message, Status: http.StatusConflict}
}

// NewServerError creates an APIError for internal faults. Store outages
// surface through this constructor, never as Unauthorized.
func NewServerError(message string) *APIError {
	return &APIError{Message: message, Status: http.StatusInternalServerError}
}
