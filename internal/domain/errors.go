package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("network error: check your internet connection")
	ErrContractViolation = errors.New("response does not match the API contract")
)

const fallbackErrorMessage = "the operation failed"

// APIError is the problem envelope returned by the API on non-2xx responses
type APIError struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	// Message is used by the auth endpoints instead of detail
	Message string `json:"message,omitempty"`
	Status  int    `json:"status"`
}

// Empty reports whether the envelope carries no usable information
func (e *APIError) Empty() bool {
	return e.Type == "" && e.Title == "" && e.Detail == "" && e.Message == ""
}

// NewUnknownAPIError is used when the error body could not be parsed
func NewUnknownAPIError(status int) *APIError {
	return &APIError{
		Type:   "UnknownError",
		Title:  "Unknown error",
		Detail: fmt.Sprintf("HTTP error %d", status),
		Status: status,
	}
}

// Error returns detail, then title, then message, then a generic text
func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	case e.Message != "":
		return e.Message
	default:
		return fallbackErrorMessage
	}
}

// Message converts any error into the string shown to the user
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return ErrNetwork.Error()
	case errors.Is(err, ErrSessionExpired):
		return ErrSessionExpired.Error()
	}
	return err.Error()
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
