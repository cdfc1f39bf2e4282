package models

import "fmt"

// APIError is a non-2xx response from the pricing backend
type APIError struct {
	StatusCode int    `json:"status"`
	Detail     string `json:"detail"`
	Help       string `json:"help,omitempty"` // value of the X-Help response header
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, detail, help string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Detail:     detail,
		Help:       help,
	}
}

// Error renders the message shown in the toast
func (e *APIError) Error() string {
	msg := fmt.Sprintf("Error %d: %s", e.StatusCode, e.Detail)
	if e.Help != "" {
		msg += "\nSugerencia: " + e.Help
	}
	return msg
}
