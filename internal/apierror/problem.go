// Package apierror provides RFC 9457 Problem Details error response types
// for consistent API error handling.
package apierror

// ProblemDetails represents an RFC 9457 Problem Details response.
// See https://www.rfc-editor.org/rfc/rfc9457.html
type ProblemDetails struct {
	Type   string `json:"type"`             // URI reference identifying the problem type
	Title  string `json:"title"`            // Short human-readable summary
	Status int    `json:"status"`           // HTTP status code
	Detail string `json:"detail,omitempty"` // Explanation specific to this occurrence

	// Extension fields
	Errors []FieldError `json:"errors,omitempty"` // Validation errors list
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface for ProblemDetails.
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}
