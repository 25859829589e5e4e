package apierror

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes a ProblemDetails response to the gin context with the
// correct Content-Type header.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// NewValidationError creates a 400 Bad Request response for validation
// failures.
func NewValidationError(errors []FieldError) *ProblemDetails {
	return &ProblemDetails{
		Type:   TypeValidation,
		Title:  TitleValidation,
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errors,
	}
}

// NewNotFoundError creates a 404 Not Found response.
func NewNotFoundError(resource, id string) *ProblemDetails {
	return &ProblemDetails{
		Type:   TypeNotFound,
		Title:  TitleNotFound,
		Status: http.StatusNotFound,
		Detail: fmt.Sprintf("%s for '%s' was not found", resource, id),
	}
}

// NewBadRequestError creates a 400 Bad Request response.
func NewBadRequestError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   TypeBadRequest,
		Title:  TitleBadRequest,
		Status: http.StatusBadRequest,
		Detail: detail,
	}
}

// NewInternalError creates a 500 Internal Server Error response. The detail
// is generic on purpose; internals go to the log, not the client.
func NewInternalError() *ProblemDetails {
	return &ProblemDetails{
		Type:   TypeInternal,
		Title:  TitleInternal,
		Status: http.StatusInternalServerError,
		Detail: "An unexpected error occurred",
	}
}
