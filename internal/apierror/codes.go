package apierror

// Error type URIs following the urn:vitalflow:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:vitalflow:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:vitalflow:error:not_found"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:vitalflow:error:bad_request"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:vitalflow:error:internal"
)

// Titles for each error type
const (
	TitleValidation = "Validation Error"
	TitleNotFound   = "Resource Not Found"
	TitleBadRequest = "Bad Request"
	TitleInternal   = "Internal Server Error"
)
