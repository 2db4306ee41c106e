package types

import "net/http"

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error and selects the HTTP status.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypePayloadTooLarge indicates the request body exceeded the limit (413).
	ErrorTypePayloadTooLarge = "payload_too_large"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeBadGateway indicates the dev server could not be reached (502).
	ErrorTypeBadGateway = "bad_gateway"

	// ErrorTypeServiceUnavailable indicates temporary unavailability (503).
	ErrorTypeServiceUnavailable = "service_unavailable"
)

// Error code constants.
const (
	// CodeBackendNotReady indicates the dev server port is not known yet.
	CodeBackendNotReady = "backend_not_ready"

	// CodeBuildRequestFailed indicates the upstream request could not be built.
	CodeBuildRequestFailed = "build_request_failed"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"

	// CodeUpstreamUnavailable indicates the dev server did not answer.
	CodeUpstreamUnavailable = "upstream_unavailable"

	// CodeRelayFailed indicates the upstream response body could not be read.
	CodeRelayFailed = "relay_failed"

	// CodeNotFound indicates no route matched.
	CodeNotFound = "not_found"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, code)
}

// NewNotFoundError creates an error response for unknown routes (404).
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, CodeNotFound)
}

// NewPayloadTooLargeError creates an error response for oversized bodies (413).
func NewPayloadTooLargeError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypePayloadTooLarge, CodeRequestTooLarge)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message, code string) *ErrorResponse {
	if code == "" {
		code = CodeInternalError
	}
	return NewErrorResponse(message, ErrorTypeServerError, code)
}

// NewBadGatewayError creates an error response for upstream failures (502).
func NewBadGatewayError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeBadGateway, CodeUpstreamUnavailable)
}

// NewServiceUnavailableError creates an error response for temporary unavailability (503).
func NewServiceUnavailableError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServiceUnavailable, code)
}

// HTTPStatusCode returns the HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeServerError:
		return http.StatusInternalServerError
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
