package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/viteproxy/pkg/proxy/types"
)

// ErrorKind classifies a failed forward.
type ErrorKind int

const (
	// BackendNotReady means the dev server port is not known yet.
	BackendNotReady ErrorKind = iota + 1

	// BuildRequestFailure means the outbound URL or request could not be built.
	BuildRequestFailure

	// PayloadTooLarge means the request body exceeded the limit or could not
	// be read.
	PayloadTooLarge

	// UpstreamUnavailable means the outbound request failed at the transport.
	UpstreamUnavailable

	// RelayFailure means the upstream response body could not be read.
	RelayFailure
)

func (k ErrorKind) String() string {
	switch k {
	case BackendNotReady:
		return "backend_not_ready"
	case BuildRequestFailure:
		return "build_request_failed"
	case PayloadTooLarge:
		return "request_too_large"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case RelayFailure:
		return "relay_failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// StatusCode returns the HTTP status written for the kind.
func (k ErrorKind) StatusCode() int {
	switch k {
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by Handler.Forward.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrPortUnknown is wrapped by BackendNotReady errors.
var ErrPortUnknown = errors.New("dev server port is not known yet")

// ErrBodyTooLarge is wrapped by PayloadTooLarge errors caused by the size limit.
var ErrBodyTooLarge = errors.New("request body exceeds limit")

// HandleError converts an error to the JSON error body written to clients.
// Errors other than *Error are reported as internal errors.
//
// Example usage:
//
//	if err != nil {
//	    WriteErrorResponse(w, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var proxyErr *Error
	if !errors.As(err, &proxyErr) {
		return types.NewServerError(
			"An internal error occurred. Please try again later.",
			types.CodeInternalError,
		)
	}

	switch proxyErr.Kind {
	case BackendNotReady:
		return types.NewServerError(
			"Dev server is not ready: its port has not been discovered yet",
			types.CodeBackendNotReady,
		)
	case BuildRequestFailure:
		return types.NewServerError(
			"Failed to build request to dev server",
			types.CodeBuildRequestFailed,
		)
	case PayloadTooLarge:
		return types.NewPayloadTooLargeError("Request body is too large or could not be read")
	case UpstreamUnavailable:
		return types.NewBadGatewayError("Dev server is unavailable")
	case RelayFailure:
		return types.NewServerError(
			"Failed to read response from dev server",
			types.CodeRelayFailed,
		)
	default:
		return types.NewServerError(
			"An internal error occurred. Please try again later.",
			types.CodeInternalError,
		)
	}
}
