package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"mercator-hq/viteproxy/pkg/proxy/types"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "backend not ready",
			err:        &Error{Kind: BackendNotReady, Err: ErrPortUnknown},
			wantStatus: http.StatusInternalServerError,
			wantType:   types.ErrorTypeServerError,
			wantCode:   types.CodeBackendNotReady,
		},
		{
			name:       "build request failure",
			err:        &Error{Kind: BuildRequestFailure, Err: errors.New("bad url")},
			wantStatus: http.StatusInternalServerError,
			wantType:   types.ErrorTypeServerError,
			wantCode:   types.CodeBuildRequestFailed,
		},
		{
			name:       "payload too large",
			err:        &Error{Kind: PayloadTooLarge, Err: ErrBodyTooLarge},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   types.ErrorTypePayloadTooLarge,
			wantCode:   types.CodeRequestTooLarge,
		},
		{
			name:       "upstream unavailable",
			err:        &Error{Kind: UpstreamUnavailable, Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantType:   types.ErrorTypeBadGateway,
			wantCode:   types.CodeUpstreamUnavailable,
		},
		{
			name:       "relay failure",
			err:        &Error{Kind: RelayFailure, Err: errors.New("unexpected EOF")},
			wantStatus: http.StatusInternalServerError,
			wantType:   types.ErrorTypeServerError,
			wantCode:   types.CodeRelayFailed,
		},
		{
			name:       "wrapped proxy error",
			err:        fmt.Errorf("forward: %w", &Error{Kind: UpstreamUnavailable}),
			wantStatus: http.StatusBadGateway,
			wantType:   types.ErrorTypeBadGateway,
			wantCode:   types.CodeUpstreamUnavailable,
		},
		{
			name:       "unknown error",
			err:        errors.New("something else"),
			wantStatus: http.StatusInternalServerError,
			wantType:   types.ErrorTypeServerError,
			wantCode:   types.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)

			if got.Error.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Error.Type, tt.wantType)
			}
			if got.Error.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Error.Code, tt.wantCode)
			}
			if status := got.Error.HTTPStatusCode(); status != tt.wantStatus {
				t.Errorf("HTTPStatusCode() = %d, want %d", status, tt.wantStatus)
			}
			if got.Error.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		kind       ErrorKind
		wantString string
		wantStatus int
	}{
		{BackendNotReady, "backend_not_ready", http.StatusInternalServerError},
		{BuildRequestFailure, "build_request_failed", http.StatusInternalServerError},
		{PayloadTooLarge, "request_too_large", http.StatusRequestEntityTooLarge},
		{UpstreamUnavailable, "upstream_unavailable", http.StatusBadGateway},
		{RelayFailure, "relay_failed", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.wantString, func(t *testing.T) {
			if tt.kind.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", tt.kind.String(), tt.wantString)
			}
			if tt.kind.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.kind.StatusCode(), tt.wantStatus)
			}
			if HandleError(&Error{Kind: tt.kind}).Error.HTTPStatusCode() != tt.wantStatus {
				t.Error("HandleError status disagrees with StatusCode()")
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := error(&Error{Kind: UpstreamUnavailable, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if err.Error() != "upstream_unavailable: dial tcp: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&Error{Kind: BackendNotReady}).Error() != "backend_not_ready" {
		t.Error("Error() without cause should be the kind")
	}
}
