package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/viteproxy/pkg/proxy/types"
)

// Response is a fully buffered dev server response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// writeResponse copies status, headers and body to w unchanged. Headers set
// on w by host middleware are dropped so the client sees exactly the dev
// server's header set.
func writeResponse(w http.ResponseWriter, resp *Response) error {
	dst := w.Header()
	clear(dst)
	for key, values := range resp.Header {
		dst[key] = append([]string(nil), values...)
	}

	w.WriteHeader(resp.StatusCode)

	if len(resp.Body) == 0 {
		return nil
	}
	if _, err := w.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes a JSON error response.
// The HTTP status code is derived from the error type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}
