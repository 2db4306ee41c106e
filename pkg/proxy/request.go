package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// MaxPayloadSize is the largest request body forwarded to the dev server
// (1 GiB).
const MaxPayloadSize int64 = 1 << 30

// buildForwardURL returns http://localhost:<port> followed by the request's
// path and query exactly as received.
func buildForwardURL(port uint16, u *url.URL) (*url.URL, error) {
	pathAndQuery := u.RequestURI()
	if pathAndQuery == "" || pathAndQuery[0] != '/' {
		pathAndQuery = "/" + pathAndQuery
	}

	target, err := url.Parse(fmt.Sprintf("http://localhost:%d%s", port, pathAndQuery))
	if err != nil {
		return nil, err
	}
	return target, nil
}

// readBody drains the request body. Bodies larger than limit, whether
// announced by Content-Length or discovered while reading, are rejected
// before anything is forwarded. Read errors are reported the same way.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.ContentLength > limit {
		return nil, fmt.Errorf("%w: content length %d, limit %d", ErrBodyTooLarge, r.ContentLength, limit)
	}
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit %d", ErrBodyTooLarge, limit)
	}
	return body, nil
}
