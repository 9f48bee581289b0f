package steer

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// Response is a received HTTP response as seen by selectors and actions.
//
// The wire body is consumed at most once. The first call to Bytes drains and
// closes it, then replaces Body with an in-memory reader over the same bytes,
// so a captured response can still be read in full after dispatch returns.
// Reading Body directly bypasses the gate; do that only from an action that
// owns the response.
type Response struct {
	*http.Response

	once     sync.Once
	raw      []byte
	err      error
	consumed bool
}

// NewResponse wraps r for routing.
func NewResponse(r *http.Response) *Response {
	return &Response{Response: r}
}

// Bytes returns the full body, reading it from the wire on first use.
func (r *Response) Bytes() ([]byte, error) {
	r.once.Do(func() {
		r.consumed = true
		if r.Body == nil || r.Body == http.NoBody {
			return
		}
		r.raw, r.err = io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(r.raw))
	})
	return r.raw, r.err
}

// Consumed reports whether the wire body has been read through Bytes.
func (r *Response) Consumed() bool {
	return r.consumed
}

// MediaType returns the declared content type without parameters, lowercased.
// It returns "" when the header is missing.
func (r *Response) MediaType() string {
	if r.Response == nil {
		return ""
	}
	return parseMediaType(r.Header.Get("Content-Type"))
}

func parseMediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		// Keep what we can from malformed parameters.
		mt, _, _ = strings.Cut(v, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
