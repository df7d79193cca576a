// Package transport sends HTTP requests with JSON bodies and maps non-2xx
// responses to apperr.TransportError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/quickseq/internal/apperr"
)

// Request describes a single HTTP call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	// Body is sent verbatim when it is []byte, string or io.Reader; any other
	// non-nil value is JSON encoded.
	Body any
}

// Do performs req and decodes the JSON response into out (which may be nil).
// An empty response body decodes as JSON null.
func Do(ctx context.Context, client *http.Client, req Request, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	body, err := encodeBody(req.Body, header)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	httpReq.Header = header

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("transport: %s %s: %w", method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &apperr.TransportError{Status: resp.StatusCode, URL: req.URL}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: read body: %w", err)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("transport: decode response: %w", err)
	}
	return nil
}

func encodeBody(body any, header http.Header) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	case io.Reader:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("transport: encode body: %w", err)
		}
		header.Set("Content-Type", "application/json")
		return bytes.NewReader(data), nil
	}
}
