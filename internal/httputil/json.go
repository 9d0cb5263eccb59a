// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the oracle client and
// the BFF server.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxErrorBody bounds how much of a failed response body is kept for
// error messages.
const MaxErrorBody = 4 << 10

// NewJSONRequest builds a request carrying body encoded as JSON. A nil body
// produces a request without a payload. Header values are copied onto the
// request.
func NewJSONRequest(ctx context.Context, method, url string, body any, header http.Header) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// DecodeJSON decodes resp's body into out and drains the rest so the
// connection can be reused.
func DecodeJSON(resp *http.Response, out any) error {
	defer io.Copy(io.Discard, resp.Body)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ErrorBody reads at most MaxErrorBody bytes from resp's body and returns
// them trimmed. Read errors yield an empty string.
func ErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
	if err != nil {
		return ""
	}
	io.Copy(io.Discard, resp.Body)
	return strings.TrimSpace(string(data))
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
