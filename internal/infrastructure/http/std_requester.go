package httpinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aigrants.co/cli/internal/core/domain"
)

const maxResponseBody = 4 << 20

// StdHttpRequester performs single-attempt JSON requests. Retry policy
// belongs to callers.
type StdHttpRequester struct {
	client *http.Client
}

func NewStdHttpRequester(timeout time.Duration) *StdHttpRequester {
	return &StdHttpRequester{client: &http.Client{Timeout: timeout}}
}

// NewStdHttpRequesterWithClient wraps an existing client, e.g. httptest's
func NewStdHttpRequesterWithClient(client *http.Client) *StdHttpRequester {
	return &StdHttpRequester{client: client}
}

// Do sends one request with an optional JSON body and returns the status and
// raw response body. Transport failures come back as *domain.SessionError.
func (r *StdHttpRequester) Do(ctx context.Context, cfg domain.ConnectionConfig, method, url string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = IdentificationHeader(cfg, map[string]string{
		"Accept":     "application/json",
		"User-Agent": userAgent,
	})

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, &domain.SessionError{Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, &domain.SessionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return resp.StatusCode, respBody, nil
}

func isSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}
