package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// apiError is a non-2xx response from the API.
type apiError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

// client talks to the bankist HTTP API.
type client struct {
	baseURL string
	token   string
	http    *http.Client
	retries uint64
}

func newClient(baseURL, token string, timeout time.Duration, retries uint64) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		retries: retries,
	}
}

// do sends a request and decodes a JSON response into out when out is not
// nil. Requests with an idempotency key are retried on transport errors and
// 5xx responses; the key makes the retry safe.
func (c *client) do(ctx context.Context, method, path string, in, out any, idempotencyKey string) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempt := func() error {
		err := c.send(ctx, method, path, payload, out, idempotencyKey)
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}

	if method == http.MethodGet || idempotencyKey != "" {
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
		return backoff.Retry(attempt, policy)
	}
	return c.send(ctx, method, path, payload, out, idempotencyKey)
}

func (c *client) send(ctx context.Context, method, path string, payload []byte, out any, idempotencyKey string) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
