// Package httpx is the fasthttp JSON transport shared by outbound clients.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider supplies headers for every request.
type HeaderProvider func() map[string]string

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error: status=%d body=%s", e.Service, e.Status, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool { return shouldRetryStatus(e.Status) }

type Transport struct {
	service string
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Transport)

func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(t *Transport) { t.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(t *Transport) { t.headers = h }
}

func WithRetry(max int) Option {
	return func(t *Transport) { t.retryMax = max }
}

func New(service, baseURL string, opts ...Option) *Transport {
	t := &Transport{
		service:        service,
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) BaseURL() string { return t.baseURL }

// DoJSON sends in as JSON and decodes a 2xx body into out.
// With retry, transport errors and 5xx/429 are retried with exponential backoff.
func (t *Transport) DoJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(t.baseURL + path)
	req.Header.SetContentType("application/json")

	if t.headers != nil {
		for k, v := range t.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && t.retryMax > 1 {
		attempts = t.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := t.http.DoDeadline(req, resp, t.computeDeadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				if out != nil {
					if err := json.Unmarshal(resp.Body(), out); err != nil {
						return fmt.Errorf("decode response: %w", err)
					}
				}
				return nil
			}
			serr := &StatusError{Service: t.service, Status: status, Body: truncate(string(resp.Body()), 512)}
			if !serr.Retryable() {
				return serr
			}
			err = serr
		} else {
			err = fmt.Errorf("request failed: %w", err)
		}

		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (t *Transport) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(t.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
