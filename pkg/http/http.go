// Package http is the outbound HTTP client used for webhooks. It retries
// transport errors and 5xx responses with exponential backoff.
//
//	resp, err := http.Post(url).
//	    WithContext(ctx).
//	    Header("X-Tiffin-Event", "order.placed").
//	    Body(payload).
//	    Retry(3, 500*time.Millisecond).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outgoing call. Tests swap its Transport
// (see testkit.MockTransport) and restore it with ResetTransport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() { DefaultClient.Transport = defaultTransport }

type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	ctx       context.Context
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets the payload; anything but string and []byte is sent as JSON.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the first backoff, which
// doubles after each failure.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send runs the request. A non-2xx final response is returned without
// error; call Throw to treat it as one.
func (r *Request) Send() (*Response, error) {
	payload, contentType, err := r.encode()
	if err != nil {
		return nil, err
	}

	var (
		resp    *Response
		lastErr error
		wait    = r.retryWait
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, lastErr = r.do(payload, contentType)
		if lastErr == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt == r.attempts {
			break
		}

		logger.WithCtx(r.ctx).Warn("http: attempt failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait, "error", describe(resp, lastErr))
		select {
		case <-r.ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, r.ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}

	if lastErr != nil {
		return nil, fmt.Errorf("http: %d attempts failed for %s %s: %w", r.attempts, r.method, r.url, lastErr)
	}
	return resp, nil
}

func (r *Request) do(payload []byte, contentType string) (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	res, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Headers: res.Header, Raw: raw}, nil
}

func (r *Request) encode() ([]byte, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), "text/plain", nil
	case []byte:
		return v, "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return b, "application/json", nil
	}
}

func describe(resp *Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw turns a non-2xx response into an error.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: request failed with status %d: %s", r.StatusCode, string(r.Raw))
	}
	return nil
}
