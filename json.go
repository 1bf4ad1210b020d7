// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	rpc "github.com/gorilla/rpc/v2/json2"
)

const (
	maxRetries    = 3
	retryBaseWait = 500 * time.Millisecond
)

// Option configures a single JSON-RPC request.
type Option func(*Options)

// Options carries per-request HTTP settings for the JSON-RPC path.
type Options struct {
	headers     http.Header
	queryParams url.Values
}

// NewOptions builds Options from the given option functions.
func NewOptions(options []Option) *Options {
	o := &Options{
		headers:     http.Header{},
		queryParams: url.Values{},
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// WithHeader adds an HTTP header to the request
func WithHeader(key, val string) Option {
	return func(o *Options) { o.headers.Set(key, val) }
}

// WithQueryParam adds a query parameter to the request URL
func WithQueryParam(key, val string) Option {
	return func(o *Options) { o.queryParams.Set(key, val) }
}

// mergeQuery returns uri's address with params merged into its query
// string, leaving uri itself and any query it already carries untouched.
func mergeQuery(uri *url.URL, params url.Values) string {
	u := *uri
	q := u.Query()
	for key, vals := range params {
		q[key] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// newHTTPClient creates a fresh HTTP client with disabled connection reuse.
// This avoids EOF errors that can occur with connection pooling when the
// engine gateway sits behind a spawning process hierarchy.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	// Drain any remaining data to allow connection reuse
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// EOF errors are often transient connection issues
	if errors.Is(err, io.EOF) || strings.Contains(errStr, "EOF") {
		return true
	}
	// Connection reset/refused are also transient
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") {
		return true
	}
	return false
}

// SendJSONRequest issues one JSON-RPC 2.0 call against an engine gateway,
// retrying transient connection failures with exponential backoff. The retry
// sits below the engine-operation boundary: a request that reached the
// gateway and failed remotely is reported, never re-run.
func SendJSONRequest(
	ctx context.Context,
	uri *url.URL,
	method string,
	params any,
	reply any,
	options ...Option,
) error {
	requestBodyBytes, err := rpc.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}

	ops := NewOptions(options)
	requestURL := mergeQuery(uri, ops.queryParams)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 500ms, 1s, 2s
			waitTime := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}

		// Create fresh request for each attempt (body buffer is consumed)
		request, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			requestURL,
			bytes.NewBuffer(requestBodyBytes),
		)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		request.Header = ops.headers
		request.Header.Set("Content-Type", "application/json")

		// Use a fresh HTTP client to avoid connection pooling issues
		client := newHTTPClient()
		resp, err := client.Do(request)
		if err != nil {
			lastErr = err
			log.Printf("[matlabcontrol] request attempt %d failed: %v (retryable=%v)", attempt+1, err, isRetryableError(err))
			if isRetryableError(err) {
				continue // Retry on transient errors
			}
			return fmt.Errorf("failed to issue request: %w", err)
		}
		if attempt > 0 {
			log.Printf("[matlabcontrol] request succeeded on attempt %d", attempt+1)
		}

		// Return an error for any non successful status code
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			CleanlyCloseBody(resp.Body)
			return fmt.Errorf("received status code: %d", resp.StatusCode)
		}

		if err := rpc.DecodeClientResponse(resp.Body, reply); err != nil {
			CleanlyCloseBody(resp.Body)
			return fmt.Errorf("failed to decode client response: %w", err)
		}
		CleanlyCloseBody(resp.Body)
		return nil
	}

	return fmt.Errorf("failed to issue request after %d retries: %w", maxRetries, lastErr)
}

func init() {
	registerTransport(TransportJSON, dialJSON, listenJSON)
}

func dialJSON(ctx context.Context, addr string, o *dialOptions) (Session, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	uri, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("json dial: %w", err)
	}
	return &jsonSession{uri: uri, opts: o.requestOpts}, nil
}

func listenJSON(addr string, engine Engine, o *serveOptions) (EngineServer, error) {
	return nil, fmt.Errorf("json transport is client-only; host the engine behind an HTTP gateway")
}

// jsonSession implements Session over a JSON-RPC engine gateway. The gateway
// is expected to export the three engine operations as Engine.Eval,
// Engine.EvalReturning and Engine.SetVariable.
type jsonSession struct {
	uri  *url.URL
	opts []Option
	mu   sync.Mutex
}

func (s *jsonSession) Dispatch(ctx context.Context, unit Unit) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return unit(ctx, s)
}

func (s *jsonSession) Eval(ctx context.Context, command string) error {
	var reply struct{}
	return SendJSONRequest(ctx, s.uri, "Engine.Eval", &evalRequest{Command: command}, &reply, s.opts...)
}

func (s *jsonSession) EvalReturning(ctx context.Context, command string, nargout int) ([]any, error) {
	var reply evalReturningReply
	err := SendJSONRequest(ctx, s.uri, "Engine.EvalReturning",
		&evalReturningRequest{Command: command, Nargout: nargout}, &reply, s.opts...)
	if err != nil {
		return nil, err
	}
	if len(reply.Results) != nargout {
		return nil, fmt.Errorf("%w: expected %d results, got %d",
			ErrMalformedResult, nargout, len(reply.Results))
	}
	return reply.Results, nil
}

func (s *jsonSession) SetVariable(ctx context.Context, name string, value any) error {
	var reply struct{}
	return SendJSONRequest(ctx, s.uri, "Engine.SetVariable",
		&setVariableRequest{Name: name, Value: value}, &reply, s.opts...)
}

func (s *jsonSession) Close() error { return nil }
