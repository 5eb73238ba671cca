// Package httpx provides the outbound HTTP client used for the stories API:
// a bounded-retry transport with a fixed user agent and an overall timeout.
package httpx

import (
	"errors"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 20 * time.Second
	DefaultRetryMax = 2
	defaultBackoff  = 200 * time.Millisecond

	userAgent = "story-viewer/1.0 (+https://media.oono.ai)"
)

// Transport retries idempotent requests (GET/HEAD without a body) on
// network errors and on 502/503/504 responses.
type Transport struct {
	Base http.RoundTripper

	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// Backoff is the wait before the first retry; it doubles per retry.
	Backoff time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}
	wait := t.Backoff
	if wait <= 0 {
		wait = defaultBackoff
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 {
			if !sleep(req, wait) {
				return nil, req.Context().Err()
			}
			wait *= 2
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", userAgent)
		}

		resp, err = base.RoundTrip(r)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}
		if !retryableStatus(resp.StatusCode) || attempt == max {
			return resp, nil
		}
		// Drain so the connection can be reused by the next attempt.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		resp = nil
	}
	return resp, err
}

func retryableStatus(code int) bool {
	return code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

func sleep(req *http.Request, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-req.Context().Done():
		return false
	}
}

// NewClient returns an http.Client with the retrying transport. Non-positive
// values select DefaultTimeout; a negative retryMax disables retries.
func NewClient(timeout time.Duration, retryMax int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: &Transport{Base: base, RetryMax: retryMax},
		Timeout:   timeout,
	}
}
