package notion

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the average request rate Notion allows per integration.
	DefaultRate = 3.0

	// DefaultRetryAfter is used when a 429 carries no Retry-After header.
	DefaultRetryAfter = time.Second

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter combines proactive throttling with the API's own back-off requests.
type RateLimiter struct {
	mu         sync.Mutex
	retryAt    time.Time     // From Retry-After
	throttled  bool          // Last response was a 429
	bucket     *rate.Limiter // Proactive throttling
	retryAfter time.Duration
}

// NewRateLimiter creates a limiter allowing rps requests per second.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = DefaultRate
	}
	return &RateLimiter{
		bucket:     rate.NewLimiter(rate.Limit(rps), 1),
		retryAfter: DefaultRetryAfter,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Check token bucket (proactive throttling)
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Honour the last Retry-After (reactive)
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// UpdateFromResponse records whether the response asked the client to back off.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.throttled = resp.StatusCode == http.StatusTooManyRequests
	if !r.throttled {
		return
	}

	delay := r.retryAfter
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}
	r.retryAt = time.Now().Add(delay)
}

// Throttled reports whether the last response was a 429.
func (r *RateLimiter) Throttled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.throttled
}

// RetryAt returns when the API allows the next request.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

// transport throttles every request and retries 429 responses.
type transport struct {
	base       http.RoundTripper
	limiter    *RateLimiter
	maxRetries int
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}

		r := req
		if attempt > 0 {
			r = req.Clone(req.Context())
			if req.Body != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				r.Body = body
			}
		}

		resp, err := t.base.RoundTrip(r)
		if err != nil {
			return nil, err
		}
		t.limiter.UpdateFromResponse(resp)

		retryable := req.Body == nil || req.GetBody != nil
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= t.maxRetries || !retryable {
			return resp, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
