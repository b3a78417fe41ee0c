package backend

import (
	"context"
	"sync"
	"time"
)

// RateLimitedEndpoint wraps an Endpoint with a token bucket rate limiter.
type RateLimitedEndpoint struct {
	endpoint Endpoint
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// RateLimited wraps the given endpoint with a limiter that allows at most
// rpm batch calls per minute.
func RateLimited(endpoint Endpoint, rpm int) Endpoint {
	return &RateLimitedEndpoint{
		endpoint: endpoint,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedEndpoint) Name() string { return r.endpoint.Name() }

func (r *RateLimitedEndpoint) Translate(ctx context.Context, batch Batch) (*BatchResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.endpoint.Translate(ctx, batch)
}

func (r *RateLimitedEndpoint) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
