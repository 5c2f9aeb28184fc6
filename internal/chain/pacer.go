package chain

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces requests by a fixed interval using a burst-1 token bucket.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a pacer allowing one request per interval. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent, or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	r := p.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("pacer: cannot reserve token")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
