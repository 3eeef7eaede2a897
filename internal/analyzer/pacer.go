package analyzer

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/copylab/adlens/internal/model"
)

// Pacing policy names.
const (
	// PacingCount pauses for the quota interval after every quota-sized
	// chunk of issued calls. This mirrors the original batch behavior; it
	// under-paces when individual calls are slow.
	PacingCount = "count"

	// PacingBucket enforces the true upstream rate with a token bucket
	// keyed on elapsed time.
	PacingBucket = "bucket"
)

// pacer is consulted once before each analysis call.
type pacer interface {
	Wait(ctx context.Context) error
}

// countPacer counts issued calls and suspends for the quota interval at
// every chunk boundary. Not safe for concurrent use; the sequential runner
// owns it exclusively.
type countPacer struct {
	quota  model.RateLimit
	issued int
	sleep  func(ctx context.Context, d time.Duration) error
}

func (p *countPacer) Wait(ctx context.Context) error {
	if p.issued > 0 && p.issued%p.quota.MaxRequests == 0 {
		if err := p.sleep(ctx, p.quota.Interval); err != nil {
			return err
		}
	}
	p.issued++
	return nil
}

type bucketPacer struct {
	limiter *rate.Limiter
}

func (p *bucketPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

func newPacer(mode string, quota model.RateLimit, sleep func(context.Context, time.Duration) error) pacer {
	if mode == PacingBucket {
		perSecond := float64(quota.MaxRequests) / quota.Interval.Seconds()
		return &bucketPacer{limiter: rate.NewLimiter(rate.Limit(perSecond), quota.MaxRequests)}
	}
	return &countPacer{quota: quota, sleep: sleep}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
