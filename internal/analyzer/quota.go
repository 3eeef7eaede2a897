package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/copylab/adlens/internal/model"
	"github.com/copylab/adlens/pkg/openrouter"
)

// ErrQuotaUnavailable marks a failed quota probe. A batch must not start
// without a known pacing allowance, so this error is fatal to the batch.
var ErrQuotaUnavailable = errors.New("quota unavailable")

// FetchQuota queries the upstream key endpoint for the current rate
// allowance. It is invoked exactly once per batch; the returned limit is
// treated as authoritative for the batch's whole duration even if the true
// quota changes mid-batch.
func FetchQuota(ctx context.Context, client openrouter.Client) (model.RateLimit, error) {
	info, err := client.Key(ctx)
	if err != nil {
		return model.RateLimit{}, fmt.Errorf("%w: %v", ErrQuotaUnavailable, err)
	}

	if info.RateLimit.Requests <= 0 {
		return model.RateLimit{}, fmt.Errorf("%w: non-positive request allowance %d", ErrQuotaUnavailable, info.RateLimit.Requests)
	}

	interval, err := time.ParseDuration(info.RateLimit.Interval)
	if err != nil || interval <= 0 {
		return model.RateLimit{}, fmt.Errorf("%w: bad interval %q", ErrQuotaUnavailable, info.RateLimit.Interval)
	}

	limit := model.RateLimit{
		MaxRequests: info.RateLimit.Requests,
		Interval:    interval,
	}
	zap.L().Info("fetched quota",
		zap.Int("max_requests", limit.MaxRequests),
		zap.Duration("interval", limit.Interval),
	)
	return limit, nil
}
