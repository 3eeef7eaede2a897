package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/copylab/adlens/internal/model"
)

// ErrPrecondition marks invalid batch input (a record missing a required
// field). Like a failed quota probe, it aborts the batch before any call.
var ErrPrecondition = errors.New("precondition failed")

// analysisCaller is the single-call dependency of the runner.
type analysisCaller interface {
	Analyze(ctx context.Context, rec model.AdRecord, contextLabel string) (string, error)
}

// RunnerConfig controls batch execution.
type RunnerConfig struct {
	// Pacing is PacingCount (default) or PacingBucket.
	Pacing string

	// Workers bounds concurrent calls. 1 (default) processes records
	// strictly sequentially.
	Workers int
}

// Runner drives a sequence of records through the caller, paces calls
// against the batch quota, and folds per-record outcomes into one finalized
// BatchResult. It owns all mutable batch state; per-record failures are
// recorded, never propagated.
type Runner struct {
	caller analysisCaller
	sink   ProgressSink
	cfg    RunnerConfig

	// sleep is swapped out by tests to observe pacing pauses.
	sleep func(ctx context.Context, d time.Duration) error

	mu sync.Mutex // serializes sink calls in concurrent mode
}

// NewRunner creates a batch runner.
func NewRunner(caller analysisCaller, sink ProgressSink, cfg RunnerConfig) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Pacing == "" {
		cfg.Pacing = PacingCount
	}
	return &Runner{caller: caller, sink: sink, cfg: cfg, sleep: sleepCtx}
}

// Run processes every record in input order and returns the finalized
// result. Output rows line up index-for-index with the input records,
// including degraded and failed ones. An all-failed batch is still a valid
// result with Succeeded == 0; only a violated precondition or a cancelled
// context aborts the run.
func (r *Runner) Run(ctx context.Context, records []model.AdRecord, contextLabel string, quota model.RateLimit) (*model.BatchResult, error) {
	if quota.MaxRequests <= 0 || quota.Interval <= 0 {
		return nil, fmt.Errorf("%w: invalid quota %+v", ErrQuotaUnavailable, quota)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrPrecondition, i, err)
		}
	}

	total := len(records)
	outcomes := make([]model.Outcome, total)

	var err error
	if r.cfg.Workers > 1 {
		err = r.runConcurrent(ctx, records, contextLabel, quota, outcomes)
	} else {
		err = r.runSequential(ctx, records, contextLabel, quota, outcomes)
	}
	if err != nil {
		return nil, err
	}

	result := &model.BatchResult{Attempted: total}
	rows := make([]model.Row, total)
	for i, outcome := range outcomes {
		rows[i] = buildRow(records[i], outcome)
		switch outcome.Status {
		case model.StatusSucceeded:
			result.Succeeded++
		case model.StatusDegraded:
			result.Degraded++
		case model.StatusFailed:
			result.Failed++
		}
	}
	result.Rows = Unify(rows)
	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, records []model.AdRecord, contextLabel string, quota model.RateLimit, outcomes []model.Outcome) error {
	p := newPacer(r.cfg.Pacing, quota, r.sleep)
	total := len(records)

	for i, rec := range records {
		if err := p.Wait(ctx); err != nil {
			return err
		}

		r.sink.RecordStarted(i)
		outcomes[i] = r.analyzeOne(ctx, rec, contextLabel)
		sinkOutcome(r.sink, i, outcomes[i])
		r.sink.Progress(i+1, total)
	}
	return nil
}

func (r *Runner) runConcurrent(ctx context.Context, records []model.AdRecord, contextLabel string, quota model.RateLimit, outcomes []model.Outcome) error {
	// Count-based pausing presupposes sequential issuance, so concurrent
	// runs always pace with the token bucket. Each outcome lands in its
	// input-indexed slot, preserving output order even though calls
	// complete out of order.
	p := newPacer(PacingBucket, quota, r.sleep)
	total := len(records)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	var processed atomic.Int64
	for i, rec := range records {
		g.Go(func() error {
			if err := p.Wait(gctx); err != nil {
				return err
			}

			r.mu.Lock()
			r.sink.RecordStarted(i)
			r.mu.Unlock()

			outcome := r.analyzeOne(gctx, rec, contextLabel)
			outcomes[i] = outcome

			n := int(processed.Add(1))
			r.mu.Lock()
			sinkOutcome(r.sink, i, outcome)
			r.sink.Progress(n, total)
			r.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// analyzeOne takes one record through Pending -> Calling -> terminal. The
// terminal state is final: a failed call is recorded, not re-entered.
func (r *Runner) analyzeOne(ctx context.Context, rec model.AdRecord, contextLabel string) model.Outcome {
	raw, err := r.caller.Analyze(ctx, rec, contextLabel)
	if err != nil {
		return model.Failed(err.Error())
	}
	return Normalize(raw)
}

// buildRow merges an outcome's fields with the originating record's fields.
// The record's own fields win on key collision.
func buildRow(rec model.AdRecord, outcome model.Outcome) model.Row {
	row := make(model.Row)
	if outcome.Status == model.StatusSucceeded {
		for k, v := range outcome.Fields {
			row[k] = v
		}
	}

	row[model.KeyAnalysisStatus] = string(outcome.Status)
	switch outcome.Status {
	case model.StatusDegraded:
		row[model.KeyAnalysisError] = outcome.Reason
		row[model.KeyAnalysisRaw] = outcome.RawText
	case model.StatusFailed:
		row[model.KeyAnalysisError] = outcome.Reason
	}

	for k, v := range rec.Fields() {
		row[k] = v
	}
	return row
}
