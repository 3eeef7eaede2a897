package analyzer

import (
	"go.uber.org/zap"

	"github.com/copylab/adlens/internal/model"
)

// ProgressSink receives per-record notifications while a batch runs. The
// runner serializes calls, so implementations need no locking of their own.
// Rendering is entirely the sink's concern.
type ProgressSink interface {
	RecordStarted(index int)
	RecordSucceeded(index int)
	RecordDegraded(index int, reason string)
	RecordFailed(index int, reason string)
	Progress(processed, total int)
}

// LogSink reports progress through the global zap logger.
type LogSink struct{}

func (LogSink) RecordStarted(index int) {
	zap.L().Debug("analyzing record", zap.Int("index", index))
}

func (LogSink) RecordSucceeded(index int) {
	zap.L().Info("record analyzed", zap.Int("index", index))
}

func (LogSink) RecordDegraded(index int, reason string) {
	zap.L().Warn("record degraded", zap.Int("index", index), zap.String("reason", reason))
}

func (LogSink) RecordFailed(index int, reason string) {
	zap.L().Warn("record failed", zap.Int("index", index), zap.String("reason", reason))
}

func (LogSink) Progress(processed, total int) {
	zap.L().Info("batch progress", zap.Int("processed", processed), zap.Int("total", total))
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) RecordStarted(int)          {}
func (NopSink) RecordSucceeded(int)        {}
func (NopSink) RecordDegraded(int, string) {}
func (NopSink) RecordFailed(int, string)   {}
func (NopSink) Progress(int, int)          {}

var _ ProgressSink = LogSink{}
var _ ProgressSink = NopSink{}

// sinkOutcome routes one terminal outcome to the matching sink notification.
func sinkOutcome(sink ProgressSink, index int, outcome model.Outcome) {
	switch outcome.Status {
	case model.StatusSucceeded:
		sink.RecordSucceeded(index)
	case model.StatusDegraded:
		sink.RecordDegraded(index, outcome.Reason)
	case model.StatusFailed:
		sink.RecordFailed(index, outcome.Reason)
	}
}
