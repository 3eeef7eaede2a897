package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/copylab/adlens/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "run-1",
			Source:    "ads.csv",
			Status:    model.RunStatusCompleted,
			Records:   3,
			Result:    &model.BatchResult{Attempted: 3, Succeeded: 2, Degraded: 1},
			CreatedAt: created,
		},
		{
			ID:        "run-2",
			Source:    "api",
			Status:    model.RunStatusRunning,
			Records:   5,
			CreatedAt: created,
		},
	}

	var sb strings.Builder
	formatRunsList(&sb, runs)
	out := sb.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "ads.csv")
	// A run without a result shows dashes for its counters.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "-")
}
