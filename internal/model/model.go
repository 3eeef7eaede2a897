package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Field keys an AdRecord contributes to every output row.
const (
	KeyTitle         = "title"
	KeySnippet       = "snippet"
	KeyDisplayedLink = "displayed_link"
	KeyExtensions    = "extensions"
)

// Reserved output keys describing the analysis outcome itself.
const (
	KeyAnalysisStatus = "analysis_status"
	KeyAnalysisError  = "analysis_error"
	KeyAnalysisRaw    = "analysis_raw"
)

// AdRecord is one input advertisement. Title, Snippet and DisplayedLink are
// required; Extensions is optional and may be empty.
type AdRecord struct {
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	DisplayedLink string `json:"displayed_link"`
	Extensions    string `json:"extensions,omitempty"`
}

// Validate checks the required fields. A record missing any of them is a
// batch-level precondition failure, not a per-record one.
func (r AdRecord) Validate() error {
	if r.Title == "" {
		return eris.New("record: missing title")
	}
	if r.Snippet == "" {
		return eris.New("record: missing snippet")
	}
	if r.DisplayedLink == "" {
		return eris.New("record: missing displayed_link")
	}
	return nil
}

// Fields returns the record's contribution to its output row.
func (r AdRecord) Fields() map[string]string {
	m := map[string]string{
		KeyTitle:         r.Title,
		KeySnippet:       r.Snippet,
		KeyDisplayedLink: r.DisplayedLink,
	}
	if r.Extensions != "" {
		m[KeyExtensions] = r.Extensions
	}
	return m
}

// OutcomeStatus is the terminal state of analyzing one record.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusDegraded  OutcomeStatus = "degraded"
	StatusFailed    OutcomeStatus = "failed"
)

// Outcome is the tagged result of analyzing one AdRecord. Exactly one of the
// three statuses applies:
//
//   - StatusSucceeded: Fields holds the flattened analysis result.
//   - StatusDegraded: the service answered but not with parseable structure;
//     RawText preserves the response unchanged and Reason says why.
//   - StatusFailed: the call could not be completed; Reason says why.
type Outcome struct {
	Status  OutcomeStatus
	Fields  map[string]string
	RawText string
	Reason  string
}

// Succeeded builds a success outcome from flattened fields.
func Succeeded(fields map[string]string) Outcome {
	return Outcome{Status: StatusSucceeded, Fields: fields}
}

// Degraded builds a degraded outcome preserving the raw response text.
func Degraded(rawText, reason string) Outcome {
	return Outcome{Status: StatusDegraded, RawText: rawText, Reason: reason}
}

// Failed builds a failed outcome.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason}
}

// Row is one flat output row: string keys to scalar string values.
type Row map[string]string

// BatchResult is the finalized product of one batch run: unified rows in
// input order plus summary counters.
type BatchResult struct {
	Rows      []Row `json:"rows"`
	Attempted int   `json:"attempted"`
	Succeeded int   `json:"succeeded"`
	Degraded  int   `json:"degraded"`
	Failed    int   `json:"failed"`
}

// RateLimit is the upstream allowance for one batch: at most MaxRequests
// calls per Interval. Fetched once before the batch starts and treated as
// authoritative for its whole duration.
type RateLimit struct {
	MaxRequests int
	Interval    time.Duration
}

// RunStatus tracks a persisted batch run's lifecycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one persisted batch run.
type Run struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	Context   string       `json:"context"`
	Status    RunStatus    `json:"status"`
	Records   int          `json:"records"`
	Result    *BatchResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
