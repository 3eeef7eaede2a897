package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/copylab/adlens/internal/model"
	"github.com/copylab/adlens/internal/resilience"
	"github.com/copylab/adlens/pkg/openrouter"
)

// Caller submits one AdRecord to the text-generation service with bounded
// retries. Retries apply only to transient transport failures (connect
// errors, timeouts, 429/5xx); a successfully returned response is never
// reissued regardless of its content — malformed payloads are the
// normalizer's concern.
type Caller struct {
	client  openrouter.Client
	retry   resilience.RetryConfig
	model   string
	prompts PromptSet
}

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg resilience.RetryConfig) CallerOption {
	return func(c *Caller) {
		c.retry = cfg
	}
}

// WithModel overrides the model passed on each completion request.
func WithModel(m string) CallerOption {
	return func(c *Caller) {
		c.model = m
	}
}

// WithPrompts overrides the default prompt set.
func WithPrompts(p PromptSet) CallerOption {
	return func(c *Caller) {
		c.prompts = p
	}
}

// NewCaller creates a Caller on top of an OpenRouter client.
func NewCaller(client openrouter.Client, opts ...CallerOption) *Caller {
	c := &Caller{
		client:  client,
		retry:   resilience.DefaultRetryConfig(),
		prompts: DefaultPrompts(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.retry.ShouldRetry == nil {
		c.retry.ShouldRetry = shouldRetryCall
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("openrouter", "analyze")
	}
	return c
}

// Analyze submits one record and returns the raw generated text. The
// contextLabel is an opaque label (e.g. a product or search term)
// interpolated into the outgoing prompt.
func (c *Caller) Analyze(ctx context.Context, rec model.AdRecord, contextLabel string) (string, error) {
	req := openrouter.ChatCompletionRequest{
		Model: c.model,
		Messages: []openrouter.Message{
			{Role: "system", Content: c.prompts.System},
			{Role: "user", Content: c.prompts.UserPrompt(contextLabel, adCopy(rec))},
		},
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*openrouter.ChatCompletionResponse, error) {
		return c.client.ChatCompletion(ctx, req)
	})
	if err != nil {
		return "", eris.Wrap(err, "caller: analyze")
	}

	if len(resp.Choices) == 0 {
		return "", eris.New("caller: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// shouldRetryCall classifies API errors by status code and falls back to the
// generic transient check for transport-level failures.
func shouldRetryCall(err error) bool {
	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

// adCopy renders a record as the ad copy block fed to the prompt.
func adCopy(rec model.AdRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	fmt.Fprintf(&b, "Snippet: %s\n", rec.Snippet)
	fmt.Fprintf(&b, "Display URL: %s", rec.DisplayedLink)
	if rec.Extensions != "" {
		fmt.Fprintf(&b, "\nExtensions: %s", rec.Extensions)
	}
	return b.String()
}
