package main

import (
	"github.com/rotisserie/eris"

	"github.com/copylab/adlens/internal/analyzer"
	"github.com/copylab/adlens/internal/resilience"
	"github.com/copylab/adlens/internal/store"
	"github.com/copylab/adlens/pkg/openrouter"
)

// newAPIClient builds the OpenRouter client from config. The API key is the
// only hard requirement.
func newAPIClient() (openrouter.Client, error) {
	if cfg.OpenRouter.Key == "" {
		return nil, eris.New("openrouter key not configured (set ADLENS_OPENROUTER_KEY or openrouter.key)")
	}

	var opts []openrouter.Option
	if cfg.OpenRouter.BaseURL != "" {
		opts = append(opts, openrouter.WithBaseURL(cfg.OpenRouter.BaseURL))
	}
	if cfg.OpenRouter.Model != "" {
		opts = append(opts, openrouter.WithModel(cfg.OpenRouter.Model))
	}
	return openrouter.NewClient(cfg.OpenRouter.Key, opts...), nil
}

// newCaller builds the resilient caller from config.
func newCaller(client openrouter.Client) *analyzer.Caller {
	retry := resilience.FromRetryConfig(
		cfg.Analyze.MaxAttempts,
		cfg.Analyze.InitialBackoffMs,
		cfg.Analyze.MaxBackoffMs,
		cfg.Analyze.Multiplier,
		cfg.Analyze.JitterFraction,
	)

	prompts := analyzer.DefaultPrompts()
	if cfg.OpenRouter.SystemPrompt != "" {
		prompts.System = cfg.OpenRouter.SystemPrompt
	}
	if cfg.OpenRouter.UserPromptTemplate != "" {
		prompts.UserTemplate = cfg.OpenRouter.UserPromptTemplate
	}

	return analyzer.NewCaller(client,
		analyzer.WithRetryConfig(retry),
		analyzer.WithModel(cfg.OpenRouter.Model),
		analyzer.WithPrompts(prompts),
	)
}

// initStore opens the run-history database from config.
func initStore() (store.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		path = "adlens.db"
	}
	st, err := store.NewSQLite(path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}
