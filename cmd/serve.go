package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copylab/adlens/internal/analyzer"
	"github.com/copylab/adlens/internal/model"
	"github.com/copylab/adlens/internal/store"
	"github.com/copylab/adlens/pkg/openrouter"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for batch analysis requests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Records []model.AdRecord `json:"records"`
				Context string           `json:"context"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if len(body.Records) == 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "records are required"})
				return
			}
			for i, rec := range body.Records {
				if err := rec.Validate(); err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{
						"error": fmt.Sprintf("record %d: %v", i, err),
					})
					return
				}
			}

			run, err := st.CreateRun(req.Context(), "api", body.Context, len(body.Records))
			if err != nil {
				zap.L().Error("create run", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create run"})
				return
			}

			// The batch outlives the request; it runs against the server's
			// context and reports through the store.
			go runBatch(ctx, st, run.ID, body.Records, body.Context, client)

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status": "accepted",
				"run_id": run.ID,
			})
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), store.RunFilter{Limit: 50})
			if err != nil {
				zap.L().Error("list runs", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// runBatch executes one API-submitted batch asynchronously, recording the
// outcome in the store.
func runBatch(ctx context.Context, st store.Store, runID string, recs []model.AdRecord, contextLabel string, client openrouter.Client) {
	quota, err := analyzer.FetchQuota(ctx, client)
	if err != nil {
		_ = st.FailRun(ctx, runID, err.Error())
		return
	}

	runner := analyzer.NewRunner(newCaller(client), analyzer.LogSink{}, analyzer.RunnerConfig{
		Pacing:  cfg.Analyze.Pacing,
		Workers: cfg.Analyze.Workers,
	})

	result, err := runner.Run(ctx, recs, contextLabel, quota)
	if err != nil {
		_ = st.FailRun(ctx, runID, err.Error())
		return
	}
	if err := st.CompleteRun(ctx, runID, result); err != nil {
		zap.L().Warn("failed to record run result", zap.String("run_id", runID), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
