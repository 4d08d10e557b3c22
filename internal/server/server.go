// Package server exposes the backup pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"netbackup/internal/nb"
)

const maxBodyBytes = 1 << 20

// Runner executes one backup run.
type Runner interface {
	Run(ctx context.Context, selector string) (*nb.RunResult, error)
}

// NewRouter creates the HTTP router with all routes configured.
// metrics may be nil, in which case /metrics is not served.
func NewRouter(runner Runner, metrics http.Handler, logger nb.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(Logging(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	trigger := &triggerHandler{runner: runner, logger: logger}
	r.Get("/network_backup_trigger", trigger.ServeHTTP)
	r.Post("/network_backup_trigger", trigger.ServeHTTP)

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r
}

type triggerHandler struct {
	runner Runner
	logger nb.Logger
}

// ServeHTTP runs the pipeline and reports the RunResult: 200 when the run
// succeeded, 500 otherwise.
func (h *triggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	selector := targetSubscription(r)

	// The run outlives a dropped client connection.
	result, err := h.runner.Run(context.WithoutCancel(r.Context()), selector)
	if err != nil {
		h.logger.Error("backup run failed", "selector", selector, "err", err)
	}
	if result == nil {
		respondJSON(w, http.StatusInternalServerError, &nb.RunResult{
			Status:        nb.StatusFailed,
			Subscriptions: []nb.SubscriptionResult{},
			Message:       "Fatal error: " + errString(err),
		})
		return
	}

	status := http.StatusOK
	if result.Status != nb.StatusSuccess {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, result)
}

// targetSubscription reads target_sub from the query string, a form body or
// a JSON body, in that order. Absent means all subscriptions.
func targetSubscription(r *http.Request) string {
	if v := r.URL.Query().Get("target_sub"); v != "" {
		return v
	}

	if r.Method == http.MethodPost && r.Body != nil {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/x-www-form-urlencoded", "multipart/form-data":
			if v := r.PostFormValue("target_sub"); v != "" {
				return v
			}
		case "application/json":
			var body struct {
				TargetSub string `json:"target_sub"`
			}
			if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err == nil && body.TargetSub != "" {
				return body.TargetSub
			}
		}
	}

	return nb.AllSubscriptions
}

// Logging logs one line per request.
func Logging(logger nb.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
