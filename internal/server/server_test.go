package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"netbackup/internal/nb"
)

type stubRunner struct {
	mu        sync.Mutex
	selectors []string
	result    *nb.RunResult
	err       error
}

func (s *stubRunner) Run(ctx context.Context, selector string) (*nb.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectors = append(s.selectors, selector)
	return s.result, s.err
}

func successResult() *nb.RunResult {
	return &nb.RunResult{
		Timestamp: "2024-03-15_143022",
		Status:    nb.StatusSuccess,
		Subscriptions: []nb.SubscriptionResult{
			{SubscriptionID: "sub-1", DisplayName: "Production", BackupBlob: "2024-03-15_143022/Production_network_backup.zip", ResourceCount: 3},
		},
		Message: "Backup completed successfully for 1 subscription(s)!",
	}
}

func TestHealth(t *testing.T) {
	h := NewRouter(&stubRunner{}, nil, nb.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestTrigger_Selector(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
		want string
	}{
		{
			name: "defaults to all",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/network_backup_trigger", nil) },
			want: "all",
		},
		{
			name: "query parameter",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/network_backup_trigger?target_sub=Production", nil)
			},
			want: "Production",
		},
		{
			name: "form body",
			req: func() *http.Request {
				form := url.Values{"target_sub": {"Dev Test"}}
				r := httptest.NewRequest(http.MethodPost, "/network_backup_trigger", strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			want: "Dev Test",
		},
		{
			name: "json body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/network_backup_trigger", strings.NewReader(`{"target_sub":"sub-2"}`))
				r.Header.Set("Content-Type", "application/json; charset=utf-8")
				return r
			},
			want: "sub-2",
		},
		{
			name: "query wins over body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/network_backup_trigger?target_sub=Q", strings.NewReader(`{"target_sub":"B"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			want: "Q",
		},
		{
			name: "malformed json falls back to all",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/network_backup_trigger", strings.NewReader(`{`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			want: "all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{result: successResult()}
			h := NewRouter(runner, nil, nb.NewNopLogger())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())

			if len(runner.selectors) != 1 || runner.selectors[0] != tt.want {
				t.Errorf("selectors = %v, want [%s]", runner.selectors, tt.want)
			}
		})
	}
}

func TestTrigger_Response(t *testing.T) {
	t.Run("success is 200 with result", func(t *testing.T) {
		h := NewRouter(&stubRunner{result: successResult()}, nil, nb.NewNopLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/network_backup_trigger", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body map[string]any
		json.NewDecoder(rec.Body).Decode(&body)
		if body["status"] != "success" || body["timestamp"] != "2024-03-15_143022" {
			t.Errorf("body = %v", body)
		}
		subs, _ := body["subscriptions"].([]any)
		if len(subs) != 1 {
			t.Fatalf("subscriptions = %v", body["subscriptions"])
		}
		sub := subs[0].(map[string]any)
		if sub["backup_blob"] != "2024-03-15_143022/Production_network_backup.zip" || sub["subscription_id"] != "sub-1" || sub["display_name"] != "Production" {
			t.Errorf("subscription = %v", sub)
		}
		if _, ok := sub["resource_count"]; ok {
			t.Error("resource_count leaked into the response")
		}
	})

	t.Run("failure is 500 with partial result", func(t *testing.T) {
		result := successResult()
		result.Status = nb.StatusFailed
		result.Message = "Fatal error: subscription Dev Test: throttled"
		h := NewRouter(&stubRunner{result: result, err: errors.New("throttled")}, nil, nb.NewNopLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/network_backup_trigger", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		var got nb.RunResult
		json.NewDecoder(rec.Body).Decode(&got)
		if got.Status != nb.StatusFailed || got.Message != result.Message || len(got.Subscriptions) != 1 {
			t.Errorf("body = %+v", got)
		}
	})

	t.Run("preflight failure has empty subscriptions list", func(t *testing.T) {
		result := &nb.RunResult{
			Timestamp:     "2024-03-15_143022",
			Status:        nb.StatusFailed,
			Subscriptions: []nb.SubscriptionResult{},
			Message:       "Preflight check failed: Missing environment variables: AZURE_CLIENT_ID",
		}
		h := NewRouter(&stubRunner{result: result, err: &nb.ConfigurationError{Missing: []string{"AZURE_CLIENT_ID"}}}, nil, nb.NewNopLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/network_backup_trigger", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"subscriptions":[]`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("nil result is still reported", func(t *testing.T) {
		h := NewRouter(&stubRunner{err: errors.New("boom")}, nil, nb.NewNopLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/network_backup_trigger", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Fatal error: boom") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestRouter_MethodsAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("netbackup_runs_total 0\n"))
	})
	h := NewRouter(&stubRunner{result: successResult()}, metrics, nb.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/network_backup_trigger", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "netbackup_runs_total") {
		t.Errorf("metrics status = %d, body = %q", rec.Code, rec.Body.String())
	}

	noMetrics := NewRouter(&stubRunner{}, nil, nb.NewNopLogger())
	rec = httptest.NewRecorder()
	noMetrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics without handler status = %d, want 404", rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	h := NewRouter(panicRunner{}, nil, nb.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/network_backup_trigger", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, string) (*nb.RunResult, error) { panic("boom") }
