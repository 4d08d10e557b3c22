package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"netbackup/internal/nb"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()

	p.RunFinished(nb.StatusSuccess)
	p.RunFinished(nb.StatusFailed)
	p.RunFinished(nb.StatusSuccess)
	p.SubscriptionFinished(nb.StatusSuccess)
	p.ResourceWritten(nb.KindVirtualNetwork)
	p.ResourceWritten(nb.KindVirtualNetwork)
	p.ResourceWritten(nb.KindPublicIP)
	p.ArchiveCreated(1024)
	p.ArchiveCreated(512)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"successful runs", testutil.ToFloat64(p.RunsTotal.WithLabelValues("success")), 2},
		{"failed runs", testutil.ToFloat64(p.RunsTotal.WithLabelValues("failed")), 1},
		{"subscriptions", testutil.ToFloat64(p.SubscriptionsTotal.WithLabelValues("success")), 1},
		{"vnets", testutil.ToFloat64(p.ResourcesTotal.WithLabelValues("vnet")), 2},
		{"public ips", testutil.ToFloat64(p.ResourcesTotal.WithLabelValues("public_ip")), 1},
		{"archive bytes", testutil.ToFloat64(p.ArchiveBytesTotal), 1536},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.RunFinished(nb.StatusSuccess)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `netbackup_runs_total{status="success"} 1`) {
		t.Errorf("exposition missing run counter:\n%s", body)
	}
}

func TestPrometheus_IndependentRegistries(t *testing.T) {
	a, b := NewPrometheus(), NewPrometheus()
	a.RunFinished(nb.StatusSuccess)

	if got := testutil.ToFloat64(b.RunsTotal.WithLabelValues("success")); got != 0 {
		t.Errorf("second instance counter = %v, want 0", got)
	}
}
