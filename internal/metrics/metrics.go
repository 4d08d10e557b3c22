// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"netbackup/internal/nb"
)

// Prometheus implements nb.Metrics on its own registry so several
// instances can coexist in one process.
type Prometheus struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	SubscriptionsTotal *prometheus.CounterVec
	ResourcesTotal     *prometheus.CounterVec
	ArchiveBytesTotal  prometheus.Counter
}

var _ nb.Metrics = (*Prometheus)(nil)

// NewPrometheus creates and registers the pipeline counters.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry:           prometheus.NewRegistry(),
		RunsTotal:          prometheus.NewCounterVec(prometheus.CounterOpts{Name: "netbackup_runs_total", Help: "backup runs by final status"}, []string{"status"}),
		SubscriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "netbackup_subscriptions_total", Help: "subscriptions processed by status"}, []string{"status"}),
		ResourcesTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "netbackup_resources_total", Help: "resource files written"}, []string{"kind"}),
		ArchiveBytesTotal:  prometheus.NewCounter(prometheus.CounterOpts{Name: "netbackup_archive_bytes_total", Help: "compressed archive bytes produced"}),
	}
	p.registry.MustRegister(p.RunsTotal, p.SubscriptionsTotal, p.ResourcesTotal, p.ArchiveBytesTotal)
	return p
}

func (p *Prometheus) RunFinished(status nb.Status) {
	p.RunsTotal.WithLabelValues(string(status)).Inc()
}

func (p *Prometheus) SubscriptionFinished(status nb.Status) {
	p.SubscriptionsTotal.WithLabelValues(string(status)).Inc()
}

func (p *Prometheus) ResourceWritten(kind nb.Kind) {
	p.ResourcesTotal.WithLabelValues(string(kind)).Inc()
}

func (p *Prometheus) ArchiveCreated(bytes int) {
	p.ArchiveBytesTotal.Add(float64(bytes))
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
