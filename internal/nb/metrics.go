package nb

// Metrics receives pipeline counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RunFinished(status Status)
	SubscriptionFinished(status Status)
	ResourceWritten(kind Kind)
	ArchiveCreated(bytes int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RunFinished(Status)          {}
func (NopMetrics) SubscriptionFinished(Status) {}
func (NopMetrics) ResourceWritten(Kind)        {}
func (NopMetrics) ArchiveCreated(int)          {}

var _ Metrics = NopMetrics{}
