package nb_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"netbackup/internal/nb"
	"netbackup/internal/staging"
	"netbackup/internal/testutil"
	"netbackup/internal/vault"
)

type fixture struct {
	svc     *nb.Service
	dir     *testutil.FakeDirectory
	vault   *vault.MemoryVault
	staging *staging.MemoryStagingArea
	db      nb.Database
	logger  *captureLogger
}

// newFixture builds a service over two subscriptions:
// "Production" with a populated and an empty resource group, and
// "Dev Test" with a single public IP.
func newFixture(t *testing.T, opts ...nb.Option) *fixture {
	t.Helper()

	dir := testutil.NewFakeDirectory().
		AddSubscription("sub-1", "Production").
		AddSubscription("sub-2", "Dev Test").
		AddResourceGroup("sub-1", "rg-net").
		AddResourceGroup("sub-1", "rg-empty").
		AddResource("sub-1", "rg-net", nb.KindVirtualNetwork, "vnet-1", nb.PropertyBag{"name": "vnet-1"}).
		AddResource("sub-1", "rg-net", nb.KindNetworkSecurityGroup, "web/nsg", nb.PropertyBag{"name": "web/nsg"}).
		AddResourceGroup("sub-2", "rg-dev").
		AddResource("sub-2", "rg-dev", nb.KindPublicIP, "pip-1", nb.PropertyBag{"name": "pip-1"})

	v := testutil.NewTestVault()
	st := testutil.NewTestStagingArea()
	db := testutil.NewTestDatabase(t)
	logger := &captureLogger{}

	svc := nb.NewService(
		&testutil.StaticConnector{Directory: dir, Vault: v},
		st, db, logger, testutil.FixedClock(), testutil.NewStubIDGenerator(), opts...)

	return &fixture{svc: svc, dir: dir, vault: v, staging: st, db: db, logger: logger}
}

// withVault returns a service sharing the fixture but connecting to v.
func (f *fixture) withVault(v nb.Vault, opts ...nb.Option) *nb.Service {
	return nb.NewService(
		&testutil.StaticConnector{Directory: f.dir, Vault: v},
		f.staging, f.db, f.logger, testutil.FixedClock(), testutil.NewStubIDGenerator(), opts...)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

type recordingMetrics struct {
	mu            sync.Mutex
	runs          map[nb.Status]int
	subscriptions map[nb.Status]int
	resources     map[nb.Kind]int
	archiveBytes  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		runs:          make(map[nb.Status]int),
		subscriptions: make(map[nb.Status]int),
		resources:     make(map[nb.Kind]int),
	}
}

func (m *recordingMetrics) RunFinished(s nb.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[s]++
}

func (m *recordingMetrics) SubscriptionFinished(s nb.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[s]++
}

func (m *recordingMetrics) ResourceWritten(k nb.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[k]++
}

func (m *recordingMetrics) ArchiveCreated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiveBytes += n
}

// flakyVault fails the first failures Put calls with err, then delegates.
type flakyVault struct {
	*vault.MemoryVault

	mu          sync.Mutex
	failures    int
	err         error
	attempts    int
	validateErr error
}

func (v *flakyVault) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	v.mu.Lock()
	v.attempts++
	fail := v.attempts <= v.failures
	v.mu.Unlock()

	if fail {
		return v.err
	}
	return v.MemoryVault.Put(ctx, key, r, size)
}

func (v *flakyVault) ValidateSetup(ctx context.Context) error {
	if v.validateErr != nil {
		return v.validateErr
	}
	return v.MemoryVault.ValidateSetup(ctx)
}

func (v *flakyVault) Attempts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempts
}

// tickingClock advances by step on every call to Now.
type tickingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func keyFor(name string) string {
	return fmt.Sprintf("%s/%s_network_backup.zip", testutil.FixedTimestamp, name)
}
