package database

import (
	"path/filepath"
	"testing"
	"time"

	"netbackup/internal/nb"
)

func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()
	db, err := NewMemoryDatabase()
	if err != nil {
		t.Fatalf("NewMemoryDatabase() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2024, 3, 15, 14, 30, 22, 0, time.UTC)

func createRun(t *testing.T, db *SQLiteDatabase, id string, started time.Time) {
	t.Helper()
	err := db.CreateRun(&nb.RunRecord{
		ID:        id,
		Timestamp: started.Format(nb.TimestampLayout),
		Selector:  "all",
		Status:    nb.StatusRunning,
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("CreateRun(%s) error = %v", id, err)
	}
}

func TestSQLiteDatabase_RunLifecycle(t *testing.T) {
	db := newTestDB(t)
	createRun(t, db, "run-1", base)

	subs := []nb.SubscriptionResult{
		{SubscriptionID: "sub-a", DisplayName: "Prod", BackupBlob: "2024-03-15_143022/Prod_network_backup.zip", ResourceCount: 7},
		{SubscriptionID: "sub-b", DisplayName: "Dev", BackupBlob: "2024-03-15_143022/Dev_network_backup.zip", ResourceCount: 0},
	}
	for _, s := range subs {
		if err := db.AddRunSubscription("run-1", s); err != nil {
			t.Fatalf("AddRunSubscription() error = %v", err)
		}
	}

	finished := base.Add(90 * time.Second)
	if err := db.FinishRun("run-1", nb.StatusSuccess, "Backup completed successfully for 2 subscription(s)!", finished); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != "run-1" || got.Status != nb.StatusSuccess || got.Selector != "all" {
		t.Errorf("run = %+v", got)
	}
	if got.Timestamp != "2024-03-15_143022" {
		t.Errorf("Timestamp = %q, want 2024-03-15_143022", got.Timestamp)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
	}
	if !got.FinishedAt.Valid || !got.FinishedAt.Time.Equal(finished) {
		t.Errorf("FinishedAt = %+v, want %v", got.FinishedAt, finished)
	}
	if len(got.Subscriptions) != 2 {
		t.Fatalf("len(Subscriptions) = %d, want 2", len(got.Subscriptions))
	}
	for i := range subs {
		if got.Subscriptions[i] != subs[i] {
			t.Errorf("Subscriptions[%d] = %+v, want %+v", i, got.Subscriptions[i], subs[i])
		}
	}
}

func TestSQLiteDatabase_ListRunsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	createRun(t, db, "old", base)
	createRun(t, db, "new", base.Add(time.Hour))
	createRun(t, db, "mid", base.Add(time.Minute))

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("order = [%s %s], want [new mid]", runs[0].ID, runs[1].ID)
	}
	if runs[0].FinishedAt.Valid {
		t.Error("unfinished run has FinishedAt")
	}
	if runs[0].Subscriptions == nil {
		t.Error("Subscriptions = nil, want empty slice")
	}

	all, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListRuns(0) returned %d runs, want 3", len(all))
	}
}

func TestSQLiteDatabase_Errors(t *testing.T) {
	db := newTestDB(t)

	if err := db.FinishRun("missing", nb.StatusFailed, "x", base); err == nil {
		t.Error("FinishRun() on missing run expected error")
	}
	if err := db.AddRunSubscription("missing", nb.SubscriptionResult{SubscriptionID: "s"}); err == nil {
		t.Error("AddRunSubscription() on missing run expected foreign key error")
	}

	createRun(t, db, "dup", base)
	if err := db.CreateRun(&nb.RunRecord{ID: "dup", Status: nb.StatusRunning, StartedAt: base}); err == nil {
		t.Error("CreateRun() with duplicate id expected error")
	}
}

func TestSQLiteDatabase_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", DatabaseFile)

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	createRun(t, db, "run-1", base)
	db.Close()

	reopened, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.ListRuns(5)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("runs after reopen = %+v", runs)
	}
}
