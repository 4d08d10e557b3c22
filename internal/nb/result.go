package nb

import (
	"fmt"
	"time"
)

// TimestampLayout formats the single UTC timestamp shared by a run.
const TimestampLayout = "2006-01-02_150405"

// Status is the overall outcome of a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// State is a step of the run state machine.
type State int

const (
	StatePreflight State = iota
	StatePerSubscription
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePreflight:
		return "preflight"
	case StatePerSubscription:
		return "per-subscription"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SubscriptionResult is the success record of one subscription.
type SubscriptionResult struct {
	SubscriptionID string `json:"subscription_id" db:"subscription_id"`
	DisplayName    string `json:"display_name" db:"display_name"`
	BackupBlob     string `json:"backup_blob" db:"backup_blob"`
	ResourceCount  int    `json:"-" db:"resource_count"`
}

// RunResult is the structured report of a run. Subscriptions completed
// before a failure are kept so partial progress stays visible.
type RunResult struct {
	Timestamp     string               `json:"timestamp"`
	Status        Status               `json:"status"`
	Subscriptions []SubscriptionResult `json:"subscriptions"`
	Message       string               `json:"message"`

	State State `json:"-"`
}

func newRunResult(now time.Time) *RunResult {
	return &RunResult{
		Timestamp:     now.UTC().Format(TimestampLayout),
		Status:        StatusRunning,
		Subscriptions: []SubscriptionResult{},
		State:         StatePreflight,
	}
}
