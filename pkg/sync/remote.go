package sync

import (
	"context"

	"github.com/quacktask/quacktask/pkg/google"
)

// Remote is the slice of the Google Tasks client the engine needs.
// *google.TasksClient satisfies it; tests substitute a fake.
type Remote interface {
	ListTaskLists(ctx context.Context) ([]google.List, error)
	ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]google.Task, error)
	CreateTask(ctx context.Context, p google.CreateParams) (google.Task, error)
	DeleteTask(ctx context.Context, listID, taskID string) error
}

// DialFunc acquires a Remote. Acquisition is deferred to each pass so a
// login that happens between passes is picked up without restarting,
// and a missing credential surfaces as an auth failure the engine can
// degrade on.
type DialFunc func(ctx context.Context) (Remote, error)

// Summary reports the outcome of one reconciliation pass.
type Summary struct {
	Synced int  `json:"synced"` // items examined
	Found  int  `json:"found"`  // items matched to an active remote task
	Authed bool `json:"authed"` // false when the pass degraded because the remote was unreachable
}
