package google

import (
	"context"
	"strings"

	tasksapi "google.golang.org/api/tasks/v1"
)

// Task status values as reported by the Tasks API.
const (
	StatusCompleted   = "completed"
	StatusNeedsAction = "needsAction"
)

const pageSize = 100

// List is a projection of a remote task list.
type List struct {
	ID    string
	Title string
}

// Task is a projection of a remote task. Title and Notes are trimmed so
// matching never trips over stray whitespace the remote UI allows.
type Task struct {
	ListID string
	ID     string
	Title  string
	Notes  string
	Status string
	Due    string
}

// CreateParams describes a task to create. An empty Due omits the due
// date entirely; the API must never be handed an invented date.
type CreateParams struct {
	ListID string
	Title  string
	Notes  string
	Due    string
}

// TasksClient is a thin CRUD façade over the Google Tasks API. Every
// call is single-attempt; retry policy belongs to callers.
type TasksClient struct {
	srv *tasksapi.Service
}

// NewTasksClient wraps an already-constructed Tasks service. Tests use
// this with a service pointed at a local HTTP server.
func NewTasksClient(srv *tasksapi.Service) *TasksClient {
	return &TasksClient{srv: srv}
}

// ListTaskLists fetches every task list the user owns, following
// pagination until no continuation token remains.
func (c *TasksClient) ListTaskLists(ctx context.Context) ([]List, error) {
	var lists []List
	pageToken := ""
	for {
		call := c.srv.Tasklists.List().MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, wrapErr("google.ListTaskLists", err)
		}
		for _, l := range res.Items {
			lists = append(lists, List{ID: l.Id, Title: l.Title})
		}
		if res.NextPageToken == "" {
			return lists, nil
		}
		pageToken = res.NextPageToken
	}
}

// ListTasks fetches all tasks in a list. An empty result is valid.
// Hidden tasks are always included: Google hides completed tasks from
// default listings, and completion state is exactly what reconciliation
// needs to see.
func (c *TasksClient) ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]Task, error) {
	var items []Task
	pageToken := ""
	for {
		call := c.srv.Tasks.List(listID).
			MaxResults(pageSize).
			ShowCompleted(includeCompleted).
			ShowHidden(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, wrapErr("google.ListTasks", err)
		}
		for _, t := range res.Items {
			items = append(items, Task{
				ListID: listID,
				ID:     t.Id,
				Title:  strings.TrimSpace(t.Title),
				Notes:  strings.TrimSpace(t.Notes),
				Status: t.Status,
				Due:    t.Due,
			})
		}
		if res.NextPageToken == "" {
			return items, nil
		}
		pageToken = res.NextPageToken
	}
}

// CreateTask creates one task and returns its projection.
func (c *TasksClient) CreateTask(ctx context.Context, p CreateParams) (Task, error) {
	title := p.Title
	if title == "" {
		title = "Untitled"
	}
	created, err := c.srv.Tasks.Insert(p.ListID, &tasksapi.Task{
		Title: title,
		Notes: p.Notes,
		Due:   p.Due,
	}).Context(ctx).Do()
	if err != nil {
		return Task{}, wrapErr("google.CreateTask", err)
	}
	return Task{
		ListID: p.ListID,
		ID:     created.Id,
		Title:  strings.TrimSpace(created.Title),
		Notes:  strings.TrimSpace(created.Notes),
		Status: created.Status,
		Due:    created.Due,
	}, nil
}

// DeleteTask removes a task. When the task is already gone the error
// satisfies IsNotFound so callers can treat it as soft success.
func (c *TasksClient) DeleteTask(ctx context.Context, listID, taskID string) error {
	if err := c.srv.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return wrapErr("google.DeleteTask", err)
	}
	return nil
}
