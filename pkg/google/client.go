package google

import (
	"context"
	"fmt"

	"github.com/quacktask/quacktask/pkg/auth"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"
)

// NewClient creates a Google Tasks client from the stored OAuth
// credential. When no usable credential exists the returned error
// satisfies IsAuth; callers decide whether to run the interactive flow.
func NewClient(ctx context.Context) (*TasksClient, error) {
	client, err := auth.GetClient(ctx)
	if err != nil {
		return nil, &AuthError{Op: "google.NewClient", Err: err}
	}

	srv, err := tasksapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Tasks client: %w", err)
	}

	return NewTasksClient(srv), nil
}
