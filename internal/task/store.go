package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no task exists for the requested id.
var ErrNotFound = errors.New("task not found")

// Store persists tasks.
type Store interface {
	Insert(ctx context.Context, t Task) error
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, filter Filter) ([]Task, error)
	// Update loads the task, applies mutate and writes the result back
	// atomically. It returns the stored task.
	Update(ctx context.Context, id string, mutate func(*Task) error) (Task, error)
	Delete(ctx context.Context, id string) error
}
