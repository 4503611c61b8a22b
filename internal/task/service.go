package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// Service applies task mutations and announces them as events. Events are
// published only after the store write succeeds.
type Service struct {
	store     Store
	publisher event.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, publisher event.Publisher, logger *zap.Logger) (*Service, error) {
	if err := validator.Validate("task service", store, publisher, logger); err != nil {
		return nil, fmt.Errorf("failed to validate task service deps: %w", err)
	}

	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.Named("task"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) Create(ctx context.Context, n New) (Task, error) {
	t := Task{
		ID:          uuid.NewString(),
		Title:       n.Title,
		Description: n.Description,
		Priority:    n.Priority,
		Category:    n.Category,
		Status:      StatusPending,
		DueDate:     n.DueDate,
		CreatedAt:   s.now(),
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOthers
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return Task{}, fmt.Errorf("failed to insert task: %w", err)
	}

	s.publisher.Publish(ctx, event.TaskCreated, event.Payload{
		"id":       t.ID,
		"title":    t.Title,
		"priority": string(t.Priority),
		"category": string(t.Category),
		"status":   string(t.Status),
	})

	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Task, error) {
	return s.store.List(ctx, filter)
}

// Update applies c and publishes task.completed when c sets the status to
// completed, task.updated otherwise.
func (s *Service) Update(ctx context.Context, id string, c Changes) (Task, error) {
	t, err := s.store.Update(ctx, id, func(t *Task) error {
		c.apply(t)
		return nil
	})
	if err != nil {
		return Task{}, fmt.Errorf("failed to update task %s: %w", id, err)
	}

	if c.Status != nil && *c.Status == StatusCompleted {
		s.publisher.Publish(ctx, event.TaskCompleted, event.Payload{
			"id":    t.ID,
			"title": t.Title,
		})
	} else {
		s.publisher.Publish(ctx, event.TaskUpdated, event.Payload{
			"id":     t.ID,
			"title":  t.Title,
			"status": string(t.Status),
		})
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	s.logger.Debug("task deleted", zap.String("taskId", id))

	return nil
}
