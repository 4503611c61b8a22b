// Package notify reacts to task lifecycle events. Notifications are simulated
// with structured log lines.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// ErrInvalidPayload is returned when a payload lacks the fields a
// notification needs.
var ErrInvalidPayload = errors.New("invalid event payload")

// Notifier implements event.Handler.
type Notifier struct {
	logger *zap.Logger
	now    func() time.Time
}

var _ event.Handler = (*Notifier)(nil)

// NewNotifier creates a Notifier that writes to logger.
func NewNotifier(logger *zap.Logger) (*Notifier, error) {
	if err := validator.Validate("notifier", logger); err != nil {
		return nil, fmt.Errorf("failed to validate notifier deps: %w", err)
	}

	return &Notifier{
		logger: logger.Named("notifier"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (n *Notifier) TaskCreated(_ context.Context, p event.Payload) error {
	id, err := taskID(p)
	if err != nil {
		return err
	}

	n.logger.Info("new task created",
		zap.String("taskId", id),
		zap.String("title", p.String("title")),
		zap.String("priority", p.String("priority")),
		zap.String("category", p.String("category")),
	)
	n.logger.Info("notification sent", zap.String("taskId", id), zap.String("kind", "created"))

	return nil
}

func (n *Notifier) TaskUpdated(_ context.Context, p event.Payload) error {
	id, err := taskID(p)
	if err != nil {
		return err
	}

	n.logger.Info("task updated",
		zap.String("taskId", id),
		zap.String("title", p.String("title")),
		zap.String("status", p.String("status")),
	)

	return nil
}

func (n *Notifier) TaskCompleted(_ context.Context, p event.Payload) error {
	id, err := taskID(p)
	if err != nil {
		return err
	}

	n.logger.Info("task completed",
		zap.String("taskId", id),
		zap.String("title", p.String("title")),
		zap.Time("completedAt", n.now()),
	)
	n.logger.Info("notification sent", zap.String("taskId", id), zap.String("kind", "congratulations"))

	return nil
}

func taskID(p event.Payload) (string, error) {
	id := p.String("id")
	if id == "" {
		return "", fmt.Errorf("%w: missing task id", ErrInvalidPayload)
	}

	return id, nil
}
