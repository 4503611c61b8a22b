// Package api exposes the task service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"taskflow/internal/task"
	internalvalidator "taskflow/internal/validator"
)

const (
	ServiceName = "taskflow-api"
	Version     = "1.0.0"
)

// Tasks is the task service as seen by the HTTP layer.
type Tasks interface {
	Create(ctx context.Context, n task.New) (task.Task, error)
	Get(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, filter task.Filter) ([]task.Task, error)
	Update(ctx context.Context, id string, c task.Changes) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	tasks    Tasks
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(tasks Tasks, logger *zap.Logger) (*Handler, error) {
	if err := internalvalidator.Validate("api handler", tasks, logger); err != nil {
		return nil, fmt.Errorf("failed to validate api handler deps: %w", err)
	}

	return &Handler{
		tasks:    tasks,
		logger:   logger.Named("api"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Router returns the full route table wrapped in the standard middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.createTask)
		r.Get("/", h.listTasks)
		r.Get("/{id}", h.getTask)
		r.Patch("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: Version,
	})
}
