package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/task"
)

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, validationDetail(err))
		return
	}

	t, err := h.tasks.Create(r.Context(), req.toNew())
	if err != nil {
		h.internalError(w, "failed to create task", err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, t)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := task.Filter{
		Status:   task.Status(q.Get("status")),
		Priority: task.Priority(q.Get("priority")),
		Category: task.Category(q.Get("category")),
	}

	switch {
	case filter.Status != "" && !filter.Status.Valid():
		respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid status %q", filter.Status))
		return
	case filter.Priority != "" && !filter.Priority.Valid():
		respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", filter.Priority))
		return
	case filter.Category != "" && !filter.Category.Valid():
		respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid category %q", filter.Category))
		return
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		h.internalError(w, "failed to list tasks", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, tasks)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.taskError(w, id, "failed to get task", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, t)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, validationDetail(err))
		return
	}

	t, err := h.tasks.Update(r.Context(), id, req.toChanges())
	if err != nil {
		h.taskError(w, id, "failed to update task", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.taskError(w, id, "failed to delete task", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID extracts the task id and rejects anything that is not a UUID.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid task id %q", raw))
		return "", false
	}

	return id.String(), true
}

func (h *Handler) taskError(w http.ResponseWriter, id, msg string, err error) {
	if errors.Is(err, task.ErrNotFound) {
		respondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Task %s not found", id))
		return
	}
	h.internalError(w, msg, err)
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
}
