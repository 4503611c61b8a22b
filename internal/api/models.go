package api

import (
	"time"

	"taskflow/internal/task"
)

type createTaskRequest struct {
	Title       string        `json:"title" validate:"min=1,max=100"`
	Description *string       `json:"description" validate:"omitempty,max=500"`
	Priority    task.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    task.Category `json:"category" validate:"omitempty,oneof=work personal shopping others"`
	DueDate     *time.Time    `json:"due_date"`
}

func (r createTaskRequest) toNew() task.New {
	return task.New{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		DueDate:     r.DueDate,
	}
}

type updateTaskRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	Priority    *task.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    *task.Category `json:"category" validate:"omitempty,oneof=work personal shopping others"`
	Status      *task.Status   `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time     `json:"due_date"`
}

func (r updateTaskRequest) toChanges() task.Changes {
	return task.Changes{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		Status:      r.Status,
		DueDate:     r.DueDate,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
