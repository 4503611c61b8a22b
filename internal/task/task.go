// Package task holds the task model, its persistence and the service that
// emits lifecycle events when tasks change.
package task

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryOthers   Category = "others"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryOthers:
		return true
	}
	return false
}

// Task is a single tracked item. It is stored as-is in Couchbase and
// returned as-is by the HTTP API.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Filter narrows List results. Zero-valued fields match everything.
type Filter struct {
	Status   Status
	Priority Priority
	Category Category
}

// Match reports whether t satisfies every set field of f.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// New describes a task to be created. Empty enums take their defaults.
type New struct {
	Title       string
	Description *string
	Priority    Priority
	Category    Category
	DueDate     *time.Time
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Title       *string
	Description *string
	Priority    *Priority
	Category    *Category
	Status      *Status
	DueDate     *time.Time
}

func (c Changes) apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = c.Description
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.DueDate != nil {
		t.DueDate = c.DueDate
	}
}
