package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCurrent   Status = "current"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Statuses lists the buckets in board order.
var Statuses = []Status{StatusCurrent, StatusPending, StatusCompleted}

// ParseStatus accepts any casing. An empty string yields the default status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusCurrent:
		return StatusCurrent, nil
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: invalid status %q, must be current, pending or completed", ErrValidation, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts any casing. An empty string yields the default priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: invalid priority %q, must be low, medium or high", ErrValidation, s)
}

// Rank orders priorities for sorting: high=3, medium=2, low=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	Status          Status     `json:"status"`
	Priority        Priority   `json:"priority"`
	DueDate         *time.Time `json:"dueDate"`
	AssignedBy      string     `json:"assignedBy"`
	AssignedTo      *string    `json:"assignedTo"`
	AssignedByAdmin bool       `json:"isAssignedByAdmin"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TaskInput is the caller-supplied shape of a new task.
type TaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate"`
	AssignedTo  string  `json:"assignedTo"`
}

// Build validates the input and returns a task with defaults applied and a
// fresh id. Assignment fields are left to the caller.
func (in TaskInput) Build(now time.Time) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	t := &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if strings.TrimSpace(in.DueDate) != "" {
		due, err := ParseDueDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}
	return t, nil
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
	"02-01-2006",
}

// ParseDueDate accepts RFC3339 timestamps, plain dates and the DD-MM-YYYY form
// produced by spreadsheet imports.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid due date %q", ErrValidation, s)
}

// TaskPatch carries the fields of an edit. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Version     *int    `json:"version"`
}

// Apply validates the patch against t and mutates it in place. An empty
// dueDate string clears the due date; an empty status or priority is rejected.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if p.Version != nil && *p.Version != t.Version {
		return fmt.Errorf("%w: task %s is at version %d, got %d", ErrVersionConflict, t.ID, t.Version, *p.Version)
	}

	next := *t
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		next.Title = title
	}
	if p.Description != nil {
		d := *p.Description
		next.Description = &d
	}
	if p.Status != nil {
		if strings.TrimSpace(*p.Status) == "" {
			return fmt.Errorf("%w: status cannot be empty", ErrValidation)
		}
		s, err := ParseStatus(*p.Status)
		if err != nil {
			return err
		}
		next.Status = s
	}
	if p.Priority != nil {
		if strings.TrimSpace(*p.Priority) == "" {
			return fmt.Errorf("%w: priority cannot be empty", ErrValidation)
		}
		pr, err := ParsePriority(*p.Priority)
		if err != nil {
			return err
		}
		next.Priority = pr
	}
	if p.DueDate != nil {
		if strings.TrimSpace(*p.DueDate) == "" {
			next.DueDate = nil
		} else {
			due, err := ParseDueDate(*p.DueDate)
			if err != nil {
				return err
			}
			next.DueDate = &due
		}
	}

	next.Version = t.Version + 1
	next.UpdatedAt = now
	*t = next
	return nil
}

// Audience returns the user ids allowed to observe changes to t.
func (t *Task) Audience() []string {
	out := make([]string, 0, 2)
	if t.AssignedBy != "" {
		out = append(out, t.AssignedBy)
	}
	if t.AssignedTo != nil && *t.AssignedTo != t.AssignedBy {
		out = append(out, *t.AssignedTo)
	}
	return out
}

// ValidID reports whether id is a well-formed task or user identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Validate checks the persisted shape of t. Stores call it before writing.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if s, err := ParseStatus(string(t.Status)); err != nil || s != t.Status {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, t.Status)
	}
	if p, err := ParsePriority(string(t.Priority)); err != nil || p != t.Priority {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, t.Priority)
	}
	if !ValidID(t.ID) {
		return fmt.Errorf("%w: invalid task id %q", ErrValidation, t.ID)
	}
	return nil
}
