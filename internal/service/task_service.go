package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
)

// TaskService implements the task business rules on top of a TaskStore and
// emits a realtime event after every successful mutation.
type TaskService struct {
	tasks     TaskStore
	users     UserStore
	publisher Publisher
	auditor   Auditor
	now       func() time.Time
}

type TaskServiceOption func(*TaskService)

func WithAuditor(a Auditor) TaskServiceOption {
	return func(s *TaskService) { s.auditor = a }
}

// WithClock overrides time.Now, mostly for tests around due dates.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(tasks TaskStore, users UserStore, publisher Publisher, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		tasks:     tasks,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BulkItem is one row of a bulk import. AssignedTo names a user.
type BulkItem struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate"`
	AssignedTo  string  `json:"assignedTo"`
}

func (s *TaskService) Create(ctx context.Context, caller domain.Identity, in domain.TaskInput) (*domain.Task, error) {
	t, err := in.Build(s.now().UTC())
	if err != nil {
		observe("create", err)
		return nil, err
	}

	assignee := caller.UserID
	if id := strings.TrimSpace(in.AssignedTo); id != "" {
		u, err := s.lookupUser(ctx, id)
		if err != nil {
			observe("create", err)
			return nil, err
		}
		assignee = u.ID
	}
	t.AssignedBy = caller.UserID
	t.AssignedTo = &assignee
	t.AssignedByAdmin = caller.IsAdmin()

	if err := s.tasks.Create(ctx, t); err != nil {
		observe("create", err)
		return nil, fmt.Errorf("create task: %w", err)
	}
	observe("create", nil)

	s.audit(ctx, caller.UserID, domain.AuditActionTaskCreate, map[string]any{"task_id": t.ID, "title": t.Title})
	s.publish(ctx, domain.Event{Name: domain.EventTaskCreated, Task: t, Audience: t.Audience()})
	return t, nil
}

// List returns the tasks the caller assigned when admin, otherwise the tasks
// assigned to the caller.
func (s *TaskService) List(ctx context.Context, caller domain.Identity) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, caller.UserID, caller.Role)
	observe("list", err)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Edit(ctx context.Context, caller domain.Identity, id string, patch domain.TaskPatch) (*domain.Task, error) {
	t, err := s.tasks.Update(ctx, id, patch)
	observe("edit", err)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.UserID, domain.AuditActionTaskEdit, map[string]any{"task_id": t.ID, "version": t.Version})
	s.publish(ctx, domain.Event{Name: domain.EventTaskUpdated, Task: t, Audience: t.Audience()})
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, caller domain.Identity, id string) (*domain.Task, error) {
	t, err := s.tasks.Delete(ctx, id)
	observe("delete", err)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.UserID, domain.AuditActionTaskDelete, map[string]any{"task_id": t.ID, "status": string(t.Status)})
	s.publish(ctx, domain.Event{
		Name:     domain.EventTaskDeleted,
		Deleted:  &domain.DeletedTask{ID: t.ID, Status: t.Status},
		Audience: t.Audience(),
	})
	return t, nil
}

// Assign binds a task to a user. Only admins may assign.
func (s *TaskService) Assign(ctx context.Context, caller domain.Identity, taskID, userID string) (*domain.Task, error) {
	if !caller.IsAdmin() {
		observe("assign", domain.ErrForbidden)
		return nil, fmt.Errorf("%w: only admins can assign tasks", domain.ErrForbidden)
	}

	u, err := s.lookupUser(ctx, userID)
	if err != nil {
		observe("assign", err)
		return nil, err
	}

	before, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		observe("assign", err)
		return nil, err
	}

	t, err := s.tasks.Assign(ctx, taskID, u.ID, caller.UserID)
	observe("assign", err)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, caller.UserID, domain.AuditActionTaskAssign, map[string]any{"task_id": t.ID, "user_id": u.ID})

	// The previous assignee loses the task, so it hears about it as well.
	audience := t.Audience()
	if before.AssignedTo != nil && !containsID(audience, *before.AssignedTo) {
		audience = append(audience, *before.AssignedTo)
	}
	if before.AssignedBy != "" && !containsID(audience, before.AssignedBy) {
		audience = append(audience, before.AssignedBy)
	}
	s.publish(ctx, domain.Event{Name: domain.EventTaskUpdated, Task: t, Audience: audience})
	return t, nil
}

// BulkCreate validates every item before persisting anything. The first
// invalid item aborts the whole batch.
func (s *TaskService) BulkCreate(ctx context.Context, caller domain.Identity, items []BulkItem) ([]*domain.Task, error) {
	if len(items) == 0 {
		observe("bulk_create", domain.ErrValidation)
		return nil, fmt.Errorf("%w: no tasks to import", domain.ErrValidation)
	}

	now := s.now().UTC()
	tasks := make([]*domain.Task, 0, len(items))
	for i, item := range items {
		t, err := domain.TaskInput{
			Title:       item.Title,
			Description: item.Description,
			Status:      item.Status,
			Priority:    item.Priority,
			DueDate:     item.DueDate,
		}.Build(now)
		if err != nil {
			observe("bulk_create", err)
			return nil, fmt.Errorf("row %d (%q): %w", i+1, item.Title, err)
		}
		if t.DueDate != nil && !t.DueDate.After(now) {
			observe("bulk_create", domain.ErrValidation)
			return nil, fmt.Errorf("%w: due date for task %q must be in the future", domain.ErrValidation, t.Title)
		}

		t.AssignedBy = caller.UserID
		t.AssignedByAdmin = caller.IsAdmin()
		if name := strings.TrimSpace(item.AssignedTo); name != "" {
			u, err := s.resolveAssignee(ctx, name)
			if err != nil {
				observe("bulk_create", err)
				if errors.Is(err, domain.ErrUserNotFound) {
					return nil, fmt.Errorf("%w: assigned user %q for task %q does not exist", domain.ErrValidation, name, t.Title)
				}
				return nil, err
			}
			t.AssignedTo = &u.ID
		} else {
			assignee := caller.UserID
			t.AssignedTo = &assignee
		}
		tasks = append(tasks, t)
	}

	if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
		observe("bulk_create", err)
		return nil, fmt.Errorf("bulk create: %w", err)
	}
	observe("bulk_create", nil)

	s.audit(ctx, caller.UserID, domain.AuditActionTaskBulkCreate, map[string]any{"count": len(tasks)})
	for _, t := range tasks {
		s.publish(ctx, domain.Event{Name: domain.EventTaskCreated, Task: t, Audience: t.Audience()})
	}
	return tasks, nil
}

func (s *TaskService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *TaskService) lookupUser(ctx context.Context, id string) (*domain.User, error) {
	if !domain.ValidID(id) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return s.users.GetByID(ctx, id)
}

// resolveAssignee looks a bulk row's assignee up by name, then by id.
func (s *TaskService) resolveAssignee(ctx context.Context, ref string) (*domain.User, error) {
	u, err := s.users.GetByName(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.lookupUser(ctx, ref)
}

func (s *TaskService) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("failed to publish task event", "event", ev.Name, "error", err)
	}
}

func (s *TaskService) audit(ctx context.Context, userID, action string, details map[string]any) {
	if s.auditor == nil {
		return
	}
	s.auditor.Log(ctx, userID, action, domain.AuditCategoryTask, details)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
