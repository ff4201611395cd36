package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"

	"github.com/google/uuid"
)

const localIDPrefix = "local-"

// TaskAPI is the part of API the reconciler calls.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	EditTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Notice is a transient message for the user, such as a toast.
type Notice func(msg string, err error)

// Reconciler applies server events and local edits to a Board. Local edits
// are optimistic: the board changes first and converges with the server
// afterwards.
type Reconciler struct {
	board  *Board
	api    TaskAPI
	notice Notice
	now    func() time.Time
}

type Option func(*Reconciler)

func WithNotice(n Notice) Option {
	return func(r *Reconciler) { r.notice = n }
}

func NewReconciler(b *Board, api TaskAPI, opts ...Option) *Reconciler {
	r := &Reconciler{
		board: b,
		api:   api,
		notice: func(msg string, err error) {
			logger.Warn(msg, "error", err)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Board() *Board { return r.board }

// Fetch replaces the board with the server list.
func (r *Reconciler) Fetch(ctx context.Context) error {
	tasks, err := r.api.ListTasks(ctx)
	if err != nil {
		r.notice("Failed to fetch tasks", err)
		return err
	}
	r.board.Replace(tasks)
	return nil
}

// HandleEvent applies one realtime frame. Created and updated records are
// followed by a full fetch; deletions are not.
func (r *Reconciler) HandleEvent(ctx context.Context, f ws.Frame) error {
	switch f.Event {
	case domain.WireTaskUpdated:
		var t domain.Task
		if err := json.Unmarshal(f.Data, &t); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		r.board.Upsert(&t)
		return r.Fetch(ctx)

	case domain.WireTaskCreated:
		var t domain.Task
		if err := json.Unmarshal(f.Data, &t); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		if t.Status == "" {
			t.Status = domain.StatusCurrent
		}
		r.board.Upsert(&t)
		return r.Fetch(ctx)

	case domain.WireTaskDeleted:
		var d domain.DeletedTask
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		r.board.Remove(d.ID, d.Status)
		return nil
	}
	return nil
}

// Add shows the task under a temporary id until the server answers.
func (r *Reconciler) Add(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	local, err := in.Build(r.now().UTC())
	if err != nil {
		r.notice("Invalid task", err)
		return nil, err
	}
	local.ID = localIDPrefix + uuid.NewString()
	r.board.Upsert(local)

	created, err := r.api.CreateTask(ctx, in)
	r.board.Remove(local.ID, "")
	if err != nil {
		r.notice("Failed to add task", err)
		_ = r.Fetch(ctx)
		return nil, err
	}
	r.board.Upsert(created)
	return created, nil
}

func (r *Reconciler) Delete(ctx context.Context, id string) error {
	_, status, ok := r.board.Find(id)
	if ok {
		r.board.Remove(id, status)
	}

	if err := r.api.DeleteTask(ctx, id); err != nil {
		r.notice("Failed to delete task", err)
		_ = r.Fetch(ctx)
		return err
	}
	return nil
}

// Update applies patch locally, then on the server. A patch the local rules
// reject never reaches the server.
func (r *Reconciler) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if cur, _, ok := r.board.Find(id); ok {
		next := *cur
		local := patch
		local.Version = nil
		if err := next.Apply(local, r.now().UTC()); err != nil {
			r.notice("Invalid task update", err)
			return nil, err
		}
		r.board.Upsert(&next)
	}

	updated, err := r.api.EditTask(ctx, id, patch)
	if err != nil {
		r.notice("Failed to update task", err)
		_ = r.Fetch(ctx)
		return nil, err
	}
	r.board.Upsert(updated)
	return updated, nil
}

func (r *Reconciler) ChangeStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error) {
	s := string(status)
	return r.Update(ctx, id, domain.TaskPatch{Status: &s})
}

// Move is a drag and drop: id goes to bucket to at index. Reordering within
// a bucket is local only. A failed status change restores the board as it
// was before the drag and fetches.
func (r *Reconciler) Move(ctx context.Context, id string, to domain.Status, index int) error {
	to = bucketFor(domain.Status(strings.ToLower(string(to))))
	cur, from, ok := r.board.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	snap := r.board.Snapshot()
	moved := *cur
	moved.Status = to
	r.board.Insert(to, index, &moved)

	if from == to {
		return nil
	}

	s := string(to)
	updated, err := r.api.EditTask(ctx, id, domain.TaskPatch{Status: &s})
	if err != nil {
		r.board.Restore(snap)
		r.notice("Failed to update task status", err)
		_ = r.Fetch(ctx)
		return err
	}
	r.board.Insert(to, r.indexOf(to, id), updated)
	return nil
}

func (r *Reconciler) indexOf(s domain.Status, id string) int {
	for i, t := range r.board.Bucket(s) {
		if t.ID == id {
			return i
		}
	}
	return len(r.board.Bucket(s))
}
