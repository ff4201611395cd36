package service

import (
	"context"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

// TaskStore persists task records. Implementations validate through the
// domain package and never emit events.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	CreateBatch(ctx context.Context, tasks []*domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, userID string, role domain.Role) ([]*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) (*domain.Task, error)
	Assign(ctx context.Context, taskID, userID, assignedBy string) (*domain.Task, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// Publisher fans task events out to connected clients.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type Auditor interface {
	Log(ctx context.Context, userID, action, category string, details map[string]any)
}
