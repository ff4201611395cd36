package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
)

func newTask(t *testing.T, by, to *domain.User, title string) *domain.Task {
	t.Helper()
	task, err := domain.TaskInput{Title: title}.Build(time.Now().UTC())
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	task.AssignedBy = by.ID
	task.AssignedTo = &to.ID
	task.AssignedByAdmin = by.Role == domain.RoleAdmin
	return task
}

func TestTaskRepository_Lifecycle(t *testing.T) {
	pool := connectDB(t)
	ctx := context.Background()
	ur := repository.NewUserRepository(pool)
	tr := repository.NewTaskRepository(pool)

	admin := createUser(t, ur, "admin", domain.RoleAdmin)
	alice := createUser(t, ur, "alice", domain.RoleUser)

	task := newTask(t, admin, alice, "write report")
	if err := tr.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tr.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "write report" || got.Version != 1 || *got.AssignedTo != alice.ID {
		t.Fatalf("unexpected task %+v", got)
	}

	mine, err := tr.ListByOwner(ctx, alice.ID, domain.RoleUser)
	if err != nil || len(mine) != 1 {
		t.Fatalf("alice list: %v, %d", err, len(mine))
	}
	assigned, err := tr.ListByOwner(ctx, admin.ID, domain.RoleAdmin)
	if err != nil || len(assigned) != 1 {
		t.Fatalf("admin list: %v, %d", err, len(assigned))
	}

	status := "pending"
	v := 1
	updated, err := tr.Update(ctx, task.ID, domain.TaskPatch{Status: &status, Version: &v})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusPending || updated.Version != 2 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := tr.Update(ctx, task.ID, domain.TaskPatch{Status: &status, Version: &v}); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	deleted, err := tr.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Status != domain.StatusPending {
		t.Fatalf("delete should return the last status, got %q", deleted.Status)
	}
	if _, err := tr.GetByID(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTaskRepository_AssignRelinksUserTasks(t *testing.T) {
	pool := connectDB(t)
	ctx := context.Background()
	ur := repository.NewUserRepository(pool)
	tr := repository.NewTaskRepository(pool)

	admin := createUser(t, ur, "admin", domain.RoleAdmin)
	alice := createUser(t, ur, "alice", domain.RoleUser)
	bob := createUser(t, ur, "bob", domain.RoleUser)

	task := newTask(t, admin, alice, "review")
	if err := tr.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tr.Assign(ctx, task.ID, bob.ID, admin.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	a, err := ur.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	b, err := ur.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if len(a.Tasks) != 0 {
		t.Fatalf("alice should no longer hold the task: %v", a.Tasks)
	}
	if len(b.Tasks) != 1 || b.Tasks[0] != task.ID {
		t.Fatalf("bob should hold the task: %v", b.Tasks)
	}
}

func TestTaskRepository_CreateBatchAllOrNothing(t *testing.T) {
	pool := connectDB(t)
	ctx := context.Background()
	ur := repository.NewUserRepository(pool)
	tr := repository.NewTaskRepository(pool)

	admin := createUser(t, ur, "admin", domain.RoleAdmin)
	alice := createUser(t, ur, "alice", domain.RoleUser)

	first := newTask(t, admin, alice, "one")
	dup := newTask(t, admin, alice, "two")
	dup.ID = first.ID

	if err := tr.CreateBatch(ctx, []*domain.Task{first, dup}); err == nil {
		t.Fatalf("expected duplicate id to fail the batch")
	}
	if _, err := tr.GetByID(ctx, first.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("batch was partially written: %v", err)
	}
}

func TestUserRepository_Duplicate(t *testing.T) {
	pool := connectDB(t)
	ur := repository.NewUserRepository(pool)

	u := createUser(t, ur, "dup", domain.RoleUser)
	again := &domain.User{Name: u.Name, Email: "other-" + u.Email}
	if err := ur.Create(context.Background(), again); !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
