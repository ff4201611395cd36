package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Name)
	}
	return out
}

// countingTasks counts reads and writes that reach the store.
type countingTasks struct {
	TaskStore
	calls int
}

func (c *countingTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	c.calls++
	return c.TaskStore.GetByID(ctx, id)
}

func (c *countingTasks) Assign(ctx context.Context, taskID, userID, by string) (*domain.Task, error) {
	c.calls++
	return c.TaskStore.Assign(ctx, taskID, userID, by)
}

type fixture struct {
	store *repository.MemoryStore
	pub   *recordingPublisher
	svc   *TaskService
	admin domain.Identity
	alice domain.Identity
	bob   domain.Identity
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: repository.NewMemoryStore(),
		pub:   &recordingPublisher{},
		now:   time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	mk := func(name string, role domain.Role) domain.Identity {
		u := &domain.User{Name: name, Email: name + "@example.com", Role: role}
		if err := f.store.Users().Create(context.Background(), u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		return domain.Identity{UserID: u.ID, Role: role}
	}
	f.admin = mk("admin", domain.RoleAdmin)
	f.alice = mk("alice", domain.RoleUser)
	f.bob = mk("bob", domain.RoleUser)

	audit := NewAuditService(f.store.Audit())
	f.svc = NewTaskService(f.store.Tasks(), f.store.Users(), f.pub,
		WithAuditor(audit),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func TestCreate_DefaultsAndEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "Write report"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != domain.StatusCurrent || task.Priority != domain.PriorityLow {
		t.Fatalf("defaults not applied: %+v", task)
	}
	if task.AssignedBy != f.alice.UserID || task.AssignedTo == nil || *task.AssignedTo != f.alice.UserID {
		t.Fatalf("expected self assignment, got by=%s to=%v", task.AssignedBy, task.AssignedTo)
	}
	if task.AssignedByAdmin {
		t.Fatalf("regular user task flagged as admin assigned")
	}
	if got := f.pub.names(); len(got) != 1 || got[0] != domain.EventTaskCreated {
		t.Fatalf("expected one new-task event, got %v", got)
	}

	logs, _ := f.store.Audit().GetRecent(ctx, 10)
	if len(logs) != 1 || logs[0].Action != domain.AuditActionTaskCreate {
		t.Fatalf("expected a create audit entry, got %+v", logs)
	}
}

func TestCreate_UnknownAssignee(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, domain.TaskInput{Title: "x", AssignedTo: "not-a-user"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(f.pub.names()) != 0 {
		t.Fatalf("no event expected on failure")
	}
}

func TestCreate_InvalidStatusPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "x", Status: "archived"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	tasks, _ := f.svc.List(ctx, f.alice)
	if len(tasks) != 0 {
		t.Fatalf("invalid task persisted: %+v", tasks)
	}
}

func TestList_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.admin, domain.TaskInput{Title: "for alice", AssignedTo: f.alice.UserID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.bob, domain.TaskInput{Title: "bob's own"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name string
		who  domain.Identity
		want int
	}{
		{"admin sees what they assigned", f.admin, 1},
		{"alice sees her assignment", f.alice, 1},
		{"bob sees only his own", f.bob, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.List(ctx, tc.who)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d tasks, want %d", len(got), tc.want)
			}
		})
	}
}

func TestEdit_VersionConflictAndEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, _ := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "a"})

	status := "pending"
	v := task.Version
	edited, err := f.svc.Edit(ctx, f.alice, task.ID, domain.TaskPatch{Status: &status, Version: &v})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Status != domain.StatusPending || edited.Version != v+1 {
		t.Fatalf("unexpected edit result %+v", edited)
	}

	_, err = f.svc.Edit(ctx, f.alice, task.ID, domain.TaskPatch{Status: &status, Version: &v})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	names := f.pub.names()
	if len(names) != 2 || names[1] != domain.EventTaskUpdated {
		t.Fatalf("expected new-task then task-updated, got %v", names)
	}
}

func TestEdit_NotFound(t *testing.T) {
	f := newFixture(t)
	title := "x"
	_, err := f.svc.Edit(context.Background(), f.alice, "missing", domain.TaskPatch{Title: &title})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDelete_EventCarriesIDAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, _ := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "a", Status: "pending"})

	if _, err := f.svc.Delete(ctx, f.alice, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	last := f.pub.events[len(f.pub.events)-1]
	if last.Name != domain.EventTaskDeleted || last.Deleted == nil {
		t.Fatalf("expected task-deleted event, got %+v", last)
	}
	if last.Deleted.ID != task.ID || last.Deleted.Status != domain.StatusPending {
		t.Fatalf("unexpected delete payload %+v", last.Deleted)
	}

	if _, err := f.svc.Delete(ctx, f.alice, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestAssign_NonAdminForbiddenWithoutStoreAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, _ := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "a"})

	counting := &countingTasks{TaskStore: f.store.Tasks()}
	svc := NewTaskService(counting, f.store.Users(), f.pub)

	_, err := svc.Assign(ctx, f.alice, task.ID, f.bob.UserID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if counting.calls != 0 {
		t.Fatalf("store touched %d times for a forbidden assign", counting.calls)
	}
	stored, _ := f.store.Tasks().GetByID(ctx, task.ID)
	if *stored.AssignedTo != f.alice.UserID {
		t.Fatalf("task reassigned despite forbidden call")
	}
}

func TestAssign_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, _ := f.svc.Create(ctx, f.alice, domain.TaskInput{Title: "a"})

	got, err := f.svc.Assign(ctx, f.admin, task.ID, f.bob.UserID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if *got.AssignedTo != f.bob.UserID || got.AssignedBy != f.admin.UserID || !got.AssignedByAdmin {
		t.Fatalf("unexpected assignment %+v", got)
	}

	last := f.pub.events[len(f.pub.events)-1]
	for _, id := range []string{f.admin.UserID, f.bob.UserID, f.alice.UserID} {
		if !last.Visible(id) {
			t.Fatalf("user %s missing from audience %v", id, last.Audience)
		}
	}

	if _, err := f.svc.Assign(ctx, f.admin, task.ID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.svc.Assign(ctx, f.admin, "missing", f.bob.UserID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestBulkCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := []BulkItem{
		{Title: "one", Priority: "High", DueDate: "2026-07-01", AssignedTo: "alice"},
		{Title: "two", Status: "pending", AssignedTo: f.bob.UserID},
		{Title: "three"},
	}
	tasks, err := f.svc.BulkCreate(ctx, f.admin, items)
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if *tasks[0].AssignedTo != f.alice.UserID || *tasks[1].AssignedTo != f.bob.UserID || *tasks[2].AssignedTo != f.admin.UserID {
		t.Fatalf("assignees not resolved: %v %v %v", *tasks[0].AssignedTo, *tasks[1].AssignedTo, *tasks[2].AssignedTo)
	}
	if len(f.pub.names()) != 3 {
		t.Fatalf("expected one event per task, got %v", f.pub.names())
	}
}

func TestBulkCreate_RejectsWholeBatch(t *testing.T) {
	cases := []struct {
		name  string
		items []BulkItem
		want  string
	}{
		{"past due date", []BulkItem{{Title: "ok"}, {Title: "late", DueDate: "2026-05-01"}}, "late"},
		{"unknown user", []BulkItem{{Title: "ok"}, {Title: "orphan", AssignedTo: "nobody"}}, "nobody"},
		{"bad priority", []BulkItem{{Title: "ok"}, {Title: "odd", Priority: "urgent"}}, "odd"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.svc.BulkCreate(ctx, f.admin, tc.items)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err, tc.want)
			}
			tasks, _ := f.svc.List(ctx, f.admin)
			if len(tasks) != 0 {
				t.Fatalf("batch partially persisted: %d tasks", len(tasks))
			}
			if len(f.pub.names()) != 0 {
				t.Fatalf("events emitted for a rejected batch")
			}
		})
	}
}

func TestListUsers_HidesPasswordAndLinksTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task, _ := f.svc.Create(ctx, f.admin, domain.TaskInput{Title: "a", AssignedTo: f.alice.UserID})

	users, err := f.svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for _, u := range users {
		if u.ID == f.alice.UserID && (len(u.Tasks) != 1 || u.Tasks[0] != task.ID) {
			t.Fatalf("alice tasks = %v", u.Tasks)
		}
	}
}
