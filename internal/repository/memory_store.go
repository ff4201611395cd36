package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps tasks, users and audit entries in process memory. It is
// used with STORE_DRIVER=memory and in tests. Records are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[string]*domain.Task
	order  []string
	users  map[string]*domain.User
	audit  []*domain.AuditLog
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*domain.Task),
		users: make(map[string]*domain.User),
		now:   time.Now,
	}
}

// Tasks returns the task store view.
func (m *MemoryStore) Tasks() *MemoryTasks { return &MemoryTasks{m: m} }

// Users returns the user store view.
func (m *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Audit returns the audit log view.
func (m *MemoryStore) Audit() *MemoryAudit { return &MemoryAudit{m: m} }

type MemoryTasks struct{ m *MemoryStore }

func (s *MemoryTasks) Create(ctx context.Context, t *domain.Task) error {
	return s.CreateBatch(ctx, []*domain.Task{t})
}

func (s *MemoryTasks) CreateBatch(_ context.Context, tasks []*domain.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := s.m.tasks[t.ID]; ok || seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %s", domain.ErrValidation, t.ID)
		}
		if t.AssignedTo != nil {
			if _, ok := s.m.users[*t.AssignedTo]; !ok {
				return fmt.Errorf("%w: %s", domain.ErrUserNotFound, *t.AssignedTo)
			}
		}
		seen[t.ID] = true
	}

	for _, t := range tasks {
		s.m.tasks[t.ID] = copyTask(t)
		s.m.order = append(s.m.order, t.ID)
	}
	return nil
}

func (s *MemoryTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return copyTask(t), nil
}

func (s *MemoryTasks) ListByOwner(_ context.Context, userID string, role domain.Role) ([]*domain.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	res := []*domain.Task{}
	for _, id := range s.m.order {
		t := s.m.tasks[id]
		if role == domain.RoleAdmin {
			if t.AssignedBy == userID {
				res = append(res, copyTask(t))
			}
			continue
		}
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			res = append(res, copyTask(t))
		}
	}
	return res, nil
}

func (s *MemoryTasks) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	cur, ok := s.m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	next := copyTask(cur)
	if err := next.Apply(patch, s.m.now().UTC()); err != nil {
		return nil, err
	}
	s.m.tasks[id] = next
	return copyTask(next), nil
}

func (s *MemoryTasks) Delete(_ context.Context, id string) (*domain.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	delete(s.m.tasks, id)
	for i, v := range s.m.order {
		if v == id {
			s.m.order = append(s.m.order[:i], s.m.order[i+1:]...)
			break
		}
	}
	return t, nil
}

func (s *MemoryTasks) Assign(_ context.Context, taskID, userID, assignedBy string) (*domain.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	cur, ok := s.m.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}
	if _, ok := s.m.users[userID]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}

	next := copyTask(cur)
	to := userID
	next.AssignedTo = &to
	next.AssignedBy = assignedBy
	next.AssignedByAdmin = true
	next.Version++
	next.UpdatedAt = s.m.now().UTC()
	s.m.tasks[taskID] = next
	return copyTask(next), nil
}

type MemoryUsers struct{ m *MemoryStore }

// Create stores u, generating an id when it has none.
func (s *MemoryUsers) Create(_ context.Context, u *domain.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.users {
		if strings.EqualFold(existing.Name, u.Name) || (u.Email != "" && strings.EqualFold(existing.Email, u.Email)) {
			return fmt.Errorf("%w: %s", ErrUserExists, u.Name)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if !u.Role.Valid() {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.m.now().UTC()
	}
	cp := *u
	cp.Tasks = nil
	s.m.users[u.ID] = &cp
	return nil
}

func (s *MemoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return s.m.withTasks(u), nil
}

func (s *MemoryUsers) GetByName(_ context.Context, name string) (*domain.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	for _, u := range s.m.users {
		if u.Name == name {
			return s.m.withTasks(u), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, name)
}

func (s *MemoryUsers) List(_ context.Context) ([]*domain.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	res := make([]*domain.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		res = append(res, s.m.withTasks(u))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *MemoryTasks) Stats(_ context.Context, now, today time.Time, top int) (*domain.TaskStats, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	stats := domain.NewTaskStats()
	stats.TotalUsers = int64(len(s.m.users))
	weekAgo := today.Add(-7 * 24 * time.Hour)

	open := map[string]int64{}
	for _, t := range s.m.tasks {
		stats.TotalTasks++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if !t.CreatedAt.Before(today) {
			stats.CreatedToday++
		}
		if !t.CreatedAt.Before(weekAgo) {
			stats.CreatedWeek++
		}
		if t.Status == domain.StatusCompleted {
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			stats.Overdue++
		}
		if t.AssignedTo != nil {
			if _, ok := s.m.users[*t.AssignedTo]; ok {
				open[*t.AssignedTo]++
			}
		}
	}

	for id, n := range open {
		stats.TopAssignees = append(stats.TopAssignees, domain.AssigneeLoad{UserID: id, Name: s.m.users[id].Name, Open: n})
	}
	sort.Slice(stats.TopAssignees, func(i, j int) bool {
		a, b := stats.TopAssignees[i], stats.TopAssignees[j]
		if a.Open != b.Open {
			return a.Open > b.Open
		}
		return a.Name < b.Name
	})
	if len(stats.TopAssignees) > top {
		stats.TopAssignees = stats.TopAssignees[:top]
	}
	return stats, nil
}

// withTasks must be called with mu held.
func (m *MemoryStore) withTasks(u *domain.User) *domain.User {
	cp := *u
	cp.Tasks = []string{}
	for _, id := range m.order {
		if t := m.tasks[id]; t.AssignedTo != nil && *t.AssignedTo == u.ID {
			cp.Tasks = append(cp.Tasks, id)
		}
	}
	sort.Strings(cp.Tasks)
	return &cp
}

type MemoryAudit struct{ m *MemoryStore }

func (s *MemoryAudit) Create(_ context.Context, log *domain.AuditLog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.m.nextID++
	log.ID = s.m.nextID
	log.CreatedAt = s.m.now().UTC()
	cp := *log
	s.m.audit = append(s.m.audit, &cp)
	return nil
}

func (s *MemoryAudit) GetByUserID(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	res := []*domain.AuditLog{}
	for i := len(s.m.audit) - 1; i >= 0 && len(res) < limit; i-- {
		if s.m.audit[i].UserID == userID {
			cp := *s.m.audit[i]
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *MemoryAudit) GetRecent(_ context.Context, limit int) ([]*domain.AuditLog, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	res := []*domain.AuditLog{}
	for i := len(s.m.audit) - 1; i >= 0 && len(res) < limit; i-- {
		cp := *s.m.audit[i]
		res = append(res, &cp)
	}
	return res, nil
}

func copyTask(t *domain.Task) *domain.Task {
	cp := *t
	if t.Description != nil {
		d := *t.Description
		cp.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	if t.AssignedTo != nil {
		to := *t.AssignedTo
		cp.AssignedTo = &to
	}
	return &cp
}
