package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

type stubStats struct {
	now, since time.Time
	top        int
}

func (s *stubStats) Stats(_ context.Context, now, since time.Time, top int) (*domain.TaskStats, error) {
	s.now, s.since, s.top = now, since, top
	return domain.NewTaskStats(), nil
}

func TestAdminService_GetStats(t *testing.T) {
	store := &stubStats{}
	svc := NewAdminService(store)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC) }

	if _, err := svc.GetStats(context.Background(), domain.Identity{UserID: "u", Role: domain.RoleUser}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stats, err := svc.GetStats(context.Background(), domain.Identity{UserID: "a", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if len(stats.ByStatus) != 3 {
		t.Fatalf("every status should be reported, got %v", stats.ByStatus)
	}
	if !store.since.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) || store.top != topAssignees {
		t.Fatalf("unexpected window since=%v top=%d", store.since, store.top)
	}
}
