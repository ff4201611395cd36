package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

const topAssignees = 5

// StatsStore aggregates task counts. since marks the start of "today".
type StatsStore interface {
	Stats(ctx context.Context, now, since time.Time, top int) (*domain.TaskStats, error)
}

// AdminService provides admin statistics
type AdminService struct {
	store StatsStore
	now   func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(store StatsStore) *AdminService {
	return &AdminService{store: store, now: time.Now}
}

// GetStats returns board statistics. Only admins may read them.
func (s *AdminService) GetStats(ctx context.Context, caller domain.Identity) (*domain.TaskStats, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)

	stats, err := s.store.Stats(ctx, now, today, topAssignees)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return stats, nil
}
