package client

import (
	"sync"

	"github.com/mohitdudhat22/Task-Management-App/internal/board"
	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

// Board is the local three-bucket copy of the caller's tasks.
type Board struct {
	mu      sync.RWMutex
	buckets map[domain.Status][]*domain.Task
}

func NewBoard() *Board {
	return &Board{buckets: board.GroupByStatus(nil)}
}

// Replace swaps every bucket for the given server list.
func (b *Board) Replace(tasks []*domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buckets = board.GroupByStatus(tasks)
}

func (b *Board) Bucket(s domain.Status) []*domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*domain.Task, len(b.buckets[s]))
	copy(out, b.buckets[s])
	return out
}

// All flattens the buckets in board order, ready for board.View.
func (b *Board) All() []*domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*domain.Task
	for _, s := range domain.Statuses {
		out = append(out, b.buckets[s]...)
	}
	return out
}

func (b *Board) Find(id string) (*domain.Task, domain.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range domain.Statuses {
		for _, t := range b.buckets[s] {
			if t.ID == id {
				return t, s, true
			}
		}
	}
	return nil, "", false
}

// Upsert moves t into the bucket of its status, replacing any record with
// the same id. Unknown statuses land in current.
func (b *Board) Upsert(t *domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(t.ID, "")
	s := bucketFor(t.Status)
	b.buckets[s] = append(b.buckets[s], t)
}

// Remove deletes id from the named bucket, or from any bucket when status is
// empty. It reports whether a record was removed.
func (b *Board) Remove(id string, status domain.Status) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(id, status)
}

// Insert places t at index in bucket s, clamping index to the bucket size.
func (b *Board) Insert(s domain.Status, index int, t *domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(t.ID, "")
	list := b.buckets[s]
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = t
	b.buckets[s] = list
}

// Snapshot is a copy of the bucket layout for rollback.
type Snapshot map[domain.Status][]*domain.Task

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(Snapshot, len(b.buckets))
	for s, list := range b.buckets {
		out[s] = append([]*domain.Task(nil), list...)
	}
	return out
}

func (b *Board) Restore(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buckets = board.GroupByStatus(nil)
	for s, list := range snap {
		b.buckets[s] = append([]*domain.Task(nil), list...)
	}
}

func (b *Board) removeLocked(id string, status domain.Status) bool {
	for _, s := range domain.Statuses {
		if status != "" && s != status {
			continue
		}
		list := b.buckets[s]
		for i, t := range list {
			if t.ID == id {
				b.buckets[s] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func bucketFor(s domain.Status) domain.Status {
	for _, known := range domain.Statuses {
		if s == known {
			return s
		}
	}
	return domain.StatusCurrent
}
