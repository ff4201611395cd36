// Package board filters and orders the flattened task list shown on a board.
package board

import (
	"sort"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

// Filters maps a task field name to the value it must match. Empty values
// are ignored.
type Filters map[string]string

type SortKey string

const (
	SortNone     SortKey = ""
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
)

// View is ViewIn with the local time zone.
func View(tasks []*domain.Task, f Filters, sortBy SortKey) []*domain.Task {
	return ViewIn(time.Local, tasks, f, sortBy)
}

// ViewIn returns the tasks matching every filter, ordered by sortBy. Due
// dates are compared as calendar days in loc. The input slice is not modified.
func ViewIn(loc *time.Location, tasks []*domain.Task, f Filters, sortBy SortKey) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(loc, t, f) {
			out = append(out, t)
		}
	}

	switch sortBy {
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	case SortStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status < out[j].Status
		})
	}
	return out
}

func matches(loc *time.Location, t *domain.Task, f Filters) bool {
	for field, want := range f {
		if strings.TrimSpace(want) == "" {
			continue
		}
		if !fieldMatches(loc, t, field, want) {
			return false
		}
	}
	return true
}

func fieldMatches(loc *time.Location, t *domain.Task, field, want string) bool {
	switch field {
	case "id":
		return t.ID == want
	case "title":
		return t.Title == want
	case "description":
		return t.Description != nil && *t.Description == want
	case "status":
		return strings.EqualFold(string(t.Status), strings.TrimSpace(want))
	case "priority":
		return strings.EqualFold(string(t.Priority), strings.TrimSpace(want))
	case "assignedTo":
		return t.AssignedTo != nil && *t.AssignedTo == want
	case "assignedBy":
		return t.AssignedBy == want
	case "dueDate":
		if t.DueDate == nil {
			return false
		}
		day, ok := parseDay(loc, want)
		if !ok {
			return false
		}
		return sameDay(t.DueDate.In(loc), day)
	}
	return false
}

// parseDay reads a plain date as that calendar day in loc and any timestamp
// as the day it falls on in loc.
func parseDay(loc *time.Location, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02-01-2006"} {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return d, true
		}
	}
	d, err := domain.ParseDueDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return d.In(loc), true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GroupByStatus splits tasks into the three board buckets, keeping order.
func GroupByStatus(tasks []*domain.Task) map[domain.Status][]*domain.Task {
	out := make(map[domain.Status][]*domain.Task, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out[s] = []*domain.Task{}
	}
	for _, t := range tasks {
		s := t.Status
		if _, ok := out[s]; !ok {
			s = domain.StatusCurrent
		}
		out[s] = append(out[s], t)
	}
	return out
}
