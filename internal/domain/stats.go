package domain

// TaskStats is the admin overview of the whole board.
type TaskStats struct {
	TotalUsers   int64              `json:"total_users"`
	TotalTasks   int64              `json:"total_tasks"`
	ByStatus     map[Status]int64   `json:"by_status"`
	ByPriority   map[Priority]int64 `json:"by_priority"`
	Overdue      int64              `json:"overdue"`       // due in the past and not completed
	CreatedToday int64              `json:"created_today"` // since UTC midnight
	CreatedWeek  int64              `json:"created_week"`
	TopAssignees []AssigneeLoad     `json:"top_assignees"`
}

// AssigneeLoad counts the open (not completed) tasks held by one user.
type AssigneeLoad struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Open   int64  `json:"open"`
}

// NewTaskStats returns stats with every status and priority present.
func NewTaskStats() *TaskStats {
	s := &TaskStats{
		ByStatus:     make(map[Status]int64, len(Statuses)),
		ByPriority:   make(map[Priority]int64, 3),
		TopAssignees: []AssigneeLoad{},
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		s.ByPriority[p] = 0
	}
	return s
}
