package domain

// Internal event names, used between the task service and the relay.
const (
	EventTaskCreated = "new-task"
	EventTaskUpdated = "task-updated"
	EventTaskDeleted = "task-deleted"
)

// Client-facing names, the ones subscribers listen for.
const (
	WireTaskCreated = "add-new-task"
	WireTaskUpdated = "update-task-list"
	WireTaskDeleted = "delete-task"
)

// WireName maps an internal event name to the name sent to clients.
func WireName(event string) string {
	switch event {
	case EventTaskCreated:
		return WireTaskCreated
	case EventTaskUpdated:
		return WireTaskUpdated
	case EventTaskDeleted:
		return WireTaskDeleted
	}
	return event
}

type DeletedTask struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Event is a task change scoped to the users allowed to see it.
type Event struct {
	Name     string       `json:"name"`
	Task     *Task        `json:"task,omitempty"`
	Deleted  *DeletedTask `json:"deleted,omitempty"`
	Audience []string     `json:"audience"`
}

// Payload is what subscribers receive as the frame's data.
func (e Event) Payload() any {
	if e.Deleted != nil {
		return e.Deleted
	}
	return e.Task
}

// Visible reports whether userID is in the event audience.
func (e Event) Visible(userID string) bool {
	for _, id := range e.Audience {
		if id == userID {
			return true
		}
	}
	return false
}
