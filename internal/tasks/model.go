package tasks

import "time"

// Task is the only entity tracked by the service. ID and CreatedAt are
// assigned once on creation and never change afterwards.
type Task struct {
	ID          string
	Title       string
	Description string
	IsCompleted bool
	CreatedAt   time.Time
}
