package models

import (
	"time"
)

// TaskStatus is a task board column
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskPriority orders tasks within a column
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// PriorityRank maps a priority to its sort weight. Used for the
// priority-descending task ordering on both the database and the
// local-document read path.
func PriorityRank(p TaskPriority) int {
	switch p {
	case TaskPriorityUrgent:
		return 4
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// Task is a single task board item
type Task struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Assignee    string       `json:"assignee" db:"assignee"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty" db:"due_date"`
	ExternalID  *string      `json:"external_id,omitempty" db:"external_id"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// TaskFilter is the set of equality filters accepted by task list reads
type TaskFilter struct {
	Status   string
	Assignee string
	Priority string
}

// CreateTaskRequest is the request body for creating a task
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Assignee    string  `json:"assignee,omitempty"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *string `json:"due_date,omitempty"`
	ExternalID  *string `json:"external_id,omitempty"`
}

// UpdateTaskRequest is the request body for patching a task
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *string `json:"due_date,omitempty"`
}

// TaskWriteResponse is returned by task create. Fallback is true when the
// primary store was unavailable and the task was appended to the local
// document instead, so callers can tell durable writes from local-only ones.
type TaskWriteResponse struct {
	Task
	Fallback bool `json:"fallback"`
}
