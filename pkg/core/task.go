package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus describes the lifecycle state of a goal execution.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusPlanning  TaskStatus = "planning"
	TaskStatusExecuting TaskStatus = "executing"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusAborted   TaskStatus = "aborted"
)

// Task tracks one goal invocation through the agent loop.
type Task struct {
	ID         string
	Goal       string
	AssignedTo string
	Status     TaskStatus
	Result     string
	Error      string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewTask creates a pending task with a generated ID.
func NewTask(goal, assignedTo string) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Goal:       goal,
		AssignedTo: assignedTo,
		Status:     TaskStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// StartPlanning marks the task as planning.
func (t *Task) StartPlanning() {
	t.Status = TaskStatusPlanning
	t.StartedAt = time.Now().UTC()
}

// StartExecuting marks the task as executing steps.
func (t *Task) StartExecuting() {
	t.Status = TaskStatusExecuting
	if t.StartedAt.IsZero() {
		t.StartedAt = time.Now().UTC()
	}
}

// Complete marks the task completed with a result summary.
func (t *Task) Complete(result string) {
	t.Status = TaskStatusCompleted
	t.Result = result
	t.FinishedAt = time.Now().UTC()
}

// Abort marks the task aborted with a reason.
func (t *Task) Abort(reason string) {
	t.Status = TaskStatusAborted
	t.Error = reason
	t.FinishedAt = time.Now().UTC()
}
