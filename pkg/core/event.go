package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted by the agent loop.
type EventType string

const (
	EventTaskStarted   EventType = "agent.task.started"
	EventPlanReady     EventType = "agent.plan.ready"
	EventStepCompleted EventType = "agent.step.completed"
	EventStepFailed    EventType = "agent.step.failed"
	EventTaskCompleted EventType = "agent.task.completed"
	EventTaskAborted   EventType = "agent.task.aborted"
)

// Event captures a semantic streaming/logging event.
type Event struct {
	Type      EventType
	Agent     string
	TaskID    string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is the default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType EventType, agent, taskID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		Agent:     agent,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
