// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent orchestrates the plan-execute-remember loop: it plans a
// goal against the registered skills, executes each step, and records
// outcomes in memory so later runs on the same goal start informed.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stride-agent/stride/pkg/core"
	"github.com/stride-agent/stride/pkg/memory"
	"github.com/stride-agent/stride/pkg/planner"
	"github.com/stride-agent/stride/pkg/skills"
	"github.com/stride-agent/stride/pkg/telemetry"
)

const defaultMaxIterations = 10

// Agent runs goals to completion. A run is considered successful when a
// strict majority of its planned steps succeed.
type Agent struct {
	name          string
	planner       *planner.Planner
	memory        *memory.Store
	registry      *skills.Registry
	audit         memory.AuditStore
	events        core.EventEmitter
	maxIterations int
	tracer        trace.Tracer
}

// Option configures an Agent instance.
type Option func(*Agent)

// WithName sets the agent name used in events and task records.
func WithName(name string) Option {
	return func(a *Agent) {
		if name != "" {
			a.name = name
		}
	}
}

// WithPlanner sets the planner.
func WithPlanner(p *planner.Planner) Option {
	return func(a *Agent) { a.planner = p }
}

// WithMemory sets the memory store.
func WithMemory(m *memory.Store) Option {
	return func(a *Agent) { a.memory = m }
}

// WithRegistry sets the skill registry.
func WithRegistry(r *skills.Registry) Option {
	return func(a *Agent) { a.registry = r }
}

// WithMaxIterations caps the number of steps executed per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithAuditStore attaches an execution audit trail. Audit failures are
// logged and never affect the run outcome.
func WithAuditStore(s memory.AuditStore) Option {
	return func(a *Agent) { a.audit = s }
}

// WithEventEmitter attaches an event sink for run lifecycle events.
func WithEventEmitter(e core.EventEmitter) Option {
	return func(a *Agent) { a.events = e }
}

// New creates an Agent.
func New(opts ...Option) *Agent {
	a := &Agent{
		name:          "stride",
		maxIterations: defaultMaxIterations,
		events:        core.NoopEventEmitter{},
		tracer:        otel.Tracer("stride/agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run plans and executes a goal. It returns true when a strict majority of
// planned steps succeeded. Run never panics: any internal failure is
// caught and reported as an unsuccessful run.
func (a *Agent) Run(ctx context.Context, goal string) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent.run.panic",
				slog.String("goal", goal),
				slog.Any("panic", r),
			)
			success = false
		}
	}()

	initRunMetrics()

	ctx, runID := core.EnsureRunID(ctx)

	ctx, span := a.tracer.Start(ctx, "agent.run",
		trace.WithAttributes(telemetry.AgentAttributes(runID, goal, a.maxIterations)...),
	)
	defer span.End()

	task := core.NewTask(goal, a.name)
	a.events.Emit(ctx, core.NewEvent(core.EventTaskStarted, a.name, task.ID, map[string]any{"goal": goal}))

	slog.Info("agent.run.start",
		slog.String("goal", goal),
		slog.String("run_id", runID),
		slog.String("task_id", task.ID),
	)
	runCounter.Add(ctx, 1)

	task.StartPlanning()
	priorContext := a.memory.RecentContext(ctx, goal, 0)
	plan := a.planner.Plan(ctx, goal, priorContext)
	span.SetAttributes(telemetry.PlanAttributes(len(plan), false)...)

	if len(plan) == 0 {
		task.Abort("empty plan")
		a.events.Emit(ctx, core.NewEvent(core.EventTaskAborted, a.name, task.ID, nil))
		slog.Warn("agent.run.empty_plan", slog.String("goal", goal))
		span.SetStatus(codes.Error, "empty plan")
		return false
	}

	a.events.Emit(ctx, core.NewEvent(core.EventPlanReady, a.name, task.ID, map[string]any{
		"steps":   len(plan),
		"actions": planner.SortedActions(plan),
	}))

	task.StartExecuting()
	executed := 0
	succeeded := 0
	for i, step := range plan {
		iteration := i + 1
		if iteration > a.maxIterations {
			slog.Warn("agent.run.iteration_cap",
				slog.String("goal", goal),
				slog.Int("max_iterations", a.maxIterations),
				slog.Int("dropped_steps", len(plan)-executed),
			)
			break
		}
		executed++
		if a.executeStep(ctx, task, goal, iteration, step) {
			succeeded++
		}
	}

	// Steps dropped by the iteration cap count against the run: the
	// denominator is the full plan, not just what executed.
	success = len(plan) > 0 && float64(succeeded)/float64(len(plan)) > 0.5
	summary := fmt.Sprintf("%d/%d steps succeeded", succeeded, len(plan))
	if success {
		task.Complete(summary)
		a.events.Emit(ctx, core.NewEvent(core.EventTaskCompleted, a.name, task.ID, map[string]any{
			"executed":  executed,
			"succeeded": succeeded,
		}))
		span.SetStatus(codes.Ok, "")
	} else {
		task.Abort(summary)
		a.events.Emit(ctx, core.NewEvent(core.EventTaskAborted, a.name, task.ID, map[string]any{
			"executed":  executed,
			"succeeded": succeeded,
		}))
		span.SetStatus(codes.Error, "majority of steps failed")
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrAgentSuccess, success))

	slog.Info("agent.run.done",
		slog.String("goal", goal),
		slog.Int("executed", executed),
		slog.Int("succeeded", succeeded),
		slog.Bool("success", success),
	)
	if success {
		runSuccessCounter.Add(ctx, 1)
	}
	return success
}

// executeStep resolves and runs a single step, records the outcome in
// memory and the audit trail, and reports whether the step succeeded.
func (a *Agent) executeStep(ctx context.Context, task *core.Task, goal string, iteration int, step core.Step) bool {
	ctx, span := a.tracer.Start(ctx, "agent.step")
	defer span.End()

	started := time.Now()

	skill, err := a.registry.Resolve(step.Action)
	var result string
	ok := false
	if err != nil {
		result = "Error: " + err.Error()
		slog.Warn("agent.step.unresolved",
			slog.String("goal", goal),
			slog.Int("iteration", iteration),
			slog.String("action", step.Action),
		)
	} else {
		output, execErr := skill(ctx, step.Params)
		if execErr != nil {
			result = "Error: " + execErr.Error()
			slog.Warn("agent.step.failed",
				slog.String("goal", goal),
				slog.Int("iteration", iteration),
				slog.String("action", step.Action),
				slog.String("error", execErr.Error()),
			)
		} else {
			result = output
			ok = true
			slog.Debug("agent.step.ok",
				slog.String("goal", goal),
				slog.Int("iteration", iteration),
				slog.String("action", step.Action),
			)
		}
	}

	durationMs := float64(time.Since(started).Microseconds()) / 1000.0
	span.SetAttributes(telemetry.StepAttributes(iteration, step.Action, ok, durationMs)...)
	stepCounter.Add(ctx, 1)
	stepLatencyMs.Record(ctx, durationMs)

	a.memory.Store(ctx, goal, step, result)

	eventType := core.EventStepCompleted
	status := memory.AuditStatusSucceeded
	if !ok {
		eventType = core.EventStepFailed
		status = memory.AuditStatusFailed
	}
	a.events.Emit(ctx, core.NewEvent(eventType, a.name, task.ID, map[string]any{
		"iteration": iteration,
		"action":    step.Action,
	}))

	if a.audit != nil {
		runID, _ := core.RunID(ctx)
		event := memory.AuditEvent{
			Goal:       goal,
			RunID:      runID,
			Action:     step.Action,
			Status:     status,
			Result:     memory.TruncateResult(result, 1000),
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if !ok {
			event.Error = result
			event.Result = ""
		}
		if err := a.audit.Record(ctx, event); err != nil {
			slog.Warn("agent.audit.record_error", slog.String("error", err.Error()))
		}
	}

	return ok
}

// Status summarizes the agent's current state.
type Status struct {
	Memory      memory.Stats `json:"memory"`
	SkillCount  int          `json:"skill_count"`
	RecentGoals []string     `json:"recent_goals"`
}

// Status reports memory stats, the number of registered skills, and the
// five most recent goals with stored memory.
func (a *Agent) Status(ctx context.Context) Status {
	goals := a.memory.Goals()
	if len(goals) > 5 {
		goals = goals[len(goals)-5:]
	}
	return Status{
		Memory:      a.memory.Stats(),
		SkillCount:  a.registry.Len(),
		RecentGoals: goals,
	}
}

// ClearMemory removes all stored memory for a goal.
func (a *Agent) ClearMemory(ctx context.Context, goal string) {
	a.memory.ClearGoal(ctx, goal)
	slog.Info("agent.memory.cleared", slog.String("goal", goal))
}

// RecallMemory returns the stored context digest for a goal, or the
// no-context sentinel when nothing is stored.
func (a *Agent) RecallMemory(ctx context.Context, goal string) string {
	return a.memory.RecentContext(ctx, goal, 0)
}

// SkillCatalogue returns "name: description" lines for every registered
// skill, sorted by name.
func (a *Agent) SkillCatalogue() []string {
	names := a.registry.List()
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name+": "+a.registry.Describe(name))
	}
	return out
}
