// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package planner turns a natural-language goal into an executable plan of
// skill invocations. The model is asked for a JSON array of steps; anything
// that cannot be salvaged from its reply degrades to a deterministic
// fallback plan, so planning never fails outright.
package planner

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/stride-agent/stride/pkg/core"
	"github.com/stride-agent/stride/pkg/llm"
	"github.com/stride-agent/stride/pkg/resilience"
	"github.com/stride-agent/stride/pkg/skills"
)

const (
	planMaxTokens   = 1024
	planTemperature = 0.3
)

// Planner produces plans from goals using a completion model and the set of
// currently registered skills.
type Planner struct {
	completer   llm.Completer
	registry    *skills.Registry
	retry       resilience.RetryConfig
	maxTokens   int
	temperature float64
}

// Option configures a Planner.
type Option func(*Planner)

// WithRetry overrides the retry policy applied to model calls.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(p *Planner) {
		p.retry = rc
	}
}

// WithCompletionLimits overrides the token budget and temperature of
// planning calls. Zero values keep the defaults.
func WithCompletionLimits(maxTokens int, temperature float64) Option {
	return func(p *Planner) {
		if maxTokens > 0 {
			p.maxTokens = maxTokens
		}
		if temperature > 0 {
			p.temperature = temperature
		}
	}
}

// New creates a Planner. The registry defines which actions a plan may use.
func New(completer llm.Completer, registry *skills.Registry, opts ...Option) *Planner {
	p := &Planner{
		completer:   completer,
		registry:    registry,
		maxTokens:   planMaxTokens,
		temperature: planTemperature,
		retry: resilience.DefaultRetryConfig().
			WithMaxAttempts(2).
			WithInitialDelay(250 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan asks the model for a plan and validates it against the registry.
// It never returns an error: provider failures and undecodable replies fall
// back to a deterministic plan derived from the goal text. A reply that
// decodes but survives validation with zero steps is returned empty as-is;
// rejecting an unusable plan is the caller's decision.
func (p *Planner) Plan(ctx context.Context, goal, priorContext string) core.Plan {
	prompt := p.buildPrompt(goal, priorContext)

	var resp *llm.CompletionResponse
	err := p.retry.Do(ctx, func() error {
		var callErr error
		resp, callErr = p.completer.Complete(ctx, llm.CompletionRequest{
			Prompt:      prompt,
			MaxTokens:   p.maxTokens,
			Temperature: p.temperature,
		})
		return callErr
	})
	if err != nil {
		slog.Warn("planner.llm_error",
			slog.String("goal", goal),
			slog.String("error", err.Error()),
		)
		return p.Fallback(goal)
	}

	raw, err := DecodeSteps(resp.Text)
	if err != nil {
		slog.Warn("planner.malformed_plan",
			slog.String("goal", goal),
			slog.String("error", err.Error()),
		)
		return p.Fallback(goal)
	}

	steps := ValidateSteps(raw, p.registry)
	if len(steps) == 0 {
		slog.Warn("planner.empty_plan", slog.String("goal", goal))
		return steps
	}

	slog.Debug("planner.plan_ready",
		slog.String("goal", goal),
		slog.Int("steps", len(steps)),
	)
	return steps
}

// Fallback returns the deterministic plan used when the model is
// unavailable or its reply cannot be decoded. Goals that mention patching
// or improving code get an extra flow-tracing step.
func (p *Planner) Fallback(goal string) core.Plan {
	plan := core.Plan{
		core.NewStep("generate_task_code", map[string]any{"task": goal}),
	}
	lower := strings.ToLower(goal)
	if strings.Contains(lower, "patch") || strings.Contains(lower, "improve") {
		plan = append(plan, core.NewStep("trace_variable_flow", map[string]any{"target": goal}))
	}
	return plan
}

// buildPrompt assembles the planning prompt: goal, prior context, and the
// skill catalogue as "- name: description" lines.
func (p *Planner) buildPrompt(goal, priorContext string) string {
	var b strings.Builder
	b.WriteString("You are a planning assistant for an autonomous coding agent.\n\n")
	b.WriteString("Goal: ")
	b.WriteString(goal)
	b.WriteString("\n\nPrior context:\n")
	b.WriteString(priorContext)
	b.WriteString("\n\nAvailable skills:\n")
	for _, name := range p.registry.List() {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(p.registry.Describe(name))
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with a JSON array of steps. Each step is an object ")
	b.WriteString(`with an "action" field naming a skill and a "params" object. `)
	b.WriteString("Respond with the JSON array only, no prose.\n")
	return b.String()
}

// ValidateSteps filters decoded steps against the registry. Steps that are
// not objects, lack an action, or name an unregistered skill are dropped;
// missing or malformed params become an empty map. The result may be empty.
func ValidateSteps(raw []map[string]any, registry *skills.Registry) core.Plan {
	steps := make(core.Plan, 0, len(raw))
	for _, item := range raw {
		action, ok := item["action"].(string)
		if !ok || action == "" {
			continue
		}
		if _, err := registry.Resolve(action); err != nil {
			slog.Debug("planner.unknown_action", slog.String("action", action))
			continue
		}
		params, ok := item["params"].(map[string]any)
		if !ok {
			params = map[string]any{}
		}
		steps = append(steps, core.Step{Action: action, Params: params})
	}
	return steps
}

// SortedActions returns the distinct actions of a plan in sorted order.
// Used for logs and audit summaries.
func SortedActions(steps core.Plan) []string {
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		seen[s.Action] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
