// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for agent observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Stride agent telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Agent attributes
	AttrAgentRunID   = "stride.agent.run_id"
	AttrAgentGoal    = "stride.agent.goal"
	AttrAgentMaxIter = "stride.agent.max_iterations"
	AttrAgentSuccess = "stride.agent.success"

	// Step attributes
	AttrStepIndex      = "stride.step.index"
	AttrStepAction     = "stride.step.action"
	AttrStepSuccess    = "stride.step.success"
	AttrStepDurationMs = "stride.step.duration_ms"

	// Plan attributes
	AttrPlanSteps    = "stride.plan.steps"
	AttrPlanFallback = "stride.plan.fallback"

	// Memory attributes
	AttrMemoryGoals   = "stride.memory.goals"
	AttrMemoryEntries = "stride.memory.entries"
	AttrMemoryStored  = "stride.memory.stored"

	// LLM attributes (extending standard gen_ai conventions)
	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
	AttrLLMTokensTotal  = "gen_ai.usage.total_tokens"
	AttrLLMDurationMs   = "gen_ai.duration_ms"

	// Task attributes
	AttrTaskID     = "stride.task.id"
	AttrTaskStatus = "stride.task.status"
)

// AgentAttributes returns common attributes for run spans.
func AgentAttributes(runID, goal string, maxIter int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentRunID, runID),
	}
	if goal != "" {
		if len(goal) > 200 {
			goal = goal[:200] + "..."
		}
		attrs = append(attrs, attribute.String(AttrAgentGoal, goal))
	}
	if maxIter > 0 {
		attrs = append(attrs, attribute.Int(AttrAgentMaxIter, maxIter))
	}
	return attrs
}

// StepAttributes returns attributes for a step execution span.
func StepAttributes(index int, action string, success bool, durationMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrStepIndex, index),
		attribute.String(AttrStepAction, action),
		attribute.Bool(AttrStepSuccess, success),
		attribute.Float64(AttrStepDurationMs, durationMs),
	}
}

// PlanAttributes returns attributes describing a produced plan.
func PlanAttributes(steps int, fallback bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrPlanSteps, steps),
		attribute.Bool(AttrPlanFallback, fallback),
	}
}

// MemoryAttributes returns attributes for memory operations.
func MemoryAttributes(goals, entries int, stored bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrMemoryGoals, goals),
		attribute.Int(AttrMemoryEntries, entries),
	}
	if stored {
		attrs = append(attrs, attribute.Bool(AttrMemoryStored, stored))
	}
	return attrs
}

// LLMAttributes returns attributes for completion call spans.
func LLMAttributes(model, provider string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMModel, model),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	return attrs
}

// LLMUsageAttributes returns token usage attributes.
func LLMUsageAttributes(inputTokens, outputTokens int, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if inputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensInput, inputTokens))
	}
	if outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensOutput, outputTokens))
	}
	if inputTokens > 0 || outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensTotal, inputTokens+outputTokens))
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrLLMDurationMs, durationMs))
	}
	return attrs
}

// TaskAttributes returns attributes for task tracking.
func TaskAttributes(taskID, status string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if taskID != "" {
		attrs = append(attrs, attribute.String(AttrTaskID, taskID))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrTaskStatus, status))
	}
	return attrs
}
