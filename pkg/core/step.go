// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package core defines the shared vocabulary of the Stride runtime:
// plan steps, task lifecycle, semantic events and context helpers.
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Step is a single planned action: a skill name plus its keyword-style
// parameters. Params is never nil after validation; a missing or malformed
// params field is coerced to an empty map.
type Step struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// NewStep builds a step with a non-nil params map.
func NewStep(action string, params map[string]any) Step {
	if params == nil {
		params = map[string]any{}
	}
	return Step{Action: action, Params: params}
}

// String renders the step for logs and prompts, with params in stable order.
func (s Step) String() string {
	if len(s.Params) == 0 {
		return s.Action
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, s.Params[k]))
	}
	return s.Action + "(" + strings.Join(parts, ", ") + ")"
}

// Plan is an ordered sequence of steps produced once per goal invocation.
// It is owned by the agent loop for the duration of a run and not persisted;
// only execution outcomes reach the memory store.
type Plan []Step
