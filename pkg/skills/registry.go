// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package skills holds the capability registry the agent loop executes
// against: built-in skills, manifest-described skills and remote MCP tools.
package skills

import (
	"context"
	"sort"
	"sync"

	"github.com/stride-agent/stride/pkg/errors"
)

// Skill is the uniform capability contract. Each skill extracts and
// validates the fields it needs from params and returns a display string.
// Returning an error is the skill's way of signaling step failure.
type Skill func(ctx context.Context, params map[string]any) (string, error)

// LoaderFunc registers the built-in capability set into a registry.
// Reload clears the registry and runs the loader again.
type LoaderFunc func(r *Registry)

// Registry maps skill names to capabilities. It is read-mostly: populated
// once at startup, optionally reloaded wholesale. Reads and reloads are
// synchronized so Reload never races Resolve.
type Registry struct {
	mu           sync.RWMutex
	skills       map[string]Skill
	descriptions map[string]string
	loader       LoaderFunc
}

// NewRegistry creates a registry and runs the loader, if any.
func NewRegistry(loader LoaderFunc) *Registry {
	r := &Registry{
		skills:       make(map[string]Skill),
		descriptions: make(map[string]string),
		loader:       loader,
	}
	if loader != nil {
		loader(r)
	}
	return r
}

// Register inserts or overwrites a skill. Last write wins.
func (r *Registry) Register(name string, skill Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[name] = skill
}

// SetDescription records a prompt-catalogue description for a skill name.
func (r *Registry) SetDescription(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptions[name] = description
}

// Resolve returns the skill registered under name, or a SKILL_NOT_FOUND
// error value.
func (r *Registry) Resolve(name string) (Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skill, ok := r.skills[name]
	if !ok {
		return nil, errors.New(errors.CodeSkillNotFound, "skill not registered", nil).
			WithContext("skill", name)
	}
	return skill, nil
}

// List returns all registered names sorted, so prompt formatting is stable
// within a process run.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}

// Describe returns the catalogue description for a skill name, falling back
// to the static catalogue and then to a generic placeholder.
func (r *Registry) Describe(name string) string {
	r.mu.RLock()
	desc, ok := r.descriptions[name]
	r.mu.RUnlock()
	if ok && desc != "" {
		return desc
	}
	if desc, ok := catalogue[name]; ok {
		return desc
	}
	return "No description available"
}

// Reload re-registers the built-in capability set. Runtime registrations
// made since the last reload are lost. The loader fills a staging registry
// that is swapped in under the lock, so a concurrent Resolve sees either
// the old set or the new one, never an empty registry.
func (r *Registry) Reload() {
	staging := &Registry{
		skills:       make(map[string]Skill),
		descriptions: make(map[string]string),
	}
	if r.loader != nil {
		r.loader(staging)
	}

	r.mu.Lock()
	r.skills = staging.skills
	r.descriptions = staging.descriptions
	r.mu.Unlock()
}

// catalogue holds the static descriptions for well-known skill names.
var catalogue = map[string]string{
	"generate_task_code":   "Generate code for a specific task or improvement",
	"trace_variable_flow":  "Trace how variables flow through code",
	"scan_codebase":        "Scan and analyze the codebase structure",
	"analyze_dependencies": "Analyze code dependencies and imports",
}
