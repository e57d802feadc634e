// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides the durable, goal-keyed log of step outcomes that
// closes the feedback loop between past and future runs, plus the execution
// audit trail.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stride-agent/stride/pkg/core"
	"github.com/stride-agent/stride/pkg/errors"
)

// NoPriorContext is the sentinel digest returned for goals with no history.
const NoPriorContext = "No prior context available."

const (
	defaultContextEntries = 5
	resultPreviewChars    = 200
)

// Entry records one executed step and its outcome. Immutable once appended.
type Entry struct {
	Step      core.Step `json:"step"`
	Result    string    `json:"result"`
	Timestamp string    `json:"timestamp"`
}

// Stats aggregates counts across all goal buckets.
type Stats struct {
	TotalGoals   int `json:"total_goals"`
	TotalEntries int `json:"total_entries"`
}

// Store is the goal-keyed memory store. Entries for a goal are only ever
// appended; the whole bucket can be removed. The backing document is
// rewritten wholesale on every mutation, so durability cost is O(total
// stored bytes) per step — callers must not assume high-throughput writes.
// All mutations serialize through one mutex so concurrent goal runs cannot
// lose updates to the document.
type Store struct {
	mu    sync.Mutex
	path  string
	data  map[string][]Entry
	order []string
}

// NewStore creates a store backed by the JSON document at path. A missing
// document starts empty; an unreadable or corrupt document is logged and
// also starts empty — availability is preferred over surfacing corruption.
func NewStore(path string) *Store {
	s := &Store{
		path: path,
		data: make(map[string][]Entry),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("memory.load_error",
				slog.String("path", s.path),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	loaded := make(map[string][]Entry)
	if err := json.Unmarshal(data, &loaded); err != nil {
		slog.Warn("memory.load_error",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return
	}
	s.data = loaded
	s.order = goalsByFirstEntry(loaded)
}

// Store appends an entry to the goal's bucket, creating the bucket if
// absent, then persists the entire store. Persistence failures are logged
// and the in-memory append still takes effect: durability is best-effort,
// not transactional.
func (s *Store) Store(_ context.Context, goal string, step core.Step, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Step:      step,
		Result:    result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if _, ok := s.data[goal]; !ok {
		s.order = append(s.order, goal)
	}
	s.data[goal] = append(s.data[goal], entry)

	if err := s.persist(); err != nil {
		slog.Error("memory.save_error",
			slog.String("path", s.path),
			slog.String("goal", goal),
			slog.String("error", err.Error()),
		)
	}
}

// Retrieve returns the goal's entries in insertion order, empty for unknown
// goals. The returned slice is a copy.
func (s *Store) Retrieve(_ context.Context, goal string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.data[goal]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// RecentContext formats the tail of the goal's bucket as a human-readable
// digest for prompt injection. Results longer than 200 characters are
// truncated with an ellipsis marker.
func (s *Store) RecentContext(_ context.Context, goal string, maxEntries int) string {
	if maxEntries <= 0 {
		maxEntries = defaultContextEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.data[goal]
	if len(entries) == 0 {
		return NoPriorContext
	}
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		action := entry.Step.Action
		if action == "" {
			action = "unknown"
		}
		lines = append(lines, "- "+action+": "+TruncateResult(entry.Result, resultPreviewChars))
	}
	return strings.Join(lines, "\n")
}

// ClearGoal removes the goal's bucket entirely. No-op for unknown goals;
// calling twice is safe.
func (s *Store) ClearGoal(_ context.Context, goal string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[goal]; !ok {
		return
	}
	delete(s.data, goal)
	for i, g := range s.order {
		if g == goal {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if err := s.persist(); err != nil {
		slog.Error("memory.save_error",
			slog.String("path", s.path),
			slog.String("goal", goal),
			slog.String("error", err.Error()),
		)
	}
}

// Goals returns all goals with stored memory, oldest bucket first.
func (s *Store) Goals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Stats returns aggregate counts across all buckets.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, entries := range s.data {
		total += len(entries)
	}
	return Stats{
		TotalGoals:   len(s.data),
		TotalEntries: total,
	}
}

// persist rewrites the whole backing document. Callers hold the mutex.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.New(errors.CodePersistence, "marshal memory document", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.CodePersistence, "create memory directory", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.New(errors.CodePersistence, "write memory document", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.New(errors.CodePersistence, "replace memory document", err)
	}
	return nil
}

// TruncateResult shortens a result string for digests and logs. The cut is
// made on a rune boundary so multi-byte text never yields invalid UTF-8.
func TruncateResult(result string, max int) string {
	if len(result) <= max {
		return result
	}
	runes := []rune(result)
	if len(runes) <= max {
		return result
	}
	return string(runes[:max]) + "..."
}

// goalsByFirstEntry reconstructs a stable goal order from a loaded document
// using each bucket's earliest timestamp. The on-disk format carries no
// explicit ordering.
func goalsByFirstEntry(data map[string][]Entry) []string {
	type keyed struct {
		goal  string
		stamp string
	}
	out := make([]keyed, 0, len(data))
	for goal, entries := range data {
		stamp := ""
		if len(entries) > 0 {
			stamp = entries[0].Timestamp
		}
		out = append(out, keyed{goal: goal, stamp: stamp})
	}
	// RFC3339 sorts lexicographically; ties fall back to goal text.
	sort.Slice(out, func(i, j int) bool {
		if out[i].stamp != out[j].stamp {
			return out[i].stamp < out[j].stamp
		}
		return out[i].goal < out[j].goal
	})
	goals := make([]string, len(out))
	for i, k := range out {
		goals[i] = k.goal
	}
	return goals
}
