package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stride-agent/stride/pkg/core"
	"github.com/stride-agent/stride/pkg/llm"
	"github.com/stride-agent/stride/pkg/memory"
	"github.com/stride-agent/stride/pkg/planner"
	"github.com/stride-agent/stride/pkg/skills"
)

// testLoader registers an "ok" skill that always succeeds and a "fail"
// skill that always errors.
func testLoader(r *skills.Registry) {
	r.Register("ok", func(ctx context.Context, params map[string]any) (string, error) {
		return "done", nil
	})
	r.Register("fail", func(ctx context.Context, params map[string]any) (string, error) {
		return "", stderrors.New("boom")
	})
}

func planReply(actions ...string) string {
	steps := make([]string, 0, len(actions))
	for _, a := range actions {
		steps = append(steps, fmt.Sprintf(`{"action": %q, "params": {}}`, a))
	}
	return "[" + strings.Join(steps, ", ") + "]"
}

func newTestAgent(t *testing.T, completer llm.Completer, opts ...Option) (*Agent, *memory.Store) {
	t.Helper()
	registry := skills.NewRegistry(testLoader)
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	base := []Option{
		WithPlanner(planner.New(completer, registry)),
		WithMemory(store),
		WithRegistry(registry),
	}
	return New(append(base, opts...)...), store
}

func TestRunMajoritySucceeds(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("ok", "ok", "ok", "fail")}
	a, _ := newTestAgent(t, completer)

	if !a.Run(context.Background(), "three of four") {
		t.Fatal("3/4 succeeded steps must be a successful run")
	}
}

func TestRunExactHalfFails(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("ok", "ok", "fail", "fail")}
	a, _ := newTestAgent(t, completer)

	if a.Run(context.Background(), "half and half") {
		t.Fatal("exactly half succeeded steps must not count as success")
	}
}

func TestRunIterationCap(t *testing.T) {
	actions := make([]string, 12)
	for i := range actions {
		actions[i] = "ok"
	}
	completer := &llm.MockCompleter{Response: planReply(actions...)}
	a, store := newTestAgent(t, completer, WithMaxIterations(10))

	if !a.Run(context.Background(), "long plan") {
		t.Fatal("expected success")
	}
	entries := store.Retrieve(context.Background(), "long plan")
	if len(entries) != 10 {
		t.Fatalf("expected 10 executed steps, got %d", len(entries))
	}
}

func TestRunRecordsFailuresAndContinues(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("fail", "ok", "ok")}
	a, store := newTestAgent(t, completer)

	if !a.Run(context.Background(), "resilient") {
		t.Fatal("expected success with 2/3 steps")
	}
	entries := store.Retrieve(context.Background(), "resilient")
	if len(entries) != 3 {
		t.Fatalf("failed steps must still be recorded, got %d entries", len(entries))
	}
	if !strings.HasPrefix(entries[0].Result, "Error: ") {
		t.Fatalf("failed step result must carry the error text: %q", entries[0].Result)
	}
}

func TestRunAbortsOnAllInvalidPlan(t *testing.T) {
	// The model answers with steps that all fail validation; the resulting
	// empty plan must abort the run, not reach the fallback.
	completer := &llm.MockCompleter{Response: `[{"action": "bogus", "params": {}}]`}
	emitter := &recordingEmitter{}
	a, store := newTestAgent(t, completer, WithEventEmitter(emitter))

	if a.Run(context.Background(), "unplannable") {
		t.Fatal("an empty validated plan must make the run fail")
	}
	if entries := store.Retrieve(context.Background(), "unplannable"); len(entries) != 0 {
		t.Fatalf("no steps should execute on an empty plan, got %d entries", len(entries))
	}
	types := emitter.types()
	if len(types) != 2 || types[1] != core.EventTaskAborted {
		t.Fatalf("expected started+aborted events, got %v", types)
	}
}

func TestRunFallbackOnPlannerFailure(t *testing.T) {
	registry := skills.NewRegistry(func(r *skills.Registry) {
		r.Register("generate_task_code", func(ctx context.Context, params map[string]any) (string, error) {
			return "generated", nil
		})
	})
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	a := New(
		WithPlanner(planner.New(&llm.FailingMockCompleter{}, registry)),
		WithMemory(store),
		WithRegistry(registry),
	)

	if !a.Run(context.Background(), "demo") {
		t.Fatal("fallback plan with a working skill must succeed")
	}
	entries := store.Retrieve(context.Background(), "demo")
	if len(entries) != 1 || entries[0].Step.Action != "generate_task_code" {
		t.Fatalf("unexpected memory entries: %+v", entries)
	}
}

func TestRunFeedsPriorContextToPlanner(t *testing.T) {
	var prompts []string
	completer := &llm.MockCompleter{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			prompts = append(prompts, req.Prompt)
			return &llm.CompletionResponse{Text: planReply("ok")}, nil
		},
	}
	a, _ := newTestAgent(t, completer)

	a.Run(context.Background(), "repeat goal")
	a.Run(context.Background(), "repeat goal")

	if len(prompts) != 2 {
		t.Fatalf("expected 2 planner calls, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], memory.NoPriorContext) {
		t.Fatalf("first run must see the no-context sentinel:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[1], "- ok: done") {
		t.Fatalf("second run must see the first run's outcome:\n%s", prompts[1])
	}
}

func TestRunAuditTrail(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("ok", "fail")}
	audit := memory.NewMemoryAuditStore()
	a, _ := newTestAgent(t, completer, WithAuditStore(audit))

	a.Run(context.Background(), "audited")

	events, err := audit.List(context.Background(), memory.AuditFilter{Goal: "audited"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].Status != memory.AuditStatusSucceeded {
		t.Fatalf("unexpected first status: %s", events[0].Status)
	}
	if events[1].Status != memory.AuditStatusFailed || events[1].Error == "" {
		t.Fatalf("failed step must carry error text: %+v", events[1])
	}
}

func TestRunEmitsLifecycleEvents(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("ok")}
	emitter := &recordingEmitter{}
	a, _ := newTestAgent(t, completer, WithEventEmitter(emitter))

	a.Run(context.Background(), "events")

	types := emitter.types()
	want := []core.EventType{
		core.EventTaskStarted,
		core.EventPlanReady,
		core.EventStepCompleted,
		core.EventTaskCompleted,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), types)
	}
	for i, w := range want {
		if types[i] != w {
			t.Fatalf("event %d: got %s, want %s", i, types[i], w)
		}
	}
}

func TestRunUnresolvedAction(t *testing.T) {
	// Plan against a registry that knows "ok", execute against one that
	// does not: the step must be recorded as an error, not crash the run.
	emptyRegistry := skills.NewRegistry(func(r *skills.Registry) {})
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	a := New(
		WithPlanner(planner.New(&llm.MockCompleter{Response: planReply("ok")}, skills.NewRegistry(testLoader))),
		WithMemory(store),
		WithRegistry(emptyRegistry),
	)

	if a.Run(context.Background(), "goal") {
		t.Fatal("run with only unresolved steps must fail")
	}
	entries := store.Retrieve(context.Background(), "goal")
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Result, "Error: ") {
		t.Fatalf("unresolved step must be recorded as an error: %+v", entries)
	}
}

func TestStatusAndClearMemory(t *testing.T) {
	completer := &llm.MockCompleter{Response: planReply("ok")}
	a, _ := newTestAgent(t, completer)

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		a.Run(ctx, fmt.Sprintf("goal-%d", i))
	}

	status := a.Status(ctx)
	if status.Memory.TotalGoals != 7 {
		t.Fatalf("expected 7 goals, got %d", status.Memory.TotalGoals)
	}
	if status.SkillCount != 2 {
		t.Fatalf("expected 2 skills, got %d", status.SkillCount)
	}
	if len(status.RecentGoals) != 5 {
		t.Fatalf("expected 5 recent goals, got %v", status.RecentGoals)
	}
	if status.RecentGoals[4] != "goal-6" {
		t.Fatalf("recent goals must end with the newest: %v", status.RecentGoals)
	}

	a.ClearMemory(ctx, "goal-0")
	if got := a.Status(ctx).Memory.TotalGoals; got != 6 {
		t.Fatalf("expected 6 goals after clear, got %d", got)
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	registry := skills.NewRegistry(func(r *skills.Registry) {
		r.Register("panics", func(ctx context.Context, params map[string]any) (string, error) {
			panic("skill blew up")
		})
	})
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	a := New(
		WithPlanner(planner.New(&llm.MockCompleter{Response: planReply("panics")}, registry)),
		WithMemory(store),
		WithRegistry(registry),
	)

	if a.Run(context.Background(), "explosive") {
		t.Fatal("a panicking run must report failure")
	}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
