package skills

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stride-agent/stride/pkg/errors"
)

func echoSkill(_ context.Context, params map[string]any) (string, error) {
	if task, ok := params["task"].(string); ok {
		return task, nil
	}
	return "", nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("echo", echoSkill)

	skill, err := r.Resolve("echo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := skill(context.Background(), map[string]any{"task": "demo"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "demo" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Resolve("missing")
	if err == nil {
		t.Fatal("expected error for unknown skill")
	}
	var se *errors.StrideError
	if !stderrors.As(err, &se) {
		t.Fatalf("expected *StrideError, got %T", err)
	}
	if se.Code != errors.CodeSkillNotFound {
		t.Fatalf("expected SKILL_NOT_FOUND, got %v", se.Code)
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("echo", func(context.Context, map[string]any) (string, error) { return "first", nil })
	r.Register("echo", func(context.Context, map[string]any) (string, error) { return "second", nil })

	skill, err := r.Resolve("echo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, _ := skill(context.Background(), nil)
	if out != "second" {
		t.Fatalf("expected last registration to win, got %q", out)
	}
}

func TestListSorted(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("zeta", echoSkill)
	r.Register("alpha", echoSkill)
	r.Register("mid", echoSkill)

	names := r.List()
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	if names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestReloadRestoresBuiltins(t *testing.T) {
	r := NewRegistry(func(r *Registry) {
		r.Register("builtin", echoSkill)
	})
	r.Register("custom", echoSkill)

	if r.Len() != 2 {
		t.Fatalf("expected 2 skills before reload, got %d", r.Len())
	}

	r.Reload()

	if _, err := r.Resolve("builtin"); err != nil {
		t.Fatalf("builtin should survive reload: %v", err)
	}
	if _, err := r.Resolve("custom"); err == nil {
		t.Fatal("custom registration should be lost on reload")
	}
}

func TestReloadNeverExposesEmptyRegistry(t *testing.T) {
	r := NewRegistry(func(r *Registry) {
		r.Register("builtin", echoSkill)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r.Reload()
		}
	}()

	// The builtin must resolve at every instant: the reload swap is
	// atomic, so readers see the old set or the new one, never neither.
	for {
		select {
		case <-done:
			return
		default:
			if _, err := r.Resolve("builtin"); err != nil {
				t.Fatalf("resolve during reload: %v", err)
			}
		}
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("scan_codebase", echoSkill)
	r.Register("custom", echoSkill)
	r.SetDescription("custom", "A custom capability")

	if got := r.Describe("scan_codebase"); got != "Scan and analyze the codebase structure" {
		t.Fatalf("expected catalogue description, got %q", got)
	}
	if got := r.Describe("custom"); got != "A custom capability" {
		t.Fatalf("expected registered description, got %q", got)
	}
	if got := r.Describe("unknown"); got != "No description available" {
		t.Fatalf("expected placeholder description, got %q", got)
	}
}
