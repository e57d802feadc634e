package planner

import (
	"testing"

	"github.com/stride-agent/stride/pkg/errors"
)

func TestExtractArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[1, 2]`, `[1, 2]`},
		{"prose wrapped", "Sure!\n[1, 2]\nHope that helps.", `[1, 2]`},
		{"code fence", "```json\n[{\"action\": \"x\"}]\n```", `[{"action": "x"}]`},
		{"nested arrays keep outermost", `[[1], [2]]`, `[[1], [2]]`},
		{"no array", "nothing here", ""},
		{"unclosed", "[1, 2", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractArray(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeSteps(t *testing.T) {
	raw, err := DecodeSteps(`[{"action": "a", "params": {"k": "v"}}, "noise", 42]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("non-object elements must be dropped, got %d", len(raw))
	}
	if raw[0]["action"] != "a" {
		t.Fatalf("unexpected step: %v", raw[0])
	}
}

func TestDecodeStepsErrors(t *testing.T) {
	for _, in := range []string{"no array here", "[broken json"} {
		_, err := DecodeSteps(in)
		if errors.CodeOf(err) != errors.CodeMalformedPlan {
			t.Fatalf("input %q: expected malformed plan code, got %v", in, err)
		}
	}
}
