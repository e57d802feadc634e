package llm

import (
	"context"
	"errors"
	"sync"
)

// ScriptedMockCompleter returns a pre-defined sequence of responses.
// Useful for testing multi-goal interactions.
type ScriptedMockCompleter struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	// CallCount tracks how many times Complete has been called.
	CallCount int
}

// NewScriptedMock creates a ScriptedMockCompleter.
func NewScriptedMock(responses ...string) *ScriptedMockCompleter {
	return &ScriptedMockCompleter{Responses: responses}
}

// Complete pops the next scripted response or returns the configured error.
func (s *ScriptedMockCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CallCount++

	if s.Err != nil {
		return nil, s.Err
	}

	if len(s.Responses) == 0 {
		return nil, errors.New("scripted mock: no more responses available")
	}

	text := s.Responses[0]
	s.Responses = s.Responses[1:]

	return &CompletionResponse{
		Text: text,
		Usage: Usage{
			PromptTokens:     10,
			CompletionTokens: 10,
			TotalTokens:      20,
		},
	}, nil
}

// AddResponse appends a response to the queue.
func (s *ScriptedMockCompleter) AddResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, response)
}
