package llm

import (
	"context"
	"fmt"
)

// MockCompleter is a testing implementation of Completer.
type MockCompleter struct {
	Response     string
	Err          error
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &CompletionResponse{
		Text: m.Response,
		Usage: Usage{
			PromptTokens:     10,
			CompletionTokens: 10,
			TotalTokens:      20,
		},
	}, nil
}

// FailingMockCompleter always fails.
type FailingMockCompleter struct {
	Err error
}

func (f *FailingMockCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if f.Err == nil {
		return nil, fmt.Errorf("mock error")
	}
	return nil, f.Err
}
