// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the text-completion contract the planner and the
// LLM-backed skills consume, plus provider implementations and test doubles.
package llm

import "context"

// CompletionRequest encapsulates a single completion call.
type CompletionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the provider's answer.
type CompletionResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completer is the interface for text-completion backends. Failure is
// surfaced as an ordinary error; callers decide whether to retry, fall
// back or record the failure.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
