// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling with rich context for Stride.
// Failures in the agent core are modeled as tagged values rather than
// stack-unwinding signals: each boundary returns a *StrideError carrying an
// ErrorCode that callers branch on.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Stride errors for recovery decisions and monitoring.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeSkillNotFound indicates a plan step named a skill that is not
	// registered. Recoverable: the step is marked failed and execution
	// continues.
	CodeSkillNotFound ErrorCode = "SKILL_NOT_FOUND"

	// CodeMalformedPlan indicates model output could not be parsed into a
	// valid step array. Recoverable: the planner falls back to a
	// deterministic plan.
	CodeMalformedPlan ErrorCode = "MALFORMED_PLAN"

	// CodePersistence indicates the memory document failed to load or save.
	// Recoverable: load degrades to an empty store, save degrades to
	// in-memory-only for that write.
	CodePersistence ErrorCode = "PERSISTENCE_ERROR"

	// CodeSkillFailure indicates a skill returned an error during execution.
	// Recoverable: the error text becomes the step's stored result.
	CodeSkillFailure ErrorCode = "SKILL_FAILURE"

	// CodeLLMError indicates a completion provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"
)

// StrideError is a typed error with context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type StrideError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *StrideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *StrideError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *StrideError) MarshalJSON() ([]byte, error) {
	type Alias StrideError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new StrideError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *StrideError {
	return &StrideError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]any),
		Attributes: make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *StrideError) WithContext(key string, value any) *StrideError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *StrideError) WithAttribute(key, value string) *StrideError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *StrideError) WithRecoverable(recoverable bool) *StrideError {
	e.Recoverable = recoverable
	return e
}

// AsStrideError converts an error to a *StrideError, wrapping unknown
// errors as internal.
func AsStrideError(err error) *StrideError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*StrideError); ok {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the error code of err, or CodeInternal for plain errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if se, ok := err.(*StrideError); ok {
		return se.Code
	}
	return CodeInternal
}

// RecoverableString returns "true" or "false" for observability attributes.
func (e *StrideError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
