// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"encoding/json"

	"github.com/stride-agent/stride/pkg/errors"
)

// ExtractArray returns the substring from the first '[' to the last ']' in
// text, or "" when no array is present. Model replies often wrap the JSON
// in prose or code fences; this is deliberately lenient.
func ExtractArray(text string) string {
	start := -1
	end := -1
	for i, r := range text {
		if r == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}
	for i := len(text) - 1; i > start; i-- {
		if text[i] == ']' {
			end = i
			break
		}
	}
	if end == -1 {
		return ""
	}
	return text[start : end+1]
}

// DecodeSteps extracts and decodes a JSON array of step objects from a raw
// model reply. Array elements that are not objects are dropped.
func DecodeSteps(text string) ([]map[string]any, error) {
	payload := ExtractArray(text)
	if payload == "" {
		return nil, errors.New(errors.CodeMalformedPlan, "no JSON array in model reply", nil)
	}

	var items []any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, errors.New(errors.CodeMalformedPlan, "decode plan array", err)
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}
