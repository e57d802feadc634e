// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stride-agent/stride/pkg/errors"
	"github.com/stride-agent/stride/pkg/llm"
)

const (
	defaultScanMaxFiles     = 10
	defaultScanMaxChars     = 1000
	generateCodeMaxTokens   = 1024
	generateCodeTemperature = 0.2
)

// Builtins returns the loader for the built-in capability set. The completer
// backs the LLM skills; root is the codebase directory the analysis skills
// operate on.
func Builtins(completer llm.Completer, root string) LoaderFunc {
	return func(r *Registry) {
		r.Register("generate_task_code", generateTaskCode(completer, root))
		r.Register("trace_variable_flow", TraceVariableFlow)
		r.Register("scan_codebase", scanCodebaseSkill(root))
	}
}

// generateTaskCode builds the LLM-backed code generation skill.
func generateTaskCode(completer llm.Completer, root string) Skill {
	return func(ctx context.Context, params map[string]any) (string, error) {
		task := stringParam(params, "task")
		if task == "" {
			return "", errors.New(errors.CodeInvalidInput, "task parameter is required", nil).
				WithContext("skill", "generate_task_code")
		}
		if completer == nil {
			return "", errors.New(errors.CodeLLMError, "no completion provider configured", nil)
		}

		codeContext, err := ScanCodebase(root, nil, defaultScanMaxFiles, defaultScanMaxChars)
		if err != nil {
			codeContext = "(codebase scan unavailable)"
		}

		fileContext := ""
		if contextFile := stringParam(params, "context_file"); contextFile != "" {
			if data, err := os.ReadFile(contextFile); err == nil {
				fileContext = fmt.Sprintf("\n\nSpecific file context from %s:\n```\n%s\n```", contextFile, data)
			}
		}

		prompt := fmt.Sprintf(`You are an expert Go developer. Generate code for the following task:

Task: %s

Codebase Context:
%s%s

Instructions:
1. Write clean, well-documented Go code
2. Include error handling where appropriate
3. If this is a patch/improvement, show only the changes needed
4. If this is a new function, provide the complete implementation

Return ONLY the code or patch diff, no additional explanation:`, task, codeContext, fileContext)

		resp, err := completer.Complete(ctx, llm.CompletionRequest{
			Prompt:      prompt,
			MaxTokens:   generateCodeMaxTokens,
			Temperature: generateCodeTemperature,
		})
		if err != nil {
			return "", errors.New(errors.CodeLLMError, "code generation failed", err).
				WithContext("task", task).
				WithRecoverable(true)
		}
		return strings.TrimSpace(resp.Text), nil
	}
}

// scanCodebaseSkill wraps ScanCodebase with parameter extraction.
func scanCodebaseSkill(defaultRoot string) Skill {
	return func(_ context.Context, params map[string]any) (string, error) {
		root := stringParam(params, "root")
		if root == "" {
			root = defaultRoot
		}
		if root == "" {
			root = "."
		}

		var exts []string
		if raw, ok := params["extensions"].([]any); ok {
			for _, item := range raw {
				if ext, ok := item.(string); ok {
					exts = append(exts, ext)
				}
			}
		}

		maxFiles := intParam(params, "max_files", defaultScanMaxFiles)
		maxChars := intParam(params, "max_chars_per_file", defaultScanMaxChars)

		return ScanCodebase(root, exts, maxFiles, maxChars)
	}
}

// ScanCodebase walks root collecting bounded source snippets for prompt
// context. Hidden directories and dependency trees are skipped.
func ScanCodebase(root string, extensions []string, maxFiles, maxChars int) (string, error) {
	if len(extensions) == 0 {
		extensions = []string{".go"}
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[ext] = true
	}

	var chunks []string
	fileCount := 0

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if fileCount >= maxFiles {
			return filepath.SkipAll
		}
		if !allowed[filepath.Ext(path)] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		snippet := string(data)
		if len(snippet) > maxChars {
			snippet = snippet[:maxChars] + "\n... (truncated)"
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		chunks = append(chunks, fmt.Sprintf("## %s\n```\n%s\n```", rel, snippet))
		fileCount++
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "No source files found.", nil
	}
	return strings.Join(chunks, "\n\n"), nil
}

// stringParam returns the first non-empty string value among aliases.
func stringParam(params map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := params[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func intParam(params map[string]any, name string, fallback int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64.
		return int(v)
	default:
		return fallback
	}
}
