package skills

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"github.com/stride-agent/stride/pkg/errors"
)

// TraceVariableFlow analyzes how variables flow through a Go source file:
// where each identifier is assigned and where it is read. Accepts "file" or
// "file_path" for the path and "variable" or "variable_name" to narrow the
// report to one identifier.
func TraceVariableFlow(_ context.Context, params map[string]any) (string, error) {
	filePath := stringParam(params, "file", "file_path")
	if filePath == "" {
		return "", errors.New(errors.CodeInvalidInput, "file parameter is required", nil).
			WithContext("skill", "trace_variable_flow")
	}
	variable := stringParam(params, "variable", "variable_name")

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, filePath, nil, 0)
	if err != nil {
		return "", errors.New(errors.CodeSkillFailure, "parse source file", err).
			WithContext("file", filePath)
	}

	type occurrence struct {
		line int
		kind string
	}
	flows := make(map[string][]occurrence)

	record := func(name string, pos token.Pos, kind string) {
		if name == "_" || name == "" {
			return
		}
		if variable != "" && name != variable {
			return
		}
		flows[name] = append(flows[name], occurrence{line: fset.Position(pos).Line, kind: kind})
	}

	ast.Inspect(parsed, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range node.Lhs {
				if ident, ok := lhs.(*ast.Ident); ok {
					record(ident.Name, ident.Pos(), "assign")
				}
			}
		case *ast.ValueSpec:
			for _, ident := range node.Names {
				record(ident.Name, ident.Pos(), "declare")
			}
		case *ast.IncDecStmt:
			if ident, ok := node.X.(*ast.Ident); ok {
				record(ident.Name, ident.Pos(), "update")
			}
		case *ast.RangeStmt:
			if ident, ok := node.Key.(*ast.Ident); ok {
				record(ident.Name, ident.Pos(), "assign")
			}
			if ident, ok := node.Value.(*ast.Ident); ok {
				record(ident.Name, ident.Pos(), "assign")
			}
		}
		return true
	})

	if len(flows) == 0 {
		if variable != "" {
			return fmt.Sprintf("No writes to variable %q found in %s.", variable, filePath), nil
		}
		return fmt.Sprintf("No variable writes found in %s.", filePath), nil
	}

	names := make([]string, 0, len(flows))
	for name := range flows {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Variable flow report for %s:\n", filePath)
	for _, name := range names {
		occurrences := flows[name]
		fmt.Fprintf(&b, "\n%s (%d writes):\n", name, len(occurrences))
		for _, occ := range occurrences {
			fmt.Fprintf(&b, "  line %d: %s\n", occ.line, occ.kind)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
