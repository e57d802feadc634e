package skills

import (
	"context"

	"github.com/stride-agent/stride/pkg/errors"
	"github.com/stride-agent/stride/pkg/mcpclient"
)

// RegisterMCPTools discovers tools on an MCP server and registers each as a
// skill. Tool descriptions feed the planner's capability catalogue. Returns
// the number of tools registered.
func RegisterMCPTools(ctx context.Context, r *Registry, client *mcpclient.Client) (int, error) {
	tools, err := client.ListTools(ctx)
	if err != nil {
		return 0, errors.New(errors.CodeInternal, "mcp tool discovery failed", err).
			WithRecoverable(true)
	}

	for _, tool := range tools {
		name := tool.Name
		r.Register(name, func(ctx context.Context, params map[string]any) (string, error) {
			out, err := client.CallTool(ctx, name, params)
			if err != nil {
				return "", errors.New(errors.CodeSkillFailure, "mcp tool call failed", err).
					WithContext("skill", name).
					WithRecoverable(true)
			}
			return out, nil
		})
		if tool.Description != "" {
			r.SetDescription(name, tool.Description)
		}
	}
	return len(tools), nil
}
