// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

// Command stride runs goals through the autonomous task agent.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/stride-agent/stride/pkg/agent"
	"github.com/stride-agent/stride/pkg/config"
	"github.com/stride-agent/stride/pkg/llm"
	"github.com/stride-agent/stride/pkg/mcpclient"
	"github.com/stride-agent/stride/pkg/memory"
	"github.com/stride-agent/stride/pkg/planner"
	"github.com/stride-agent/stride/pkg/skills"
	"github.com/stride-agent/stride/pkg/telemetry"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.InitWithConfig("stride", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	app, cleanup, err := buildAgent(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	switch args[0] {
	case "run":
		runGoals(ctx, app, global, args[1:])
	case "status":
		ensureNoArgs(args[1:])
		printStatus(ctx, app, global)
	case "skills":
		ensureNoArgs(args[1:])
		printSkills(app)
	case "memory":
		runMemory(ctx, app, global, args[1:])
	case "help":
		printUsage()
	case "version":
		fmt.Println(version)
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

// buildAgent wires config into a ready agent: completer, registry with
// builtins, manifests and MCP tools, memory store, audit trail, planner.
func buildAgent(ctx context.Context, cfg *config.Config) (*agent.Agent, func(), error) {
	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry := skills.NewRegistry(skills.Builtins(completer, "."))

	if cfg.Skills.Dir != "" {
		manifests, err := skills.LoadManifestDir(cfg.Skills.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("load skill manifests: %w", err)
		}
		skills.ApplyManifests(registry, manifests)
	}

	cleanup := func() {}
	if cfg.MCP.Command != "" {
		client, err := mcpclient.NewClientWithStdio(cfg.MCP.Command, cfg.MCP.Args)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mcp server: %w", err)
		}
		if _, err := skills.RegisterMCPTools(ctx, registry, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		cleanup = func() { client.Close() }
	}

	store := memory.NewStore(cfg.Memory.Path)

	opts := []agent.Option{
		agent.WithPlanner(planner.New(completer, registry,
			planner.WithCompletionLimits(cfg.LLM.MaxTokens, cfg.LLM.Temperature))),
		agent.WithMemory(store),
		agent.WithRegistry(registry),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
	}
	if cfg.Memory.AuditPath != "" {
		audit, err := memory.OpenSQLiteAuditStore(cfg.Memory.AuditPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open audit store: %w", err)
		}
		opts = append(opts, agent.WithAuditStore(audit))
		prev := cleanup
		cleanup = func() {
			audit.Close()
			prev()
		}
	}

	return agent.New(opts...), cleanup, nil
}

func buildCompleter(cfg *config.Config) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "", "ollama":
		return llm.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model), nil
	case "mock":
		return &llm.MockCompleter{Response: "[]"}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// runGoals executes each argument as a goal. Without arguments and with a
// terminal attached it drops into a REPL reading one goal per line.
func runGoals(ctx context.Context, app *agent.Agent, global globalFlags, goals []string) {
	if len(goals) > 0 {
		failed := 0
		for _, goal := range goals {
			if !runOne(ctx, app, global, goal) {
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		fatal(fmt.Errorf("no goal given and stdin is not a terminal"))
	}

	fmt.Println("stride interactive mode. Enter a goal per line, empty line or Ctrl-D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		goal := strings.TrimSpace(scanner.Text())
		if goal == "" {
			break
		}
		runOne(ctx, app, global, goal)
		if ctx.Err() != nil {
			break
		}
	}
}

func runOne(ctx context.Context, app *agent.Agent, global globalFlags, goal string) bool {
	success := app.Run(ctx, goal)
	if global.JSON {
		printJSON(map[string]any{"goal": goal, "success": success})
	} else if success {
		fmt.Printf("goal succeeded: %s\n", goal)
	} else {
		fmt.Printf("goal failed: %s\n", goal)
	}
	return success
}

func printStatus(ctx context.Context, app *agent.Agent, global globalFlags) {
	status := app.Status(ctx)
	if global.JSON {
		printJSON(status)
		return
	}
	writer := newTabWriter()
	writeRow(writer, "GOALS", fmt.Sprintf("%d", status.Memory.TotalGoals))
	writeRow(writer, "MEMORY ENTRIES", fmt.Sprintf("%d", status.Memory.TotalEntries))
	writeRow(writer, "SKILLS", fmt.Sprintf("%d", status.SkillCount))
	writeRow(writer, "RECENT GOALS", strings.Join(status.RecentGoals, "; "))
	writer.Flush()
}

func printSkills(app *agent.Agent) {
	writer := newTabWriter()
	writeRow(writer, "SKILL", "DESCRIPTION")
	for _, line := range app.SkillCatalogue() {
		name, desc, _ := strings.Cut(line, ": ")
		writeRow(writer, name, desc)
	}
	writer.Flush()
}

func runMemory(ctx context.Context, app *agent.Agent, global globalFlags, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: stride memory <show|clear> <goal>"))
	}
	switch args[0] {
	case "show":
		if len(args) != 2 {
			fatal(fmt.Errorf("usage: stride memory show <goal>"))
		}
		fmt.Println(app.RecallMemory(ctx, args[1]))
	case "clear":
		if len(args) != 2 {
			fatal(fmt.Errorf("usage: stride memory clear <goal>"))
		}
		app.ClearMemory(ctx, args[1])
		fmt.Printf("memory cleared for goal: %s\n", args[1])
	default:
		fatal(fmt.Errorf("unknown memory subcommand %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var global globalFlags
	fs := flag.NewFlagSet("stride", flag.ContinueOnError)
	fs.StringVar(&global.ConfigPath, "config", "", "path to stride.yaml")
	fs.BoolVar(&global.JSON, "json", false, "JSON output")
	fs.BoolVar(&global.Help, "help", false, "show usage")
	if err := fs.Parse(args); err != nil {
		return global, nil, err
	}
	return global, fs.Args(), nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			col = "-"
		}
		cols[i] = col
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func printJSON(value any) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(data))
}

func printUsage() {
	fmt.Println(`stride - autonomous task agent

Usage:
  stride [global flags] <command> [args]

Global flags:
  --config <path>   Path to stride.yaml
  --json            JSON output

Commands:
  run [goal ...]    Run one or more goals (interactive without args)
  status            Show memory stats, skill count and recent goals
  skills            List registered skills
  memory show <goal>   Print stored context for a goal
  memory clear <goal>  Delete stored memory for a goal
  version           Print version
  help              Show this help`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func ensureNoArgs(args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}
}
