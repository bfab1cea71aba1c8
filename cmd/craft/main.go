// ABOUTME: CLI entrypoint for craft, an interactive terminal coding agent.
// ABOUTME: Wires the session store, sqlite resolver cache, tool registry, and context pipeline into the agent loop's REPL.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/2389-research/bytecraft/agent"
	pipeline "github.com/2389-research/bytecraft/context"
	"github.com/2389-research/bytecraft/llm"
	"github.com/2389-research/bytecraft/resolve"
	"github.com/2389-research/bytecraft/store"
	"github.com/2389-research/bytecraft/summarize"
	"github.com/2389-research/bytecraft/tools"
	"github.com/2389-research/bytecraft/truncate"
)

var version = "dev"

const defaultSystemPrompt = "You are craft, a terminal-based coding assistant. Use the available tools to read, search, and edit files and run shell commands on behalf of the user."

func main() {
	loadDotEnv(".env")
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 && (os.Args[1] == "-help" || os.Args[1] == "--help" || os.Args[1] == "-h") {
		printHelp(os.Stdout, version)
		return 0
	}
	if len(os.Args) > 1 && (os.Args[1] == "-version" || os.Args[1] == "--version") {
		fmt.Printf("craft %s\n", version)
		return 0
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	sessionStore, err := store.Open(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening session store: %v\n", err)
		return 1
	}
	defer sessionStore.Close()

	cache, err := store.OpenSqliteCache(sessionStore.SqliteCachePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: resolver cache unavailable, falling back to metadata scan: %v\n", err)
		cache = nil
	} else {
		defer cache.Close()
		if err := resolve.RebuildCache(sessionStore, cache); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not rebuild resolver cache: %v\n", err)
		}
	}

	client, err := llm.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: no LLM API key found")
		fmt.Fprintln(os.Stderr, "Set one of: ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY")
		return 1
	}

	catalog := llm.DefaultCatalog()
	modelAlias := os.Getenv("CRAFT_MODEL")
	modelName, provider, err := resolveModel(catalog, modelAlias)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	env := tools.NewLocalExecutionEnvironment(workDir)
	if err := env.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "error: initializing execution environment: %v\n", err)
		return 1
	}
	defer env.Cleanup()

	registry := tools.NewToolRegistry()
	tools.RegisterCoreTools(registry)
	dispatcher := tools.NewDispatcher(registry, env, nil)

	// Summarization compacts history toward the active model's own context
	// window, so a session that grows past its budget compresses instead of
	// the truncator silently dropping the oldest turns.
	tokenLimit := 0
	if info := catalog.GetModelInfo(modelName); info != nil {
		tokenLimit = info.ContextWindow
	}

	deps := agent.Deps{
		Store:        sessionStore,
		Model:        client,
		ModelName:    modelName,
		Provider:     provider,
		Tools:        registry,
		Dispatcher:   dispatcher,
		SystemPrompt: defaultSystemPrompt,
		PipelineOptions: pipeline.Options{
			EnableSensitiveFiltering: true,
			EnableCuration:           true,
			Summarizer:               newModelSummarizer(client, modelName, provider),
			TokenLimit:               tokenLimit,
			CompressionThreshold:     summarize.DefaultCompressionThreshold,
			TruncationStrategy:       truncate.StrategySmartSlidingWindow,
			TruncateConfig: truncate.Config{
				MaxMessages:           200,
				MinRecentMessages:     40,
				SystemMessageHandling: truncate.SystemSmartMerge,
			},
		},
	}

	sessionID, err := startSession(sessionStore, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := sessionStore.SetLastSession(sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record last session: %v\n", err)
	}

	if initial := os.Getenv("CRAFT_INITIAL_MESSAGE"); initial != "" {
		return runOneShot(context.Background(), deps, sessionID, initial)
	}

	return runREPL(&deps, sessionID, catalog, sessionStore, cache)
}

// startSession decides the starting session: CRAFT_SESSION_ID if set and
// resolvable, otherwise the standard startup recovery sequence.
func startSession(s *store.Store, cache *store.SqliteCache) (string, error) {
	if forced := os.Getenv("CRAFT_SESSION_ID"); forced != "" {
		id, ok, err := resolve.Resolve(s, cache, forced)
		if err != nil {
			return "", fmt.Errorf("resolve CRAFT_SESSION_ID: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("CRAFT_SESSION_ID %q does not match any session", forced)
		}
		return id, nil
	}

	id, _, err := resolve.Recover(s, "")
	return id, err
}

// resolveModel maps a CRAFT_MODEL alias to a concrete model id and
// provider name, defaulting to the client's first registered provider's
// first catalog entry when alias is empty.
func resolveModel(catalog *llm.Catalog, alias string) (modelName, provider string, err error) {
	if alias == "" {
		for _, envProvider := range []string{"anthropic", "openai", "gemini"} {
			if m := catalog.GetLatestModel(envProvider, ""); m != nil {
				if apiKeyPresent(envProvider) {
					return m.ID, m.Provider, nil
				}
			}
		}
		return "", "", errors.New("no model alias given and no provider API key found to pick a default")
	}

	info := catalog.GetModelInfo(alias)
	if info == nil {
		return "", "", fmt.Errorf("unknown model alias %q", alias)
	}
	return info.ID, info.Provider, nil
}

func apiKeyPresent(provider string) bool {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY") != ""
	case "openai":
		return os.Getenv("OPENAI_API_KEY") != ""
	case "gemini":
		return os.Getenv("GEMINI_API_KEY") != ""
	default:
		return false
	}
}

func runOneShot(ctx context.Context, deps agent.Deps, sessionID, message string) int {
	final, err := agent.Process(ctx, deps, sessionID, message, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(final)
	return 0
}

// runREPL reads lines from stdin, dispatching slash commands and feeding
// anything else to the agent loop. Returns the process exit code.
func runREPL(deps *agent.Deps, sessionID string, catalog *llm.Catalog, s *store.Store, cache *store.SqliteCache) int {
	fmt.Printf("craft %s — session %s\n", version, sessionID)
	fmt.Println("Type /help for commands.")

	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			action, newSessionID := handleSlashCommand(line, deps, sessionID, catalog, s, cache)
			switch action {
			case actionExit:
				return 0
			case actionSwitchSession:
				sessionID = newSessionID
			}
			continue
		}

		_, err := agent.Process(context.Background(), *deps, sessionID, line, replSink())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	if err := reader.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func replSink() *agent.Sink {
	return &agent.Sink{
		OnToolCall: func(name, argsJSON string) {
			fmt.Printf("  [tool] %s %s\n", name, argsJSON)
		},
		OnToolResult: func(name, resultJSON string) {
			fmt.Printf("  [tool:%s result] %s\n", name, tools.TruncateOutput(resultJSON, 500, "head_tail"))
		},
		OnComplete: func(final string) {
			fmt.Println(final)
		},
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		},
	}
}
