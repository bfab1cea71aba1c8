// ABOUTME: Slash-command handling for the craft REPL: /new, /model, /load, /clear, /help, /exit.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/2389-research/bytecraft/agent"
	"github.com/2389-research/bytecraft/llm"
	"github.com/2389-research/bytecraft/resolve"
	"github.com/2389-research/bytecraft/store"
)

// replAction tells the REPL loop what to do after a slash command runs.
type replAction int

const (
	actionNone replAction = iota
	actionExit
	actionSwitchSession
)

// handleSlashCommand dispatches one slash-command line, mutating deps for
// /model and returning the replacement session id for /new and /load.
func handleSlashCommand(line string, deps *agent.Deps, sessionID string, catalog *llm.Catalog, s *store.Store, cache *store.SqliteCache) (replAction, string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "/exit":
		return actionExit, ""

	case "/help":
		printHelp(os.Stdout, version)
		return actionNone, ""

	case "/clear":
		fmt.Print("\033[H\033[2J")
		return actionNone, ""

	case "/new":
		id, err := s.CreateSession(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating session: %v\n", err)
			return actionNone, ""
		}
		if err := s.SetLastSession(id); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record last session: %v\n", err)
		}
		fmt.Printf("started session %s\n", id)
		return actionSwitchSession, id

	case "/load":
		if arg == "" {
			fmt.Fprintln(os.Stderr, "usage: /load <idOrPrefix>")
			return actionNone, ""
		}
		id, ok, err := resolve.Resolve(s, cache, arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: resolving %q: %v\n", arg, err)
			return actionNone, ""
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "no session matches %q\n", arg)
			return actionNone, ""
		}
		if err := s.SetLastSession(id); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record last session: %v\n", err)
		}
		fmt.Printf("loaded session %s\n", id)
		return actionSwitchSession, id

	case "/model":
		if arg == "" {
			fmt.Printf("current model: %s (%s)\n", deps.ModelName, deps.Provider)
			return actionNone, ""
		}
		modelName, provider, err := resolveModel(catalog, arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return actionNone, ""
		}
		deps.ModelName = modelName
		deps.Provider = provider
		fmt.Printf("switched to %s (%s)\n", modelName, provider)
		return actionNone, ""

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q, try /help\n", cmd)
		return actionNone, ""
	}
}
