// ABOUTME: Help text for the craft CLI's slash commands and environment variables.

package main

import (
	"fmt"
	"io"
	"os"
)

func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "craft %s — interactive coding agent\n\n", ver)

	fmt.Fprintln(w, "Slash commands:")
	fmt.Fprintln(w, "  /new               Start a new session")
	fmt.Fprintln(w, "  /model <alias>     Switch the active model (e.g. /model sonnet)")
	fmt.Fprintln(w, "  /load <idOrPrefix> Load an existing session by id, prefix, or title")
	fmt.Fprintln(w, "  /clear             Clear the screen")
	fmt.Fprintln(w, "  /help              Show this help")
	fmt.Fprintln(w, "  /exit              Exit craft")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CRAFT_MODEL            Model alias to use at startup (default: provider's first model)")
	fmt.Fprintln(w, "  CRAFT_SESSION_ID       Force-load a specific session id at startup")
	fmt.Fprintln(w, "  CRAFT_INITIAL_MESSAGE  Send one message, print the reply, and exit")
	fmt.Fprintf(w, "  ANTHROPIC_API_KEY      %s\n", envStatus("ANTHROPIC_API_KEY"))
	fmt.Fprintf(w, "  OPENAI_API_KEY         %s\n", envStatus("OPENAI_API_KEY"))
	fmt.Fprintf(w, "  GEMINI_API_KEY         %s\n", envStatus("GEMINI_API_KEY"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  At least one API key is required.")
}

func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
