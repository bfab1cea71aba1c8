// ABOUTME: Typed error taxonomy shared across the store, context pipeline, tools, and agent loop.
// ABOUTME: Each type names its own fatality/propagation rule; see the agent package for how they are applied.

package errs

import "fmt"

// ConfigError signals a missing model alias or malformed configuration.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return "config error: " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// StoreError signals an I/O failure on a session log or index, or
// corruption of a trailing line. Fatal to the current round: the round is
// aborted before any further model calls.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", e.Message, e.Cause)
	}
	return "store error: " + e.Message
}

func (e *StoreError) Unwrap() error { return e.Cause }

// ModelError signals a transport, auth, rate-limit, or malformed-response
// failure from the model provider. Stops the agent loop; turns already
// written remain.
type ModelError struct {
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model error: %s: %v", e.Message, e.Cause)
	}
	return "model error: " + e.Message
}

func (e *ModelError) Unwrap() error { return e.Cause }

// ToolError signals that a tool returned success:false, or the dispatcher
// could not route the call. Not fatal: the loop appends the failure as a
// tool result turn and lets the model decide whether to retry.
type ToolError struct {
	ToolName string
	Message  string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error (%s): %s", e.ToolName, e.Message)
}

// LimitError signals the 25-round recursion cap was exceeded. Stops the
// loop with a terminal error turn written to the store.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return "limit error: " + e.Message }

// ValidationError signals that inputs to the context pipeline or a tool
// failed a schema check. Triggers the context pipeline's fallback path.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}
