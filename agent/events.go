// ABOUTME: Event sink for the agent loop, letting a caller observe one round without coupling to its internals.
// ABOUTME: Grounded on the teacher's EventEmitter but collapsed to the spec's five named callbacks, no subscribe/unsubscribe plumbing.

package agent

// Sink receives best-effort progress notifications for one Process call.
// Every field is optional; a nil field is simply not invoked. Token
// emissions may be coalesced rather than delivered incrementally.
type Sink struct {
	OnToken      func(partial string)
	OnToolCall   func(name, argsJSON string)
	OnToolResult func(name, resultJSON string)
	OnComplete   func(final string)
	OnError      func(err error)
}

func (s *Sink) emitToken(partial string) {
	if s != nil && s.OnToken != nil {
		s.OnToken(partial)
	}
}

func (s *Sink) emitToolCall(name, argsJSON string) {
	if s != nil && s.OnToolCall != nil {
		s.OnToolCall(name, argsJSON)
	}
}

func (s *Sink) emitToolResult(name, resultJSON string) {
	if s != nil && s.OnToolResult != nil {
		s.OnToolResult(name, resultJSON)
	}
}

func (s *Sink) emitComplete(final string) {
	if s != nil && s.OnComplete != nil {
		s.OnComplete(final)
	}
}

func (s *Sink) emitError(err error) {
	if s != nil && s.OnError != nil {
		s.OnError(err)
	}
}
