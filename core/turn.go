// ABOUTME: Turn and session metadata types for the agent session store.
// ABOUTME: Turn mirrors the on-disk JSONL schema exactly; unknown fields round-trip via Extra.

package core

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role discriminates who produced a turn's content.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCallRequest is one tool invocation the model asked for on an assistant turn.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResultInfo carries the outcome of a tool invocation on a tool-role turn.
type ToolResultInfo struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

// turnMessage is the nested {role, content} shape required by the wire schema.
type turnMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is one immutable entry in a session log. Field names match the
// documented JSONL wire schema (uuid, parentUuid, timestamp, sessionId,
// type, message, isSidechain, userType, cwd, version) so that turns
// written by one version of the engine remain loadable by another.
type Turn struct {
	UUID       string            `json:"uuid"`
	ParentUUID string            `json:"parentUuid,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionID  string            `json:"sessionId"`
	Type       Role              `json:"type"`
	Content    string            `json:"-"`
	ToolCalls  []ToolCallRequest `json:"toolCalls,omitempty"`
	ToolResult *ToolResultInfo   `json:"toolResult,omitempty"`
	Internal   bool              `json:"isSidechain"`
	UserType   string            `json:"userType,omitempty"`
	Cwd        string            `json:"cwd,omitempty"`
	Version    string            `json:"version,omitempty"`

	// Extra preserves any fields present in the source JSON that this
	// struct does not model, so that round-tripping an unfamiliar or
	// newer-version turn never silently drops data.
	Extra map[string]json.RawMessage `json:"-"`
}

// NewTurnID generates a new ULID-based turn id. ULIDs are lexicographically
// sortable by creation time, which lets a store replay turns in append
// order without consulting the timestamp field separately.
func NewTurnID() string {
	return ulid.Make().String()
}

// NewTurn constructs a Turn with a freshly generated id and the given
// session id, role, and content. Timestamp defaults to time.Now().
func NewTurn(sessionID string, role Role, content string) Turn {
	return Turn{
		UUID:      NewTurnID(),
		Timestamp: time.Now(),
		SessionID: sessionID,
		Type:      role,
		Content:   content,
		Version:   "1",
	}
}

// MarshalJSON serializes the turn to the documented wire schema, folding
// Content back into the nested message object and re-emitting any
// preserved Extra fields.
func (t Turn) MarshalJSON() ([]byte, error) {
	type alias Turn
	base := struct {
		alias
		Message turnMessage `json:"message"`
	}{
		alias:   alias(t),
		Message: turnMessage{Role: t.Type, Content: t.Content},
	}

	data, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range t.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// knownTurnFields lists the JSON keys this struct models explicitly; any
// other key found while unmarshaling is preserved in Extra.
var knownTurnFields = map[string]bool{
	"uuid": true, "parentUuid": true, "timestamp": true, "sessionId": true,
	"type": true, "message": true, "toolCalls": true, "toolResult": true,
	"isSidechain": true, "userType": true, "cwd": true, "version": true,
}

// UnmarshalJSON parses the documented wire schema, splitting the nested
// message object back into Type/Content and capturing unmodeled fields
// into Extra so they survive a read-modify-... cycle even though turns
// themselves are never mutated in place.
func (t *Turn) UnmarshalJSON(data []byte) error {
	type alias Turn
	aux := struct {
		*alias
		Message turnMessage `json:"message"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Content = aux.Message.Content
	if t.Type == "" {
		t.Type = aux.Message.Role
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if !knownTurnFields[k] {
			if t.Extra == nil {
				t.Extra = make(map[string]json.RawMessage)
			}
			t.Extra[k] = v
		}
	}
	return nil
}

// SessionMeta is the metadata-index record for one session.
type SessionMeta struct {
	Title        string    `json:"title"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
	MessageCount int       `json:"messageCount"`
}

// TitleFromMessage derives a session title from the first non-empty user
// message, truncated to the documented 50-character budget.
func TitleFromMessage(content string) string {
	const maxTitleLen = 50
	r := []rune(content)
	if len(r) <= maxTitleLen {
		return content
	}
	return string(r[:maxTitleLen])
}
