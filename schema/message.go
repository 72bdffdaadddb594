package schema

import (
	"encoding/json"
	"slices"
)

// Role defines message roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message represents a chat message.
// An empty Content stands for a null content (e.g. an assistant message that only carries tool calls).
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is the raw tool invocation metadata carried by an assistant message,
// kept exactly as the model returned it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolRequest is one parsed tool invocation of a completion round.
type ToolRequest struct {
	CallID    string         `json:"call_id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the textual output of one tool invocation.
type ToolResult struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Output string `json:"output"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage creates the tool message answering result.
func ToolMessage(result ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    result.Output,
		ToolCallID: result.CallID,
		Name:       result.Name,
	}
}

// Clone deep-copies the message.
func (m Message) Clone() Message {
	m.ToolCalls = slices.Clone(m.ToolCalls)
	return m
}

// HasToolCalls reports whether tool calls are present.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ArgumentsJSON encodes the request arguments, "{}" when there are none.
func (r ToolRequest) ArgumentsJSON() string {
	if len(r.Arguments) == 0 {
		return "{}"
	}
	data, err := json.Marshal(r.Arguments)
	if err != nil {
		return "{}"
	}
	return string(data)
}
