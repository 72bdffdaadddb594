package schema

import (
	"errors"
	"fmt"
)

var (
	// LLM-related errors
	ErrTransport = errors.New("llm transport failure")

	// Tool-call protocol errors
	ErrMalformedToolCall = errors.New("malformed tool call")
	ErrNoToolCalls       = errors.New("model returned no tool calls")
	ErrCorrelation       = errors.New("tool results do not match tool calls")

	// Tool-related errors
	ErrUnknownTool     = errors.New("unknown tool")
	ErrToolExecution   = errors.New("tool execution failed")
	ErrInvalidToolName = errors.New("invalid tool name")
	ErrDuplicateTool   = errors.New("tool already registered")
)

// ErrorKind tags a surfaced error with its place in the taxonomy.
type ErrorKind string

const (
	KindUnknown           ErrorKind = "unknown"
	KindTransport         ErrorKind = "transport"
	KindMalformedToolCall ErrorKind = "malformed_tool_call"
	KindUnknownTool       ErrorKind = "unknown_tool"
	KindToolExecution     ErrorKind = "tool_execution"
)

// TransportError reports an unreachable or rejecting LLM endpoint.
type TransportError struct {
	Model string
	Op    string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.Model, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func NewTransportError(model, op string, err error) *TransportError {
	return &TransportError{
		Model: model,
		Op:    op,
		Err:   err,
	}
}

// MalformedToolCallError reports a tool-call payload that cannot be parsed.
// Line is 1-based for streamed payloads and 0 for buffered ones.
type MalformedToolCallError struct {
	Line    int
	Payload string
	Err     error
}

func (e *MalformedToolCallError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed tool call at line %d (%q): %v", e.Line, e.Payload, e.Err)
	}
	return fmt.Sprintf("malformed tool call (%q): %v", e.Payload, e.Err)
}

func (e *MalformedToolCallError) Unwrap() error {
	return e.Err
}

func (e *MalformedToolCallError) Is(target error) bool {
	return target == ErrMalformedToolCall
}

// UnknownToolError reports a call to a tool that is not registered.
type UnknownToolError struct {
	Name   string
	CallID string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %s (call %s): %v", e.Name, e.CallID, ErrUnknownTool)
}

func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// ToolExecutionError reports a registered tool that failed during invocation.
type ToolExecutionError struct {
	Name   string
	CallID string
	Err    error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s (call %s): execute: %v", e.Name, e.CallID, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

func (e *ToolExecutionError) Is(target error) bool {
	return target == ErrToolExecution
}

func NewToolExecutionError(name, callID string, err error) *ToolExecutionError {
	return &ToolExecutionError{
		Name:   name,
		CallID: callID,
		Err:    err,
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrMalformedToolCall):
		return KindMalformedToolCall
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrToolExecution):
		return KindToolExecution
	default:
		return KindUnknown
	}
}
