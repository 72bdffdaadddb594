package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/voocel/copilot/schema"
)

const callIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Parsed holds the tool requests of one round and the assistant message they came from.
type Parsed struct {
	Requests []schema.ToolRequest
	Message  schema.Message
}

// ParseToolCalls extracts the ordered tool requests from a response.
// Zero requests is not an error here; the caller decides what that means.
func ParseToolCalls(resp Response) (Parsed, error) {
	switch r := resp.(type) {
	case *Buffered:
		if r == nil {
			return Parsed{}, &schema.MalformedToolCallError{Err: errors.New("nil buffered response")}
		}
		return parseBuffered(r)
	case *Streamed:
		if r == nil || r.Stream == nil {
			return Parsed{}, &schema.MalformedToolCallError{Err: errors.New("nil streamed response")}
		}
		return parseStreamed(r)
	default:
		return Parsed{}, &schema.MalformedToolCallError{
			Payload: fmt.Sprintf("%T", resp),
			Err:     errors.New("unsupported response variant"),
		}
	}
}

func parseBuffered(r *Buffered) (Parsed, error) {
	msg := r.Message.Clone()
	if msg.Role == "" {
		msg.Role = schema.RoleAssistant
	}

	requests := make([]schema.ToolRequest, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		args, err := decodeObject([]byte(call.Arguments))
		if err != nil {
			return Parsed{}, &schema.MalformedToolCallError{Payload: call.Arguments, Err: err}
		}
		requests = append(requests, schema.ToolRequest{
			CallID:    call.ID,
			Name:      call.Name,
			Arguments: args,
		})
	}
	return Parsed{Requests: requests, Message: msg}, nil
}

// parseStreamed reads one JSON object per line: {"name": ..., "parameters": {...}}.
func parseStreamed(r *Streamed) (Parsed, error) {
	text, err := r.Stream.Text()
	if err != nil {
		return Parsed{}, err
	}

	var (
		requests []schema.ToolRequest
		calls    []schema.ToolCall
		seen     = make(map[string]struct{})
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
			if err == nil {
				err = errors.New("not a JSON object")
			}
			return Parsed{}, &schema.MalformedToolCallError{Line: i + 1, Payload: line, Err: err}
		}

		var name string
		if raw, ok := fields["name"]; !ok || json.Unmarshal(raw, &name) != nil || name == "" {
			return Parsed{}, &schema.MalformedToolCallError{Line: i + 1, Payload: line, Err: errors.New(`missing string "name"`)}
		}
		raw, ok := fields["parameters"]
		if !ok {
			return Parsed{}, &schema.MalformedToolCallError{Line: i + 1, Payload: line, Err: errors.New(`missing "parameters"`)}
		}
		args, err := decodeObject(raw)
		if err != nil {
			return Parsed{}, &schema.MalformedToolCallError{Line: i + 1, Payload: line, Err: fmt.Errorf("parameters: %w", err)}
		}

		id := NewCallID()
		for _, dup := seen[id]; dup; _, dup = seen[id] {
			id = NewCallID()
		}
		seen[id] = struct{}{}

		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			compact.Reset()
			compact.Write(raw)
		}
		requests = append(requests, schema.ToolRequest{CallID: id, Name: name, Arguments: args})
		calls = append(calls, schema.ToolCall{ID: id, Name: name, Arguments: compact.String()})
	}

	msg := schema.AssistantMessage(text)
	msg.ToolCalls = calls
	return Parsed{Requests: requests, Message: msg}, nil
}

// decodeObject decodes a JSON object. Blank input is an empty object.
func decodeObject(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return obj, nil
}

// NewCallID synthesizes a tool call id: "call_" followed by 8 alphanumeric characters.
// Ids only correlate calls and results within one round.
func NewCallID() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = callIDAlphabet[rand.IntN(len(callIDAlphabet))]
	}
	return "call_" + string(b)
}
