// Package llmtest provides scripted llm.Client doubles for tests.
package llmtest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/schema"
)

// FragmentReader is an in-memory llm.ChunkReader.
type FragmentReader struct {
	mu        sync.Mutex
	fragments []string
	pos       int
	err       error
	closed    bool
}

// NewFragmentReader yields fragments in order, then io.EOF.
func NewFragmentReader(fragments ...string) *FragmentReader {
	return &FragmentReader{fragments: fragments}
}

// FailAfter makes the reader return err once the fragments are exhausted.
func (r *FragmentReader) FailAfter(err error) *FragmentReader {
	r.err = err
	return r
}

func (r *FragmentReader) Read() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", io.EOF
	}
	if r.pos < len(r.fragments) {
		fragment := r.fragments[r.pos]
		r.pos++
		return fragment, nil
	}
	if r.err != nil {
		return "", r.err
	}
	return "", io.EOF
}

func (r *FragmentReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *FragmentReader) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// StreamOf builds a stream over fragments.
func StreamOf(fragments ...string) *llm.Stream {
	return llm.NewStream(NewFragmentReader(fragments...))
}

// Step is one scripted reply.
// Response and Err are returned verbatim when set. Otherwise Text (or Fragments)
// is returned buffered or streamed to match the request's Stream flag.
type Step struct {
	Response  llm.Response
	Err       error
	Text      string
	Fragments []string
}

// Reply answers with text.
func Reply(text string) Step {
	return Step{Text: text}
}

// ReplyFragments answers with text split into the given fragments when streamed.
func ReplyFragments(fragments ...string) Step {
	var text string
	for _, f := range fragments {
		text += f
	}
	return Step{Text: text, Fragments: fragments}
}

// ToolCalls answers with a buffered assistant message carrying tool calls.
func ToolCalls(calls ...schema.ToolCall) Step {
	msg := schema.AssistantMessage("")
	msg.ToolCalls = calls
	return Step{Response: &llm.Buffered{Message: msg, FinishReason: "tool_calls"}}
}

// Fail answers with a transport failure wrapping err.
func Fail(err error) Step {
	return Step{Err: schema.NewTransportError("scripted", "complete", err)}
}

// ScriptedClient replays steps in order and records every request.
type ScriptedClient struct {
	mu       sync.Mutex
	steps    []Step
	requests []llm.Request
}

// NewScriptedClient creates a client that answers with steps in order.
func NewScriptedClient(steps ...Step) *ScriptedClient {
	return &ScriptedClient{steps: steps}
}

func (c *ScriptedClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recorded := req
	recorded.Messages = schema.Conversation(req.Messages).Clone()
	recorded.Tools = append([]schema.ToolDefinition(nil), req.Tools...)
	c.requests = append(c.requests, recorded)

	if err := ctx.Err(); err != nil {
		return nil, schema.NewTransportError("scripted", "complete", err)
	}
	if len(c.steps) == 0 {
		return nil, schema.NewTransportError("scripted", "complete", errors.New("no scripted response left"))
	}
	step := c.steps[0]
	c.steps = c.steps[1:]

	switch {
	case step.Err != nil:
		return nil, step.Err
	case step.Response != nil:
		return step.Response, nil
	case req.Stream:
		fragments := step.Fragments
		if len(fragments) == 0 {
			fragments = []string{step.Text}
		}
		return &llm.Streamed{Stream: StreamOf(fragments...)}, nil
	default:
		return &llm.Buffered{Message: schema.AssistantMessage(step.Text), FinishReason: "stop"}, nil
	}
}

// Requests returns the recorded requests.
func (c *ScriptedClient) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.requests...)
}

// Calls returns the number of Complete calls.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Remaining returns the number of unused steps.
func (c *ScriptedClient) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}
