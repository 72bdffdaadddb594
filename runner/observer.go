package runner

import (
	"context"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/schema"
)

// Phase names the completion call being made.
type Phase string

const (
	PhasePropose  Phase = "propose"
	PhaseFinalize Phase = "finalize"
	PhaseChat     Phase = "chat"
)

// State describes the context of one completion call.
type State struct {
	RunID    string
	Phase    Phase
	Messages []schema.Message
}

// ToolState describes tool call context.
type ToolState struct {
	RunID   string
	Request schema.ToolRequest
	Result  *schema.ToolResult
	Err     error
}

// Observer provides observability callbacks.
type Observer interface {
	OnLLMStart(ctx context.Context, state *State, req *llm.Request)
	OnLLMEnd(ctx context.Context, state *State, resp llm.Response, err error)
	OnToolCall(ctx context.Context, state *ToolState)
	OnToolResult(ctx context.Context, state *ToolState)
	OnError(ctx context.Context, err error)
}

// NoopObserver is a default no-op implementation.
type NoopObserver struct{}

func (o *NoopObserver) OnLLMStart(ctx context.Context, state *State, req *llm.Request)           {}
func (o *NoopObserver) OnLLMEnd(ctx context.Context, state *State, resp llm.Response, err error) {}
func (o *NoopObserver) OnToolCall(ctx context.Context, state *ToolState)                         {}
func (o *NoopObserver) OnToolResult(ctx context.Context, state *ToolState)                       {}
func (o *NoopObserver) OnError(ctx context.Context, err error)                                   {}

// Tracer provides a lightweight tracing interface.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error))
}

// NoopTracer is a default no-op implementation.
type NoopTracer struct{}

func (t *NoopTracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error)) {
	return ctx, func(error) {}
}
