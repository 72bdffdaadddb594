package llm

import (
	"context"

	"github.com/voocel/copilot/schema"
)

// ToolChoiceAuto lets the model decide whether to call tools.
const ToolChoiceAuto = "auto"

// Client is a stateless chat-completion boundary.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Request represents a chat completion request.
// Zero values fall back to the client's configured defaults.
type Request struct {
	Model       string                  `json:"model,omitempty"`
	Messages    []schema.Message        `json:"messages"`
	Tools       []schema.ToolDefinition `json:"tools,omitempty"`
	ToolChoice  string                  `json:"tool_choice,omitempty"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Stream      bool                    `json:"stream,omitempty"`
}

// Response is either *Buffered or *Streamed.
type Response interface {
	response()
}

// Buffered is a complete, non-incremental response.
type Buffered struct {
	Message      schema.Message
	FinishReason string
	Usage        Usage
}

// Streamed is a response delivered as ordered text fragments.
type Streamed struct {
	Stream *Stream
}

func (*Buffered) response() {}
func (*Streamed) response() {}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
