package observer

import (
	"context"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/runner"
)

// Observers fans run events out to each observer in order.
type Observers []runner.Observer

// Multi combines observers, skipping nil ones. A single observer is returned
// unwrapped and none yields a no-op observer.
func Multi(items ...runner.Observer) runner.Observer {
	out := make(Observers, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	switch len(out) {
	case 0:
		return &runner.NoopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (o Observers) OnLLMStart(ctx context.Context, state *runner.State, req *llm.Request) {
	for _, obs := range o {
		obs.OnLLMStart(ctx, state, req)
	}
}

func (o Observers) OnLLMEnd(ctx context.Context, state *runner.State, resp llm.Response, err error) {
	for _, obs := range o {
		obs.OnLLMEnd(ctx, state, resp, err)
	}
}

func (o Observers) OnToolCall(ctx context.Context, state *runner.ToolState) {
	for _, obs := range o {
		obs.OnToolCall(ctx, state)
	}
}

func (o Observers) OnToolResult(ctx context.Context, state *runner.ToolState) {
	for _, obs := range o {
		obs.OnToolResult(ctx, state)
	}
}

func (o Observers) OnError(ctx context.Context, err error) {
	for _, obs := range o {
		obs.OnError(ctx, err)
	}
}

var _ runner.Observer = Observers(nil)
