package observer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/runner"
)

// LoggerObserver writes run events to a zerolog logger.
type LoggerObserver struct {
	logger zerolog.Logger
}

// NewLoggerObserver creates a LoggerObserver.
func NewLoggerObserver(logger zerolog.Logger) *LoggerObserver {
	return &LoggerObserver{logger: logger.With().Str("component", "observer").Logger()}
}

func (o *LoggerObserver) OnLLMStart(ctx context.Context, state *runner.State, req *llm.Request) {
	o.logger.Debug().
		Str("run_id", state.RunID).
		Str("phase", string(state.Phase)).
		Int("messages", len(req.Messages)).
		Int("tools", len(req.Tools)).
		Bool("stream", req.Stream).
		Msg("llm start")
}

func (o *LoggerObserver) OnLLMEnd(ctx context.Context, state *runner.State, resp llm.Response, err error) {
	if err != nil {
		o.logger.Warn().
			Str("run_id", state.RunID).
			Str("phase", string(state.Phase)).
			Err(err).
			Msg("llm error")
		return
	}

	event := o.logger.Debug().
		Str("run_id", state.RunID).
		Str("phase", string(state.Phase))
	switch v := resp.(type) {
	case *llm.Buffered:
		event = event.
			Int("content_len", len(v.Message.Content)).
			Int("tool_calls", len(v.Message.ToolCalls)).
			Int("total_tokens", v.Usage.TotalTokens)
	case *llm.Streamed:
		event = event.Bool("stream", true)
	}
	event.Msg("llm end")
}

func (o *LoggerObserver) OnToolCall(ctx context.Context, state *runner.ToolState) {
	if state == nil {
		return
	}
	o.logger.Info().
		Str("run_id", state.RunID).
		Str("tool", state.Request.Name).
		Str("call_id", state.Request.CallID).
		Str("arguments", state.Request.ArgumentsJSON()).
		Msg("tool call")
}

func (o *LoggerObserver) OnToolResult(ctx context.Context, state *runner.ToolState) {
	if state == nil {
		return
	}
	if state.Err != nil {
		o.logger.Warn().
			Str("run_id", state.RunID).
			Str("tool", state.Request.Name).
			Str("call_id", state.Request.CallID).
			Err(state.Err).
			Msg("tool error")
		return
	}
	size := 0
	if state.Result != nil {
		size = len(state.Result.Output)
	}
	o.logger.Info().
		Str("run_id", state.RunID).
		Str("tool", state.Request.Name).
		Str("call_id", state.Request.CallID).
		Int("size", size).
		Msg("tool result")
}

func (o *LoggerObserver) OnError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	o.logger.Error().Err(err).Msg("error")
}

var _ runner.Observer = (*LoggerObserver)(nil)

// ZerologTracer logs span durations.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a tracer.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{logger: logger.With().Str("component", "tracer").Logger()}
}

func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func(error)) {
	start := time.Now()
	fields := make(map[string]any, len(attrs))
	for k, v := range attrs {
		fields[k] = v
	}
	t.logger.Trace().Str("span", name).Fields(fields).Msg("span start")
	return ctx, func(err error) {
		event := t.logger.Debug()
		if err != nil {
			event = t.logger.Warn().Err(err)
		}
		event.Str("span", name).Fields(fields).Dur("duration", time.Since(start)).Msg("span end")
	}
}

var _ runner.Tracer = (*ZerologTracer)(nil)
