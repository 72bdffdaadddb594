package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/prompts"
	"github.com/voocel/copilot/schema"
	"github.com/voocel/copilot/tools"
)

// Config controls Runner behavior.
type Config struct {
	Client   llm.Client
	Logger   *zerolog.Logger
	Observer Observer
	Tracer   Tracer

	// ToolPrompt replaces the system message while the model proposes tool calls.
	ToolPrompt string
	// ExecutorOptions configure tool execution, e.g. tools.WithContinueOnError().
	ExecutorOptions []tools.ExecutorOption

	// Per-request overrides; zero values defer to the client's configuration.
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Runner drives one propose, execute and finalize round per Run.
// A Runner is read-only after New and safe for concurrent use.
type Runner struct {
	config Config
	logger zerolog.Logger
}

// New creates a Runner and fills default config.
func New(cfg Config) *Runner {
	if cfg.ToolPrompt == "" {
		cfg.ToolPrompt = prompts.ToolUse
	}
	if cfg.Observer == nil {
		cfg.Observer = &NoopObserver{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = &NoopTracer{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Runner{config: cfg, logger: logger.With().Str("component", "runner").Logger()}
}

// Result is the outcome of a Run.
// Exactly one of Text and Stream is meaningful, depending on the stream flag.
type Result struct {
	RunID  string
	Text   string
	Stream *llm.Stream
	// Conversation is the mutated conversation. For a streamed answer the final
	// assistant message is appended once the stream is drained.
	Conversation *schema.Conversation

	Degraded bool
	Reason   FailureReason
	Cause    error

	Requests []schema.ToolRequest
	Results  []schema.ToolResult
}

// Streamed reports whether the answer is delivered as a stream.
func (r *Result) Streamed() bool {
	return r.Stream != nil
}

// Run executes the tool-calling protocol over conv.
// Failures while proposing or executing tools degrade to a plain completion over
// the original conversation. Failures of the finalize or degraded call are returned
// and leave no partial output behind. conv itself is never modified.
func (r *Runner) Run(ctx context.Context, conv schema.Conversation, registry *tools.Registry, stream bool) (result *Result, err error) {
	if r.config.Client == nil {
		return nil, errors.New("runner: client is nil")
	}

	runID := uuid.NewString()
	ctx, endSpan := r.config.Tracer.StartSpan(ctx, "runner.run", map[string]string{
		"run_id": runID,
		"stream": strconv.FormatBool(stream),
		"tools":  strconv.Itoa(registry.Count()),
	})
	defer func() { endSpan(err) }()

	if registry.Count() == 0 {
		return r.chat(ctx, runID, conv, stream)
	}

	r.logger.Info().Str("run_id", runID).Msg("trying to use tools")
	rd := r.propose(ctx, runID, conv, registry)
	if rd.failed() {
		r.logger.Warn().Str("run_id", runID).Str("reason", string(rd.reason)).Err(rd.err).Msg("call tools failed")
		r.logger.Info().Str("run_id", runID).Msg("use default chat mode without tools")

		result, err := r.chat(ctx, runID, conv, stream)
		if err != nil {
			return nil, err
		}
		result.Degraded = true
		result.Reason = rd.reason
		result.Cause = rd.err
		return result, nil
	}

	return r.finalize(ctx, runID, rd, registry, stream)
}

// Chat issues one plain completion without tools.
func (r *Runner) Chat(ctx context.Context, conv schema.Conversation, stream bool) (*Result, error) {
	if r.config.Client == nil {
		return nil, errors.New("runner: client is nil")
	}
	return r.chat(ctx, uuid.NewString(), conv, stream)
}

// propose asks the model for tool calls and executes them on a copy of conv.
func (r *Runner) propose(ctx context.Context, runID string, conv schema.Conversation, registry *tools.Registry) round {
	messages := make(schema.Conversation, 0, len(conv)+1)
	messages = append(messages, schema.SystemMessage(r.config.ToolPrompt))
	messages = append(messages, conv.WithoutSystem()...)

	req := r.newRequest(messages, false)
	req.Tools = registry.Definitions()
	req.ToolChoice = llm.ToolChoiceAuto
	req.Temperature = llm.Float64(0)

	state := &State{RunID: runID, Phase: PhasePropose, Messages: messages}
	resp, err := r.complete(ctx, state, req)
	if err != nil {
		return failedRound(err, ReasonTransport)
	}

	parsed, err := llm.ParseToolCalls(resp)
	if err != nil {
		return failedRound(err, ReasonMalformedToolCall)
	}
	if len(parsed.Requests) == 0 {
		return failedRound(schema.ErrNoToolCalls, ReasonNoToolCalls)
	}

	working := conv.Clone()
	working.Append(parsed.Message)

	results, err := r.executor(runID).Execute(ctx, parsed.Requests, registry)
	if err != nil {
		r.config.Observer.OnError(ctx, err)
		return failedRound(err, ReasonToolExecution)
	}

	toolMessages, err := correlate(parsed.Requests, results)
	if err != nil {
		return failedRound(err, ReasonCorrelation)
	}
	working.Append(toolMessages...)

	return round{
		conversation: working,
		requests:     parsed.Requests,
		results:      results,
	}
}

// finalize sends the tool-augmented conversation for the final answer.
func (r *Runner) finalize(ctx context.Context, runID string, rd round, registry *tools.Registry, stream bool) (*Result, error) {
	req := r.newRequest(rd.conversation, stream)
	req.Tools = registry.Definitions()
	req.ToolChoice = llm.ToolChoiceAuto

	state := &State{RunID: runID, Phase: PhaseFinalize, Messages: rd.conversation}
	resp, err := r.complete(ctx, state, req)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	result := &Result{RunID: runID, Requests: rd.requests, Results: rd.results}
	if err := deliver(resp, rd.conversation, result); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	return result, nil
}

// chat is the tool-less completion used both directly and when degrading.
func (r *Runner) chat(ctx context.Context, runID string, conv schema.Conversation, stream bool) (*Result, error) {
	messages := conv.Clone()
	req := r.newRequest(messages, stream)

	state := &State{RunID: runID, Phase: PhaseChat, Messages: messages}
	resp, err := r.complete(ctx, state, req)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	result := &Result{RunID: runID}
	if err := deliver(resp, messages, result); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return result, nil
}

// deliver appends the answer to conv and exposes it on result.
func deliver(resp llm.Response, conv schema.Conversation, result *Result) error {
	out := conv
	result.Conversation = &out

	switch v := resp.(type) {
	case *llm.Buffered:
		if v == nil {
			return errors.New("nil buffered response")
		}
		msg := v.Message.Clone()
		if msg.Role == "" {
			msg.Role = schema.RoleAssistant
		}
		result.Conversation.Append(msg)
		result.Text = msg.Content
	case *llm.Streamed:
		if v == nil || v.Stream == nil {
			return errors.New("nil streamed response")
		}
		target := result.Conversation
		v.Stream.OnComplete(func(text string) {
			target.Append(schema.AssistantMessage(text))
		})
		result.Stream = v.Stream
	default:
		return fmt.Errorf("unsupported response %T", resp)
	}
	return nil
}

// correlate pairs every request with exactly one result by call id and
// returns the tool messages in request order.
func correlate(requests []schema.ToolRequest, results []schema.ToolResult) ([]schema.Message, error) {
	if len(results) != len(requests) {
		return nil, fmt.Errorf("%w: %d requests, %d results", schema.ErrCorrelation, len(requests), len(results))
	}

	byID := make(map[string]schema.ToolResult, len(results))
	for _, res := range results {
		if _, dup := byID[res.CallID]; dup {
			return nil, fmt.Errorf("%w: duplicate result for call %q", schema.ErrCorrelation, res.CallID)
		}
		byID[res.CallID] = res
	}

	messages := make([]schema.Message, 0, len(requests))
	for _, req := range requests {
		res, ok := byID[req.CallID]
		if !ok {
			return nil, fmt.Errorf("%w: no result for call %q", schema.ErrCorrelation, req.CallID)
		}
		if res.Name != req.Name {
			return nil, fmt.Errorf("%w: call %q answered by %q, want %q", schema.ErrCorrelation, req.CallID, res.Name, req.Name)
		}
		delete(byID, req.CallID)
		messages = append(messages, schema.ToolMessage(res))
	}
	return messages, nil
}

func (r *Runner) newRequest(messages schema.Conversation, stream bool) llm.Request {
	return llm.Request{
		Model:       r.config.Model,
		Messages:    messages,
		Temperature: r.config.Temperature,
		MaxTokens:   r.config.MaxTokens,
		Stream:      stream,
	}
}

func (r *Runner) complete(ctx context.Context, state *State, req llm.Request) (llm.Response, error) {
	spanCtx, endSpan := r.config.Tracer.StartSpan(ctx, "llm."+string(state.Phase), map[string]string{
		"run_id": state.RunID,
		"phase":  string(state.Phase),
		"stream": strconv.FormatBool(req.Stream),
		"tools":  strconv.Itoa(len(req.Tools)),
	})
	r.config.Observer.OnLLMStart(spanCtx, state, &req)
	resp, err := r.config.Client.Complete(spanCtx, req)
	endSpan(err)
	r.config.Observer.OnLLMEnd(spanCtx, state, resp, err)
	if err != nil {
		r.config.Observer.OnError(spanCtx, err)
	}
	return resp, err
}

// executor wires the observer into a per-run executor.
func (r *Runner) executor(runID string) *tools.Executor {
	opts := make([]tools.ExecutorOption, 0, len(r.config.ExecutorOptions)+2)
	opts = append(opts, r.config.ExecutorOptions...)
	opts = append(opts,
		tools.WithOnBeforeCall(func(ctx context.Context, req schema.ToolRequest) {
			r.config.Observer.OnToolCall(ctx, &ToolState{RunID: runID, Request: req})
		}),
		tools.WithOnAfterCall(func(ctx context.Context, req schema.ToolRequest, res schema.ToolResult, err error) {
			r.config.Observer.OnToolResult(ctx, &ToolState{RunID: runID, Request: req, Result: &res, Err: err})
		}),
	)
	return tools.NewExecutor(opts...)
}
