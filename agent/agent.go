// Package agent is the writing assistant built on the runner: a fixed system
// prompt, the built-in toolkit and the settings loaded by package config.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/voocel/copilot/config"
	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/prompts"
	"github.com/voocel/copilot/runner"
	"github.com/voocel/copilot/schema"
	"github.com/voocel/copilot/tools"
	"github.com/voocel/copilot/tools/builtin"
)

// Assistant answers user text with or without tools.
// It is read-only after New and safe for concurrent use.
type Assistant struct {
	settings config.AssistantConfig
	stream   bool
	registry *tools.Registry
	runner   *runner.Runner
	logger   zerolog.Logger
}

// New creates an assistant from cfg. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	client := o.client
	if client == nil {
		client = llm.NewLiteLLMClient(cfg.LLM())
	}

	registry := o.registry
	switch {
	case len(o.tools) > 0:
		r, err := tools.NewRegistry(o.tools...)
		if err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
		registry = r
	case registry == nil:
		r, err := builtin.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("agent: builtin toolkit: %w", err)
		}
		registry = r
	}

	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	var execOpts []tools.ExecutorOption
	if cfg.Assistant.ContinueOnToolError {
		execOpts = append(execOpts, tools.WithContinueOnError())
	}
	if cfg.Assistant.ToolTimeout > 0 {
		execOpts = append(execOpts, tools.WithTimeout(cfg.Assistant.ToolTimeout))
	}
	if cfg.Assistant.MaxToolOutput > 0 {
		execOpts = append(execOpts, tools.WithMaxOutput(0, cfg.Assistant.MaxToolOutput))
	}

	r := runner.New(runner.Config{
		Client:          client,
		Logger:          &logger,
		Observer:        o.observer,
		Tracer:          o.tracer,
		ToolPrompt:      cfg.Assistant.ToolPrompt,
		ExecutorOptions: execOpts,
	})

	settings := cfg.Assistant
	if settings.SystemPrompt == "" {
		settings.SystemPrompt = prompts.Assistant
	}
	if settings.Language == "" {
		settings.Language = prompts.DefaultLanguage
	}

	return &Assistant{
		settings: settings,
		stream:   cfg.Advanced.Stream,
		registry: registry,
		runner:   r,
		logger:   logger.With().Str("component", "assistant").Logger(),
	}, nil
}

// Language is the output language templates are rendered with.
func (a *Assistant) Language() string {
	return a.settings.Language
}

// Streaming reports whether answers are streamed.
func (a *Assistant) Streaming() bool {
	return a.stream
}

// Tools returns the registered tool names.
func (a *Assistant) Tools() []string {
	return a.registry.Names()
}

// Render fills a task or editor template with text in the configured language.
func (a *Assistant) Render(t prompts.Template, text string) string {
	return t.Render(text, a.settings.Language)
}

// Generate answers text in a fresh conversation of the system prompt and one user turn.
func (a *Assistant) Generate(ctx context.Context, text string) (*runner.Result, error) {
	return a.run(ctx, schema.NewConversation(a.settings.SystemPrompt, text))
}

// Continue appends a user turn to conv and answers it. conv is not modified;
// the extended conversation is returned on the result.
// A conversation without a system message gets the assistant's system prompt.
func (a *Assistant) Continue(ctx context.Context, conv schema.Conversation, text string) (*runner.Result, error) {
	if len(conv) == 0 {
		return a.Generate(ctx, text)
	}
	next := make(schema.Conversation, 0, len(conv)+2)
	if _, ok := conv.System(); !ok {
		next = append(next, schema.SystemMessage(a.settings.SystemPrompt))
	}
	next = append(next, conv.Clone()...)
	next.Append(schema.UserMessage(text))
	return a.run(ctx, next)
}

func (a *Assistant) run(ctx context.Context, conv schema.Conversation) (*runner.Result, error) {
	if a == nil || a.runner == nil {
		return nil, errors.New("agent: assistant is not initialized")
	}
	if !a.settings.UseTools {
		return a.runner.Chat(ctx, conv, a.stream)
	}
	result, err := a.runner.Run(ctx, conv, a.registry, a.stream)
	if err != nil {
		return nil, err
	}
	if result.Degraded {
		a.logger.Debug().Str("run_id", result.RunID).Str("reason", string(result.Reason)).Msg("answered without tools")
	}
	return result, nil
}
