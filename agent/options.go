package agent

import (
	"github.com/rs/zerolog"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/runner"
	"github.com/voocel/copilot/tools"
)

type options struct {
	client   llm.Client
	registry *tools.Registry
	tools    []tools.Tool
	logger   *zerolog.Logger
	observer runner.Observer
	tracer   runner.Tracer
}

// Option configures an Assistant.
type Option func(*options)

// WithClient replaces the litellm client built from the configuration.
func WithClient(client llm.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithRegistry replaces the built-in toolkit.
func WithRegistry(registry *tools.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithTools registers tools instead of the built-in toolkit.
// Invalid tools surface as an error from New.
func WithTools(toolList ...tools.Tool) Option {
	return func(o *options) {
		o.tools = append(o.tools, toolList...)
	}
}

// WithLogger sets the logger passed to the runner.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithObserver attaches a runner observer.
func WithObserver(observer runner.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithTracer attaches a runner tracer.
func WithTracer(tracer runner.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}
