package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/voocel/copilot/schema"
)

// Executor runs tool requests strictly sequentially, in request order.
type Executor struct {
	continueOnError bool
	timeout         time.Duration
	maxLines        int
	maxBytes        int
	onBefore        func(ctx context.Context, req schema.ToolRequest)
	onAfter         func(ctx context.Context, req schema.ToolRequest, result schema.ToolResult, err error)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithContinueOnError substitutes failures with an "error: <message>" output
// instead of aborting the batch.
func WithContinueOnError() ExecutorOption {
	return func(e *Executor) {
		e.continueOnError = true
	}
}

// WithTimeout bounds every single tool invocation.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithMaxOutput truncates every tool output to its first maxLines lines and
// at most maxBytes bytes. Zero disables a limit.
func WithMaxOutput(maxLines, maxBytes int) ExecutorOption {
	return func(e *Executor) {
		e.maxLines = maxLines
		e.maxBytes = maxBytes
	}
}

// WithOnBeforeCall registers a hook run before each invocation.
func WithOnBeforeCall(fn func(ctx context.Context, req schema.ToolRequest)) ExecutorOption {
	return func(e *Executor) {
		e.onBefore = fn
	}
}

// WithOnAfterCall registers a hook run after each invocation, failed or not.
func WithOnAfterCall(fn func(ctx context.Context, req schema.ToolRequest, result schema.ToolResult, err error)) ExecutorOption {
	return func(e *Executor) {
		e.onAfter = fn
	}
}

// NewExecutor creates an executor. The default policy aborts on the first failure.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ContinueOnError reports whether failures are substituted rather than returned.
func (e *Executor) ContinueOnError() bool {
	return e.continueOnError
}

// Execute resolves every request against registry and invokes it.
// Under the default policy the first unknown tool or failing tool stops the batch:
// the results gathered so far are returned with the error and no later request runs.
func (e *Executor) Execute(ctx context.Context, requests []schema.ToolRequest, registry *Registry) ([]schema.ToolResult, error) {
	results := make([]schema.ToolResult, 0, len(requests))
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("execute tools: %w", err)
		}

		if e.onBefore != nil {
			e.onBefore(ctx, req)
		}
		result, err := e.executeOne(ctx, req, registry)
		if err != nil && e.continueOnError {
			result.Output = "error: " + err.Error()
		}
		if e.onAfter != nil {
			e.onAfter(ctx, req, result, err)
		}
		if err != nil && !e.continueOnError {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Executor) executeOne(ctx context.Context, req schema.ToolRequest, registry *Registry) (result schema.ToolResult, err error) {
	result = schema.ToolResult{CallID: req.CallID, Name: req.Name}

	ent, ok := registry.lookup(req.Name)
	if !ok {
		return result, &schema.UnknownToolError{Name: req.Name, CallID: req.CallID}
	}

	if err := validateArguments(ent.validator, []byte(req.ArgumentsJSON())); err != nil {
		return result, schema.NewToolExecutionError(req.Name, req.CallID, err)
	}

	execCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = schema.NewToolExecutionError(req.Name, req.CallID, fmt.Errorf("panic: %v", r))
		}
	}()

	output, invokeErr := ent.tool.Invoke(execCtx, req.Arguments)
	if invokeErr != nil {
		return result, schema.NewToolExecutionError(req.Name, req.CallID, invokeErr)
	}
	if e.maxLines > 0 || e.maxBytes > 0 {
		output = truncateOutput(output, e.maxLines, e.maxBytes)
	}
	result.Output = output
	return result, nil
}
