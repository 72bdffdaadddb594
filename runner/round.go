package runner

import (
	"errors"

	"github.com/voocel/copilot/schema"
)

// FailureReason explains why a tool round was abandoned.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonTransport         FailureReason = "transport"
	ReasonMalformedToolCall FailureReason = "malformed_tool_call"
	ReasonNoToolCalls       FailureReason = "no_tool_calls"
	ReasonUnknownTool       FailureReason = "unknown_tool"
	ReasonToolExecution     FailureReason = "tool_execution"
	ReasonCorrelation       FailureReason = "correlation"
)

// round is the outcome of propose and execute: either a tool-augmented
// conversation or a failure reason.
type round struct {
	conversation schema.Conversation
	requests     []schema.ToolRequest
	results      []schema.ToolResult

	reason FailureReason
	err    error
}

func (r round) failed() bool {
	return r.reason != ReasonNone
}

func failedRound(err error, fallback FailureReason) round {
	return round{reason: reasonOf(err, fallback), err: err}
}

// reasonOf classifies err, using fallback for errors outside the taxonomy.
func reasonOf(err error, fallback FailureReason) FailureReason {
	switch {
	case errors.Is(err, schema.ErrNoToolCalls):
		return ReasonNoToolCalls
	case errors.Is(err, schema.ErrCorrelation):
		return ReasonCorrelation
	}
	switch schema.KindOf(err) {
	case schema.KindTransport:
		return ReasonTransport
	case schema.KindMalformedToolCall:
		return ReasonMalformedToolCall
	case schema.KindUnknownTool:
		return ReasonUnknownTool
	case schema.KindToolExecution:
		return ReasonToolExecution
	default:
		return fallback
	}
}
