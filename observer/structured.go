package observer

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voocel/copilot/llm"
	"github.com/voocel/copilot/runner"
)

// Stats is a snapshot of counters collected by StatsObserver.
type Stats struct {
	LLMCalls    map[runner.Phase]int `json:"llm_calls"`
	LLMErrors   int                  `json:"llm_errors"`
	ToolCalls   int                  `json:"tool_calls"`
	ToolErrors  int                  `json:"tool_errors"`
	TotalTokens int                  `json:"total_tokens"`
}

// MarshalZerologObject logs the counters as fields.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("propose_calls", s.LLMCalls[runner.PhasePropose]).
		Int("finalize_calls", s.LLMCalls[runner.PhaseFinalize]).
		Int("chat_calls", s.LLMCalls[runner.PhaseChat]).
		Int("llm_errors", s.LLMErrors).
		Int("tool_calls", s.ToolCalls).
		Int("tool_errors", s.ToolErrors).
		Int("total_tokens", s.TotalTokens)
}

// StatsObserver counts calls across runs. Safe for concurrent use.
type StatsObserver struct {
	mu    sync.Mutex
	stats Stats
}

// NewStatsObserver creates a StatsObserver.
func NewStatsObserver() *StatsObserver {
	return &StatsObserver{stats: Stats{LLMCalls: make(map[runner.Phase]int)}}
}

func (o *StatsObserver) OnLLMStart(ctx context.Context, state *runner.State, req *llm.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats.LLMCalls[state.Phase]++
}

func (o *StatsObserver) OnLLMEnd(ctx context.Context, state *runner.State, resp llm.Response, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.stats.LLMErrors++
		return
	}
	if b, ok := resp.(*llm.Buffered); ok {
		o.stats.TotalTokens += b.Usage.TotalTokens
	}
}

func (o *StatsObserver) OnToolCall(ctx context.Context, state *runner.ToolState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats.ToolCalls++
}

func (o *StatsObserver) OnToolResult(ctx context.Context, state *runner.ToolState) {
	if state == nil || state.Err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats.ToolErrors++
}

func (o *StatsObserver) OnError(ctx context.Context, err error) {}

// Snapshot returns a copy of the counters.
func (o *StatsObserver) Snapshot() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.stats
	out.LLMCalls = make(map[runner.Phase]int, len(o.stats.LLMCalls))
	for k, v := range o.stats.LLMCalls {
		out.LLMCalls[k] = v
	}
	return out
}

var _ runner.Observer = (*StatsObserver)(nil)
