package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/copilot/llm/llmtest"
	"github.com/voocel/copilot/runner"
	"github.com/voocel/copilot/schema"
	"github.com/voocel/copilot/tools"
	"github.com/voocel/copilot/tools/builtin"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func messages(entries []map[string]any) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e["message"].(string))
	}
	return out
}

func runOnce(t *testing.T, cfg runner.Config, steps ...llmtest.Step) *runner.Result {
	t.Helper()
	registry, err := tools.NewRegistry(builtin.NewCalculator())
	require.NoError(t, err)

	cfg.Client = llmtest.NewScriptedClient(steps...)
	result, err := runner.New(cfg).Run(context.Background(), schema.NewConversation("sys", "2+3?"), registry, false)
	require.NoError(t, err)
	return result
}

var calcStep = llmtest.ToolCalls(schema.ToolCall{ID: "a", Name: "tool_calculator", Arguments: `{"a":2,"b":3,"operator":"+"}`})

func TestLoggerObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	result := runOnce(t, runner.Config{Observer: NewLoggerObserver(logger)}, calcStep, llmtest.Reply("5"))

	entries := decodeLines(t, &buf)
	assert.Equal(t, []string{"llm start", "llm end", "tool call", "tool result", "llm start", "llm end"}, messages(entries))
	for _, e := range entries {
		assert.Equal(t, result.RunID, e["run_id"])
	}
	assert.Equal(t, "propose", entries[0]["phase"])
	assert.Equal(t, "tool_calculator", entries[2]["tool"])
	assert.Equal(t, "finalize", entries[4]["phase"])
}

func TestLoggerObserverErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	result := runOnce(t, runner.Config{Observer: NewLoggerObserver(logger)},
		llmtest.Fail(errors.New("refused")), llmtest.Reply("plain"))
	assert.True(t, result.Degraded)

	entries := decodeLines(t, &buf)
	assert.Equal(t, []string{"llm error", "error"}, messages(entries))
	assert.Contains(t, entries[0]["error"], "refused")
}

func TestRunnerLogsDegradation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	runOnce(t, runner.Config{Logger: &logger}, llmtest.Reply("no tools"), llmtest.Reply("plain"))

	entries := decodeLines(t, &buf)
	assert.Equal(t, []string{"trying to use tools", "call tools failed", "use default chat mode without tools"}, messages(entries))
	assert.Equal(t, "no_tool_calls", entries[1]["reason"])
}

func TestZerologTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf).Level(zerolog.DebugLevel))

	_, end := tracer.StartSpan(context.Background(), "llm.propose", map[string]string{"run_id": "r1"})
	end(nil)
	_, end = tracer.StartSpan(context.Background(), "llm.finalize", nil)
	end(errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "llm.propose", entries[0]["span"])
	assert.Equal(t, "r1", entries[0]["run_id"])
	assert.Contains(t, entries[0], "duration")
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestStatsAndMulti(t *testing.T) {
	stats := NewStatsObserver()
	var buf bytes.Buffer
	combined := Multi(nil, stats, NewLoggerObserver(zerolog.New(&buf)))
	require.IsType(t, Observers{}, combined)

	runOnce(t, runner.Config{Observer: combined}, calcStep, llmtest.Reply("5"))
	runOnce(t, runner.Config{Observer: combined},
		llmtest.ToolCalls(schema.ToolCall{ID: "b", Name: "tool_calculator", Arguments: `{"a":1,"b":0,"operator":"/"}`}),
		llmtest.Reply("fallback"))
	assert.NotEmpty(t, decodeLines(t, &buf))

	snap := stats.Snapshot()
	assert.Equal(t, 2, snap.LLMCalls[runner.PhasePropose])
	assert.Equal(t, 1, snap.LLMCalls[runner.PhaseFinalize])
	assert.Equal(t, 1, snap.LLMCalls[runner.PhaseChat])
	assert.Equal(t, 2, snap.ToolCalls)
	assert.Equal(t, 1, snap.ToolErrors)
	assert.Zero(t, snap.LLMErrors)

	snap.LLMCalls[runner.PhasePropose] = 100
	assert.Equal(t, 2, stats.Snapshot().LLMCalls[runner.PhasePropose])
}

func TestMultiUnwraps(t *testing.T) {
	stats := NewStatsObserver()
	assert.Same(t, stats, Multi(nil, stats))
	assert.IsType(t, &runner.NoopObserver{}, Multi())
}

func TestStatsLogObject(t *testing.T) {
	stats := NewStatsObserver()
	runOnce(t, runner.Config{Observer: stats}, calcStep, llmtest.Reply("5"))

	var buf bytes.Buffer
	zerolog.New(&buf).Info().Object("stats", stats.Snapshot()).Msg("session stats")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	fields, ok := entries[0]["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, fields["propose_calls"])
	assert.EqualValues(t, 1, fields["finalize_calls"])
	assert.EqualValues(t, 1, fields["tool_calls"])
}
