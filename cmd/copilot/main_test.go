package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/copilot/agent"
	"github.com/voocel/copilot/config"
	"github.com/voocel/copilot/llm/llmtest"
	"github.com/voocel/copilot/observer"
)

func newAssistant(t *testing.T, stream bool, steps ...llmtest.Step) (*agent.Assistant, *llmtest.ScriptedClient) {
	t.Helper()
	cfg := config.Default()
	cfg.Advanced.Stream = stream
	cfg.Assistant.UseTools = false
	cfg.Assistant.Language = "English"
	client := llmtest.NewScriptedClient(steps...)
	a, err := agent.New(&cfg, agent.WithClient(client))
	require.NoError(t, err)
	return a, client
}

func TestReadInput(t *testing.T) {
	text, err := readInput([]string{"fix", "this"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "fix this", text)

	text, err = readInput(nil, strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	_, err = readInput(nil, strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	a, _ := newAssistant(t, false)

	tests := []struct {
		name    string
		task    string
		editor  string
		want    string
		wantErr bool
	}{
		{"plain", "", "", "hello", false},
		{"task", "explain", "", "Explain the text below in English:\n\nhello\n\nExplanation:", false},
		{"editor", "", "Formal", "Rewrite the text below in a formal tone in English:\n\nhello\n\nRewritten Text:", false},
		{"both", "explain", "formal", "", true},
		{"unknown task", "poem", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPrompt(a, "hello", tt.task, tt.editor)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitStream(t *testing.T) {
	a, _ := newAssistant(t, true, llmtest.ReplyFragments("Hel", "lo"))
	result, err := a.Generate(context.Background(), "hi")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, emit(&out, result))
	assert.Equal(t, "Hello\n", out.String())
}

func TestREPLCarriesConversation(t *testing.T) {
	a, client := newAssistant(t, false, llmtest.Reply("one"), llmtest.Reply("two"))

	var out bytes.Buffer
	err := repl(context.Background(), a, strings.NewReader("first\n\nsecond\n/exit\nignored\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "one\n")
	assert.Contains(t, out.String(), "two\n")
	require.Equal(t, 2, client.Calls())
	assert.Len(t, client.Requests()[1].Messages, 4)
}

func TestLogStats(t *testing.T) {
	stats := observer.NewStatsObserver()
	cfg := config.Default()
	cfg.Advanced.Stream = false
	cfg.Assistant.UseTools = false
	a, err := agent.New(&cfg,
		agent.WithClient(llmtest.NewScriptedClient(llmtest.Reply("ok"))),
		agent.WithObserver(observer.Multi(observer.NewLoggerObserver(zerolog.Nop()), stats)),
	)
	require.NoError(t, err)
	_, err = a.Generate(context.Background(), "hi")
	require.NoError(t, err)

	var buf bytes.Buffer
	logStats(zerolog.New(&buf).Level(zerolog.InfoLevel), stats)
	assert.Empty(t, buf.String())

	logStats(zerolog.New(&buf).Level(zerolog.DebugLevel), stats)
	assert.Contains(t, buf.String(), `"message":"session stats"`)
	assert.Contains(t, buf.String(), `"chat_calls":1`)
}
