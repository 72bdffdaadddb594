package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/copilot/config"
	"github.com/voocel/copilot/llm/llmtest"
	"github.com/voocel/copilot/prompts"
	"github.com/voocel/copilot/schema"
	"github.com/voocel/copilot/tools"
	"github.com/voocel/copilot/tools/builtin"
)

func testConfig(stream, useTools bool) *config.Config {
	cfg := config.Default()
	cfg.Advanced.Stream = stream
	cfg.Assistant.UseTools = useTools
	return &cfg
}

func TestNewDefaults(t *testing.T) {
	a, err := New(nil, WithClient(llmtest.NewScriptedClient()))
	require.NoError(t, err)

	assert.Equal(t, prompts.DefaultLanguage, a.Language())
	assert.True(t, a.Streaming())
	assert.Equal(t, []string{"tool_calculator", "tool_web_scraper"}, a.Tools())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Advanced.MaxTokens = 0
	_, err := New(&cfg)
	assert.ErrorContains(t, err, "advanced.max_tokens")
}

func TestNewRejectsInvalidTools(t *testing.T) {
	bad := tools.NewTool(tools.NewDescriptor("calculator", "no prefix"), nil)
	_, err := New(testConfig(false, true), WithTools(bad))
	assert.ErrorIs(t, err, schema.ErrInvalidToolName)
}

func TestGenerateWithTools(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.ToolCalls(schema.ToolCall{ID: "call_1", Name: "tool_calculator", Arguments: `{"a":6,"b":3,"operator":"/"}`}),
		llmtest.Reply("6/3 is 2."),
	)
	a, err := New(testConfig(false, true), WithClient(client))
	require.NoError(t, err)

	result, err := a.Generate(context.Background(), "what is 6/3?")
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "6/3 is 2.", result.Text)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "2", result.Results[0].Output)

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, prompts.ToolUse, reqs[0].Messages[0].Content)
	assert.Equal(t, prompts.Assistant, reqs[1].Messages[0].Content)
	assert.Len(t, reqs[0].Tools, 2)
}

func TestGenerateWithoutTools(t *testing.T) {
	client := llmtest.NewScriptedClient(llmtest.Reply("Hello."))
	a, err := New(testConfig(false, false), WithClient(client))
	require.NoError(t, err)

	result, err := a.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello.", result.Text)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Tools)
	assert.Equal(t, []schema.Role{schema.RoleSystem, schema.RoleUser, schema.RoleAssistant}, result.Conversation.Roles())
}

func TestGenerateStreams(t *testing.T) {
	client := llmtest.NewScriptedClient(llmtest.ReplyFragments("Bon", "jour"))
	a, err := New(testConfig(true, false), WithClient(client))
	require.NoError(t, err)

	result, err := a.Generate(context.Background(), "say hello in French")
	require.NoError(t, err)
	require.True(t, result.Streamed())

	text, err := result.Stream.Text()
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)

	last, ok := result.Conversation.Last()
	require.True(t, ok)
	assert.Equal(t, "Bonjour", last.Content)
}

func TestGenerateDegrades(t *testing.T) {
	client := llmtest.NewScriptedClient(
		llmtest.Reply("no tools needed"),
		llmtest.Reply("Plain answer."),
	)
	a, err := New(testConfig(false, true), WithClient(client))
	require.NoError(t, err)

	result, err := a.Generate(context.Background(), "rephrase this")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, "Plain answer.", result.Text)
	assert.Equal(t, 2, client.Calls())
}

func TestContinue(t *testing.T) {
	client := llmtest.NewScriptedClient(llmtest.Reply("First."), llmtest.Reply("Second."))
	a, err := New(testConfig(false, false), WithClient(client))
	require.NoError(t, err)

	first, err := a.Generate(context.Background(), "one")
	require.NoError(t, err)
	before := len(*first.Conversation)

	second, err := a.Continue(context.Background(), *first.Conversation, "two")
	require.NoError(t, err)
	assert.Equal(t, "Second.", second.Text)
	assert.Len(t, *first.Conversation, before)
	assert.Equal(t, []schema.Role{
		schema.RoleSystem, schema.RoleUser, schema.RoleAssistant, schema.RoleUser, schema.RoleAssistant,
	}, second.Conversation.Roles())
}

func TestContinueAddsSystemPrompt(t *testing.T) {
	client := llmtest.NewScriptedClient(llmtest.Reply("ok"))
	a, err := New(testConfig(false, false), WithClient(client))
	require.NoError(t, err)

	_, err = a.Continue(context.Background(), schema.Conversation{schema.UserMessage("hi"), schema.AssistantMessage("hello")}, "again")
	require.NoError(t, err)

	msgs := client.Requests()[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.RoleSystem, msgs[0].Role)
	assert.Equal(t, prompts.Assistant, msgs[0].Content)
}

func TestRender(t *testing.T) {
	cfg := testConfig(false, false)
	cfg.Assistant.Language = "English"
	a, err := New(cfg, WithClient(llmtest.NewScriptedClient()))
	require.NoError(t, err)

	task, err := prompts.Task("summarize")
	require.NoError(t, err)
	assert.Equal(t, "Summarize the text below in English:\n\nlong text\n\nSummary:", a.Render(task, "long text"))
}

func TestWithRegistry(t *testing.T) {
	registry, err := tools.NewRegistry(builtin.NewCalculator())
	require.NoError(t, err)
	a, err := New(testConfig(false, true), WithClient(llmtest.NewScriptedClient()), WithRegistry(registry))
	require.NoError(t, err)
	assert.Equal(t, []string{"tool_calculator"}, a.Tools())
}
