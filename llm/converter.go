package llm

import (
	"fmt"
	"strings"

	"github.com/voocel/litellm"

	"github.com/voocel/copilot/schema"
)

// convertMessagesToLiteLLM converts our message format to litellm format
func convertMessagesToLiteLLM(messages []schema.Message) []litellm.Message {
	result := make([]litellm.Message, len(messages))
	for i, msg := range messages {
		result[i] = litellm.Message{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCalls:  convertToolCallsToLiteLLM(msg.ToolCalls),
			ToolCallID: msg.ToolCallID,
		}
	}
	return result
}

// flattenToolRounds rewrites tool-call rounds as plain text. litellm's OpenAI
// stream request carries only role and content per message, and a bare "tool"
// role without its call id is rejected there.
func flattenToolRounds(messages []litellm.Message) []litellm.Message {
	out := make([]litellm.Message, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == string(schema.RoleTool):
			out = append(out, litellm.Message{
				Role:    string(schema.RoleUser),
				Content: fmt.Sprintf("Tool result (%s): %s", msg.ToolCallID, msg.Content),
			})
		case len(msg.ToolCalls) > 0:
			var b strings.Builder
			b.WriteString(msg.Content)
			for _, call := range msg.ToolCalls {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "Called %s (%s) with %s", call.Function.Name, call.ID, call.Function.Arguments)
			}
			out = append(out, litellm.Message{Role: msg.Role, Content: b.String()})
		default:
			out = append(out, msg)
		}
	}
	return out
}

// convertToolsToLiteLLM converts our tool format to litellm format
func convertToolsToLiteLLM(tools []schema.ToolDefinition) []litellm.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]litellm.Tool, len(tools))
	for i, tool := range tools {
		result[i] = litellm.Tool{
			Type: tool.Type,
			Function: litellm.FunctionDef{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters.Normalized(),
			},
		}
	}
	return result
}

func convertToolCallsToLiteLLM(calls []schema.ToolCall) []litellm.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]litellm.ToolCall, len(calls))
	for i, call := range calls {
		result[i] = litellm.ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: litellm.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return result
}

// convertToolCallsFromLiteLLM converts litellm tool calls to our format
func convertToolCallsFromLiteLLM(calls []litellm.ToolCall) []schema.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]schema.ToolCall, len(calls))
	for i, tc := range calls {
		result[i] = schema.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return result
}

// convertResponseFromLiteLLM converts a litellm response into a buffered response
func convertResponseFromLiteLLM(resp *litellm.Response) *Buffered {
	msg := schema.AssistantMessage(resp.Content)
	msg.ToolCalls = convertToolCallsFromLiteLLM(resp.ToolCalls)

	total := resp.Usage.TotalTokens
	if total == 0 {
		total = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	}
	return &Buffered{
		Message:      msg,
		FinishReason: resp.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      total,
		},
	}
}
