// Package prompts holds the system prompts and the task and editor templates
// offered by the assistant.
package prompts

import (
	"fmt"
	"strings"
)

// DefaultLanguage is the output language used when none is configured.
const DefaultLanguage = "Chinese"

// ToolUse is the system prompt used while the model decides on tool calls.
const ToolUse = "You are an intelligent assistant that chooses whether or not to use a tool based on user commands."

// AnswerWithTools asks the model to answer from tool output only.
const AnswerWithTools = `You are an intelligent assistant that chooses whether or not to use a tool based on user commands.
If you use tools, just answer the question based on the output of the tool without any additional explanation.
On the other hand, if you don't use tools, answer the question directly as best as you can.`

// Assistant is the default system prompt of the writing assistant.
const Assistant = "You are responsible for rephrasing, summarizing, or editing various text snippets to make them more " +
	"concise, coherent, and engaging. You are also responsible for writing emails, messages, and other forms " +
	"of communication."

// Template is a named prompt with {language} and {text} placeholders.
type Template struct {
	Name   string
	Prompt string
}

// Render fills the template.
func (t Template) Render(text, language string) string {
	return Render(t.Prompt, text, language)
}

var tasks = []Template{
	{Name: "Summarize", Prompt: "Summarize the text below in {language}:\n\n{text}\n\nSummary:"},
	{Name: "Compose Mail", Prompt: "Compose an email about the text below in {language}:\n\n{text}\n\nEmail:"},
	{Name: "Fix Grammar", Prompt: "Fix the grammar in the text below:\n\n{text}\n\nCorrected Text:"},
	{Name: "Extract Keywords", Prompt: "List the keywords in the text below in {language}:\n\n{text}\n\nKeywords:"},
	{Name: "Explain", Prompt: "Explain the text below in {language}:\n\n{text}\n\nExplanation:"},
	{Name: "Translate", Prompt: "Translate the following source text to **{language}**, Output translation directly without any additional text.\n" +
		"Source Text: {text}\nTranslated Text:"},
}

var editors = []Template{
	{Name: "Casual", Prompt: rewrite("casual")},
	{Name: "Formal", Prompt: rewrite("formal")},
	{Name: "Professional", Prompt: rewrite("professional")},
	{Name: "Technical", Prompt: rewrite("technical")},
	{Name: "Simple", Prompt: rewrite("simple")},
}

func rewrite(tone string) string {
	return "Rewrite the text below in a " + tone + " tone in {language}:\n\n{text}\n\nRewritten Text:"
}

// Tasks returns the task templates in display order.
func Tasks() []Template {
	return append([]Template(nil), tasks...)
}

// Editors returns the tone editor templates in display order.
func Editors() []Template {
	return append([]Template(nil), editors...)
}

// Task finds a task template by name, ignoring case.
func Task(name string) (Template, error) {
	return find(tasks, "task", name)
}

// Editor finds an editor template by name, ignoring case.
func Editor(name string) (Template, error) {
	return find(editors, "editor", name)
}

func find(list []Template, kind, name string) (Template, error) {
	for _, t := range list {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown %s %q", kind, name)
}

// Render substitutes {text} and {language}. An empty language falls back to DefaultLanguage.
func Render(template, text, language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return strings.NewReplacer("{language}", language, "{text}", text).Replace(template)
}
