package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/voocel/copilot/agent"
	"github.com/voocel/copilot/prompts"
	"github.com/voocel/copilot/runner"
	"github.com/voocel/copilot/schema"
)

// buildPrompt applies at most one template to text.
func buildPrompt(a *agent.Assistant, text, task, editor string) (string, error) {
	switch {
	case task != "" && editor != "":
		return "", fmt.Errorf("-task and -editor are mutually exclusive")
	case task != "":
		t, err := prompts.Task(task)
		if err != nil {
			return "", err
		}
		return a.Render(t, text), nil
	case editor != "":
		t, err := prompts.Editor(editor)
		if err != nil {
			return "", err
		}
		return a.Render(t, text), nil
	}
	return text, nil
}

// emit writes the answer, draining a streamed one fragment by fragment.
func emit(w io.Writer, result *runner.Result) error {
	if !result.Streamed() {
		_, err := fmt.Fprintln(w, result.Text)
		return err
	}
	defer result.Stream.Close()
	for fragment, err := range result.Stream.All() {
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, fragment); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// repl answers one line at a time, carrying the conversation across turns.
func repl(ctx context.Context, a *agent.Assistant, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var conv schema.Conversation
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			conv = nil
			fmt.Fprint(out, "> ")
			continue
		}

		result, err := a.Continue(ctx, conv, line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		} else if err := emit(out, result); err != nil {
			fmt.Fprintln(out, "\nerror:", err)
		} else {
			conv = *result.Conversation
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
