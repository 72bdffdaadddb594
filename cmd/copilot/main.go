package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voocel/copilot/agent"
	"github.com/voocel/copilot/config"
	"github.com/voocel/copilot/observer"
)

func main() {
	configPath := flag.String("config", "", "settings file (json or yaml); defaults to settings/settings.json")
	task := flag.String("task", "", "task template: summarize, compose mail, fix grammar, extract keywords, explain, translate")
	editor := flag.String("editor", "", "editor template: casual, formal, professional, technical, simple")
	language := flag.String("lang", "", "output language for templates")
	stream := flag.Bool("stream", true, "stream the answer")
	noTools := flag.Bool("no-tools", false, "answer without tools")
	interactive := flag.Bool("i", false, "interactive session")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("load config failed, using defaults")
		def := config.Default()
		cfg = &def
	}
	logger = logger.Level(cfg.LogLevel())

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "stream":
			cfg.Advanced.Stream = *stream
		case "no-tools":
			cfg.Assistant.UseTools = !*noTools
		case "lang":
			cfg.Assistant.Language = *language
		}
	})

	stats := observer.NewStatsObserver()
	assistant, err := agent.New(cfg,
		agent.WithLogger(logger),
		agent.WithObserver(observer.Multi(observer.NewLoggerObserver(logger), stats)),
		agent.WithTracer(observer.NewZerologTracer(logger)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assistant error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, assistant, *interactive, *task, *editor)
	stop()
	logStats(logger, stats)
	os.Exit(code)
}

// run executes one session and returns the process exit code.
func run(ctx context.Context, assistant *agent.Assistant, interactive bool, task, editor string) int {
	if interactive {
		if err := repl(ctx, assistant, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "session error:", err)
			return 1
		}
		return 0
	}

	text, err := readInput(flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "input error:", err)
		return 1
	}
	prompt, err := buildPrompt(assistant, text, task, editor)
	if err != nil {
		fmt.Fprintln(os.Stderr, "prompt error:", err)
		return 1
	}

	result, err := assistant.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate error:", err)
		return 1
	}
	if err := emit(os.Stdout, result); err != nil {
		fmt.Fprintln(os.Stderr, "\nstream error:", err)
		return 1
	}
	return 0
}

func logStats(logger zerolog.Logger, stats *observer.StatsObserver) {
	logger.Debug().Object("stats", stats.Snapshot()).Msg("session stats")
}

// readInput joins the arguments, or reads stdin when there are none.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no prompt given")
	}
	return text, nil
}
