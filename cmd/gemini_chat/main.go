package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"gemini_chat/pkg/app"
	"gemini_chat/pkg/clipboard"
	"gemini_chat/pkg/config"
	"gemini_chat/pkg/logging"
	"gemini_chat/pkg/speech"
	"gemini_chat/pkg/ui"
	"gemini_chat/pkg/version"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to the config file (.json or .toml)")
	ephemeral := flag.Bool("ephemeral", false, "keep chat history in memory only")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: gemini_chat needs an interactive terminal (try gemini_chat_web instead)")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	slog.Info("app_start", "version", version.Summary(), "config", *configPath)

	a, err := app.New(context.Background(), cfg, app.Options{Ephemeral: *ephemeral})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting chat: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	deps := ui.Deps{
		Session:    a.Session,
		Clipboard:  clipboard.New(),
		Config:     cfg,
		ConfigPath: *configPath,
	}
	speaker, err := speech.New(cfg.Speech.Locale, cfg.Speech.Command)
	switch {
	case err == nil:
		deps.Speaker = speaker
	case errors.Is(err, speech.ErrUnavailable):
		slog.Info("speech_unavailable")
	default:
		slog.Warn("speech_init_failed", "error", err)
	}

	p := tea.NewProgram(ui.NewModel(deps))
	if _, err := p.Run(); err != nil {
		slog.Error("app_exit", "error", err)
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}
	slog.Info("app_exit")
}
