package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gemini_chat/pkg/app"
	"gemini_chat/pkg/config"
	"gemini_chat/pkg/logging"
	"gemini_chat/pkg/version"
	"gemini_chat/pkg/web"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to the config file (.json or .toml)")
	addr := flag.String("addr", "", "listen address (overrides web.addr)")
	ephemeral := flag.Bool("ephemeral", false, "keep chat history in memory only")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gemini_chat_web version %s (%s)\n", version.Summary(), version.Platform())
		return
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
	if strings.TrimSpace(*addr) != "" {
		cfg.Web.Addr = *addr
	}

	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	slog.Info("app_start", "version", version.Summary(), "config", *configPath, "addr", cfg.Web.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Ephemeral: *ephemeral})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting chat: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	fmt.Printf("Serving Gemini Chat on http://%s\n", cfg.Web.Addr)
	if err := web.NewServer(a.Session).ListenAndServe(ctx, cfg.Web.Addr); err != nil {
		slog.Error("web_server_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}
