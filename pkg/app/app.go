// Package app wires configuration, storage and the AI provider into a
// chat.Session shared by the terminal and web front ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gemini_chat/pkg/ai"
	_ "gemini_chat/pkg/ai/providers"
	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/config"
	"gemini_chat/pkg/store"
)

// App owns the session and its backing store.
type App struct {
	Config  config.Config
	Session *chat.Session
	Store   store.KV

	// RestoreErr is set when the persisted state could not be read. The
	// session then starts empty.
	RestoreErr error
}

// Options tweaks how New builds the app.
type Options struct {
	// Ephemeral keeps chat state in memory only.
	Ephemeral bool
}

// New opens the store, builds the completer and restores the persisted log.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	storage := cfg.Storage
	if opts.Ephemeral {
		storage.Backend = store.BackendMemory
	}
	kv, err := store.Open(storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", storage.Backend, err)
	}

	completer, err := newCompleter(cfg)
	if err != nil {
		kv.Close()
		return nil, err
	}

	session := chat.NewSession(completer, chat.NewHistory(kv), chat.Options{
		Models:      cfg.SelectableModels(),
		Model:       cfg.ActiveModel(),
		Temperature: cfg.ActiveTemperature(),
	})

	a := &App{Config: cfg, Session: session, Store: kv}
	a.RestoreErr = session.Restore(ctx)
	slog.Info("app_ready",
		"provider", cfg.LLMProvider,
		"model", session.Settings().Model,
		"storage", storage.Backend,
		"credential", session.HasCredential(),
		"messages", len(session.Messages()),
	)
	return a, nil
}

// newCompleter returns nil when no API key is configured, which the
// session reports as a missing credential on send.
func newCompleter(cfg config.Config) (chat.Completer, error) {
	provider, err := ai.GetProviderFromConfig(cfg)
	if errors.Is(err, ai.ErrMissingAPIKey) {
		slog.Warn("api_key_missing", "provider", cfg.LLMProvider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.LLMProvider, err)
	}
	return chat.ProviderCompleter{Provider: provider}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
