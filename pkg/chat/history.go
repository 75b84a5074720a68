package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gemini_chat/pkg/store"
)

// Persisted keys.
const (
	HistoryKey  = "chatHistory"
	DarkModeKey = "darkMode"
)

// ErrCorruptHistory wraps decode failures of persisted state.
var ErrCorruptHistory = errors.New("persisted chat state is corrupt")

// History mirrors the log and the dark-mode flag to a key-value store.
type History struct {
	kv store.KV
}

// NewHistory returns a History backed by kv.
func NewHistory(kv store.KV) *History {
	return &History{kv: kv}
}

// LoadMessages returns the persisted log, or nil when none was saved.
func (h *History) LoadMessages(ctx context.Context) ([]Message, error) {
	data, err := h.kv.Get(ctx, HistoryKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", HistoryKey, err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptHistory, HistoryKey, err)
	}
	return messages, nil
}

// SaveMessages replaces the persisted log.
func (h *History) SaveMessages(ctx context.Context, messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode %s: %w", HistoryKey, err)
	}
	if err := h.kv.Set(ctx, HistoryKey, data); err != nil {
		return fmt.Errorf("save %s: %w", HistoryKey, err)
	}
	return nil
}

// ClearMessages removes the persisted log entirely.
func (h *History) ClearMessages(ctx context.Context) error {
	if err := h.kv.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("clear %s: %w", HistoryKey, err)
	}
	return nil
}

// LoadDarkMode returns the persisted flag. found is false when none was saved.
func (h *History) LoadDarkMode(ctx context.Context) (dark bool, found bool, err error) {
	data, err := h.kv.Get(ctx, DarkModeKey)
	if errors.Is(err, store.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("load %s: %w", DarkModeKey, err)
	}
	if err := json.Unmarshal(data, &dark); err != nil {
		return false, false, fmt.Errorf("%w: %s: %v", ErrCorruptHistory, DarkModeKey, err)
	}
	return dark, true, nil
}

// SaveDarkMode persists the flag.
func (h *History) SaveDarkMode(ctx context.Context, dark bool) error {
	data, _ := json.Marshal(dark)
	if err := h.kv.Set(ctx, DarkModeKey, data); err != nil {
		return fmt.Errorf("save %s: %w", DarkModeKey, err)
	}
	return nil
}
