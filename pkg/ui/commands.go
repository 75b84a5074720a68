package ui

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/config"

	tea "charm.land/bubbletea/v2"
)

type replyMsg struct {
	reply chat.Message
	err   error
}

type streamStartedMsg struct {
	events <-chan chat.StreamEvent
}

type streamEventMsg struct {
	events <-chan chat.StreamEvent
	event  chat.StreamEvent
}

type attachmentLoadedMsg struct {
	name string
	data []byte
	err  error
}

type clipboardMsg struct {
	err error
}

type configSavedMsg struct {
	err error
}

type speechTickMsg struct{}

type statusClearMsg struct {
	seq int
}

func resolveTurn(ctx context.Context, s *chat.Session, turn chat.Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.Resolve(ctx, turn)
		return replyMsg{reply: reply, err: err}
	}
}

func startStream(ctx context.Context, s *chat.Session, turn chat.Turn) tea.Cmd {
	return func() tea.Msg {
		events, err := s.Stream(ctx, turn)
		if err != nil {
			return replyMsg{err: err}
		}
		return streamStartedMsg{events: events}
	}
}

// waitForStream delivers the next stream event. A closed channel counts
// as the end of the stream.
func waitForStream(events <-chan chat.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamEventMsg{event: chat.StreamEvent{Done: true}}
		}
		return streamEventMsg{events: events, event: ev}
	}
}

// loadAttachment reads an image file. Anything that does not sniff as an
// image is refused.
func loadAttachment(read func(string) ([]byte, error), path string) tea.Cmd {
	return func() tea.Msg {
		data, err := read(path)
		if err != nil {
			return attachmentLoadedMsg{err: fmt.Errorf("failed to read attachment: %w", err)}
		}
		if kind := http.DetectContentType(data); !strings.HasPrefix(kind, "image/") {
			return attachmentLoadedMsg{err: fmt.Errorf("%s is not an image (%s)", filepath.Base(path), kind)}
		}
		return attachmentLoadedMsg{name: filepath.Base(path), data: data}
	}
}

func copyToClipboard(c Clipboard, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: c.Copy(text)}
	}
}

func saveConfig(save func(string, config.Config) error, path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		return configSavedMsg{err: save(path, cfg)}
	}
}

func tickSpeech() tea.Cmd {
	return tea.Tick(speechPollGap, func(time.Time) tea.Msg {
		return speechTickMsg{}
	})
}

func clearStatusAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}
