// Package speech reads messages aloud through an external synthesizer.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// ErrUnavailable is returned when no synthesizer command can be found.
var ErrUnavailable = errors.New("no speech synthesizer found")

var candidates = []string{"espeak-ng", "espeak", "spd-say", "say"}

// runFunc runs a synthesizer to completion.
type runFunc func(ctx context.Context, name string, args ...string) error

func execRun(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Speaker starts utterances and cancels them. Starting a new utterance
// does not stop the previous one; only the newest is tracked as speaking.
type Speaker struct {
	locale  string
	command string
	run     runFunc

	mu       sync.Mutex
	nextID   uint64
	speaking uint64
	cancels  map[uint64]context.CancelFunc
}

// New resolves the synthesizer command. An empty command autodetects one
// from PATH.
func New(locale, command string) (*Speaker, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		for _, c := range candidates {
			if _, err := exec.LookPath(c); err == nil {
				command = c
				break
			}
		}
	}
	if command == "" {
		return nil, ErrUnavailable
	}
	return newSpeaker(locale, command, execRun), nil
}

func newSpeaker(locale, command string, run runFunc) *Speaker {
	if strings.TrimSpace(locale) == "" {
		locale = "tr-TR"
	}
	return &Speaker{
		locale:  locale,
		command: command,
		run:     run,
		cancels: make(map[uint64]context.CancelFunc),
	}
}

// Command returns the synthesizer in use.
func (s *Speaker) Command() string {
	return s.command
}

// Speak starts reading text aloud and returns immediately.
func (s *Speaker) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("nothing to speak")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.cancels[id] = cancel
	s.speaking = id
	s.mu.Unlock()

	args := buildArgs(s.command, s.locale, text)
	slog.Debug("speech_start", "command", s.command, "locale", s.locale, "chars", len(text))

	go func() {
		err := s.run(ctx, s.command, args...)
		if err != nil && ctx.Err() == nil {
			slog.Warn("speech_failed", "command", s.command, "error", err)
		}
		s.mu.Lock()
		delete(s.cancels, id)
		if s.speaking == id {
			s.speaking = 0
		}
		s.mu.Unlock()
		cancel()
	}()
	return nil
}

// Stop cancels every running utterance.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.speaking = 0
	slog.Debug("speech_stop")
}

// IsSpeaking reports whether the most recent utterance is still running.
func (s *Speaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking != 0
}

func buildArgs(command, locale, text string) []string {
	lang := strings.ToLower(strings.SplitN(strings.ReplaceAll(locale, "_", "-"), "-", 2)[0])
	switch base := baseName(command); base {
	case "espeak-ng", "espeak":
		return []string{"-v", lang, text}
	case "spd-say":
		return []string{"-w", "-l", lang, text}
	default:
		return []string{text}
	}
}

func baseName(command string) string {
	if i := strings.LastIndexAny(command, `/\`); i >= 0 {
		return command[i+1:]
	}
	return command
}
