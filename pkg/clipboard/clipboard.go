// Package clipboard copies text to the system clipboard through the terminal.
package clipboard

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Writer emits OSC52 sequences, which most terminals (and tmux/screen with
// passthrough) turn into a clipboard write.
type Writer struct {
	out io.Writer
	env func(string) string
}

// New returns a Writer targeting stdout.
func New() *Writer {
	return &Writer{out: os.Stdout, env: os.Getenv}
}

// NewWriter returns a Writer targeting out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, env: os.Getenv}
}

// Copy writes text to the clipboard.
func (w *Writer) Copy(text string) error {
	seq := osc52.New(text)
	switch {
	case w.env("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(w.env("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := fmt.Fprint(w.out, seq); err != nil {
		return fmt.Errorf("write clipboard sequence: %w", err)
	}
	slog.Debug("clipboard_copy", "chars", len(text))
	return nil
}
