// Package statusbar renders the one-line footer under the chat.
package statusbar

import (
	"fmt"
	"strconv"
	"strings"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/ui/styles"

	"github.com/charmbracelet/x/ansi"
)

const defaultHint = "Enter send • Ctrl+S settings • Ctrl+L clear • Ctrl+C quit"

// StatusBarView shows the session state, model and a short hint or message.
type StatusBarView struct {
	styles      styles.Styles
	state       chat.State
	model       string
	temperature float64
	message     string
	speaking    bool
	width       int
}

// NewStatusBarView creates a status bar view.
func NewStatusBarView(st styles.Styles) *StatusBarView {
	return &StatusBarView{styles: st, width: 80}
}

// SetStyles switches theme.
func (s *StatusBarView) SetStyles(st styles.Styles) {
	s.styles = st
}

// SetState updates the session state shown on the left.
func (s *StatusBarView) SetState(state chat.State) {
	s.state = state
}

// SetModel updates the active model and temperature.
func (s *StatusBarView) SetModel(model string, temperature float64) {
	s.model = strings.TrimSpace(model)
	s.temperature = temperature
}

// SetMessage sets a temporary message that replaces the key hint.
func (s *StatusBarView) SetMessage(msg string) {
	s.message = msg
}

// SetSpeaking toggles the read-aloud marker.
func (s *StatusBarView) SetSpeaking(speaking bool) {
	s.speaking = speaking
}

// SetWidth updates the width for rendering.
func (s *StatusBarView) SetWidth(width int) {
	s.width = width
}

// Render returns the styled status bar padded to the full width.
func (s *StatusBarView) Render() string {
	modelLabel := s.model
	if modelLabel == "" {
		modelLabel = "unknown"
	}

	parts := []string{
		"[" + stateLabel(s.state) + "]",
		fmt.Sprintf("[llm]: %s @ %s", modelLabel, strconv.FormatFloat(s.temperature, 'f', -1, 64)),
	}
	if s.speaking {
		parts = append(parts, "🔊 speaking (Ctrl+X stop)")
	}
	if s.message != "" {
		parts = append(parts, s.message)
	} else {
		parts = append(parts, defaultHint)
	}
	content := strings.Join(parts, " | ")

	maxWidth := s.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if ansi.StringWidth(content) > maxWidth {
		content = ansi.Truncate(content, maxWidth, "...")
	}

	style := s.styles.Header.Bold(false)
	if s.state == chat.StateIdleWithError {
		style = style.Background(s.styles.Palette.Error)
	}
	styled := style.Render(content)

	if w := ansi.StringWidth(styled); w < s.width {
		styled += style.Padding(0).Render(strings.Repeat(" ", s.width-w))
	}
	return styled
}

func stateLabel(state chat.State) string {
	switch state {
	case chat.StateSending:
		return "sending…"
	case chat.StateIdleWithError:
		return "error"
	default:
		return "ready"
	}
}
