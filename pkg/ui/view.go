package ui

import (
	"errors"
	"strings"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/ui/components/utils"
	"gemini_chat/pkg/ui/render"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const appTitle = "Gemini Chat"

// View renders the UI.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.WindowTitle = appTitle
	return v
}

func (m Model) render() string {
	if !m.ready {
		return "Initializing..."
	}
	m.layout()

	sections := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.chatView.View(), m.composer.View(), m.statusBar.Render())
	screen := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch {
	case m.picker.IsVisible():
		screen = render.Overlay(screen, m.picker.View(), m.width, m.height)
	case m.settings.IsVisible():
		screen = render.Overlay(screen, m.settings.View(), m.width, m.height)
	}
	return screen
}

// layout sizes the components for the current screen and banner.
func (m Model) layout() {
	if !m.ready {
		return
	}
	bannerRows := 0
	if m.bannerText() != "" {
		bannerRows = 1
	}
	m.composer.SetWidth(m.width)
	m.chatView.SetSize(m.width, render.ChatHeight(m.height, 1, bannerRows, m.composer.Height(), 1))
	m.statusBar.SetWidth(m.width)
	m.settings.SetSize(m.width, m.height)
	m.picker.SetSize(m.width, m.height)
}

func (m Model) renderHeader() string {
	s := m.session.Settings()
	theme := "☀ light"
	if s.DarkMode {
		theme = "☾ dark"
	}
	parts := []string{appTitle, s.Model, theme}
	if name, ok := m.session.Attachment(); ok {
		parts = append(parts, "📎 "+name)
	}
	text := utils.TruncateToWidth(strings.Join(parts, "  •  "), max(m.width-2, 1))
	return m.styles.Header.Width(m.width).Render(text)
}

func (m Model) renderBanner() string {
	text := m.bannerText()
	if text == "" {
		return ""
	}
	line := utils.TruncateToWidth("⚠ "+text+"  (Esc to dismiss)", max(m.width, 1))
	return m.styles.Error.Bold(true).Render(line)
}

func (m Model) bannerText() string {
	err := m.session.LastError()
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrMissingCredential):
		return "API key is not configured. Set GEMINI_API_KEY or providers.google.api_key in the config file."
	case errors.Is(err, chat.ErrCorruptHistory):
		return "Saved chat history could not be read and was ignored."
	default:
		return "Request failed: " + err.Error()
	}
}
