// Package composer is the message input at the bottom of the screen. It
// doubles as a path prompt when attaching an image.
package composer

import (
	"strings"

	"gemini_chat/pkg/ui/styles"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

const (
	messagePlaceholder = "Mesajınızı yazın..."
	attachPlaceholder  = "Path to an image file, Enter to attach, Esc to cancel"
	inputHeight        = 3
)

// Mode selects what Enter submits.
type Mode int

const (
	ModeMessage Mode = iota
	ModeAttachPath
)

// SubmitMsg carries the text submitted in message mode.
type SubmitMsg struct {
	Content string
}

// AttachPathMsg carries the path submitted in attach mode.
type AttachPathMsg struct {
	Path string
}

// Composer wraps a textarea with submit handling.
type Composer struct {
	styles   styles.Styles
	textarea textarea.Model
	mode     Mode
	saved    string
	width    int
	locked   bool
}

// New creates a focused composer.
func New(st styles.Styles) *Composer {
	ta := textarea.New()
	ta.Placeholder = messagePlaceholder
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.Focus()
	return &Composer{styles: st, textarea: ta}
}

// SetStyles switches theme.
func (c *Composer) SetStyles(st styles.Styles) {
	c.styles = st
}

// SetWidth sets the outer width including the border.
func (c *Composer) SetWidth(width int) {
	c.width = width
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	c.textarea.SetWidth(inner)
}

// Height is the rendered height including the border.
func (c *Composer) Height() int {
	return inputHeight + 2
}

// Mode returns the current mode.
func (c *Composer) Mode() Mode {
	return c.mode
}

// StartAttach switches to the path prompt, keeping the draft for later.
func (c *Composer) StartAttach() {
	if c.mode == ModeAttachPath {
		return
	}
	c.saved = c.textarea.Value()
	c.textarea.Reset()
	c.textarea.Placeholder = attachPlaceholder
	c.mode = ModeAttachPath
}

// CancelAttach restores the draft typed before the path prompt.
func (c *Composer) CancelAttach() {
	if c.mode != ModeAttachPath {
		return
	}
	c.textarea.SetValue(c.saved)
	c.saved = ""
	c.textarea.Placeholder = messagePlaceholder
	c.mode = ModeMessage
}

// SetLocked disables submitting while a request is in flight. Typing
// still works.
func (c *Composer) SetLocked(locked bool) {
	c.locked = locked
}

// Value returns the current text.
func (c *Composer) Value() string {
	return c.textarea.Value()
}

// Reset clears the text.
func (c *Composer) Reset() {
	c.textarea.Reset()
}

// Focus gives keyboard focus to the textarea.
func (c *Composer) Focus() tea.Cmd {
	return c.textarea.Focus()
}

// Blur removes keyboard focus.
func (c *Composer) Blur() {
	c.textarea.Blur()
}

// Focused reports whether the textarea has focus.
func (c *Composer) Focused() bool {
	return c.textarea.Focused()
}

// InsertString inserts pasted text at the cursor.
func (c *Composer) InsertString(s string) {
	c.textarea.InsertString(s)
}

// Update handles input. Enter submits, alt+enter inserts a newline.
func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter":
			return c.submit()
		case "alt+enter":
			c.textarea.InsertString("\n")
			return nil
		case "esc":
			if c.mode == ModeAttachPath {
				c.CancelAttach()
				return nil
			}
		}
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

func (c *Composer) submit() tea.Cmd {
	if c.mode == ModeAttachPath {
		path := strings.TrimSpace(c.textarea.Value())
		if path == "" {
			return nil
		}
		c.textarea.SetValue(c.saved)
		c.saved = ""
		c.textarea.Placeholder = messagePlaceholder
		c.mode = ModeMessage
		return func() tea.Msg { return AttachPathMsg{Path: path} }
	}

	if c.locked {
		return nil
	}
	// The session decides whether the draft is empty; an attachment alone
	// is a valid send.
	content := c.textarea.Value()
	return func() tea.Msg { return SubmitMsg{Content: content} }
}

// View renders the bordered input.
func (c *Composer) View() string {
	box := c.styles.Panel
	if c.textarea.Focused() {
		box = box.BorderForeground(c.styles.Palette.Accent)
	}
	if c.mode == ModeAttachPath {
		box = box.BorderForeground(c.styles.Palette.Warning)
	}
	width := c.width
	if width < 1 {
		width = 1
	}
	return box.Width(width).Padding(0, 1).Render(c.textarea.View())
}
