// Package chatview renders the conversation log with scrolling and
// per-message selection.
package chatview

import (
	"strings"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/ui/components/utils"
	"gemini_chat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

const (
	borderSize = 1
	paddingH   = 1
	pageSize   = 10
)

// CopyRequestMsg asks the root model to copy text to the clipboard.
type CopyRequestMsg struct {
	Text string
}

// SpeakRequestMsg asks the root model to read text aloud.
type SpeakRequestMsg struct {
	Text string
}

// ChatView shows the log. When focused, up/down select a message that
// y copies and r reads aloud.
type ChatView struct {
	styles styles.Styles
	width  int
	height int

	messages []chat.Message
	pending  string
	waiting  bool

	lines   []string
	starts  []int
	scrollY int
	follow  bool

	focused  bool
	selected int

	emptyLines []string
}

// New creates an empty chat view.
func New(st styles.Styles) *ChatView {
	return &ChatView{styles: st, follow: true, selected: -1}
}

// SetStyles switches theme.
func (c *ChatView) SetStyles(st styles.Styles) {
	c.styles = st
	c.reflow()
}

// SetSize sets the outer dimensions including the border.
func (c *ChatView) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.reflow()
}

// SetMessages replaces the rendered log.
func (c *ChatView) SetMessages(messages []chat.Message) {
	c.messages = messages
	if c.selected >= len(messages) {
		c.selected = len(messages) - 1
	}
	c.reflow()
}

// SetEmptyLines replaces the placeholder shown while the log is empty.
func (c *ChatView) SetEmptyLines(lines []string) {
	c.emptyLines = lines
	c.reflow()
}

// SetPending shows an in-progress reply below the log. waiting shows a
// placeholder until the first text arrives.
func (c *ChatView) SetPending(text string, waiting bool) {
	c.pending = text
	c.waiting = waiting
	c.reflow()
}

// AppendPending extends the in-progress reply.
func (c *ChatView) AppendPending(delta string) {
	c.pending += delta
	c.reflow()
}

// Focus enables message selection, starting from the newest message.
func (c *ChatView) Focus() {
	c.focused = true
	if c.selected < 0 {
		c.selected = len(c.messages) - 1
	}
	c.ensureSelectedVisible()
}

// Blur leaves selection mode.
func (c *ChatView) Blur() {
	c.focused = false
	c.selected = -1
	c.follow = true
	c.reflow()
}

// Focused reports whether the view is in selection mode.
func (c *ChatView) Focused() bool {
	return c.focused
}

// Selected returns the selected message.
func (c *ChatView) Selected() (chat.Message, bool) {
	if !c.focused || c.selected < 0 || c.selected >= len(c.messages) {
		return chat.Message{}, false
	}
	return c.messages[c.selected], true
}

// Update handles keys while focused.
func (c *ChatView) Update(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if c.focused && c.selected > 0 {
			c.selected--
			c.ensureSelectedVisible()
		}
	case "down", "j":
		if c.focused && c.selected < len(c.messages)-1 {
			c.selected++
			c.ensureSelectedVisible()
		}
	case "pgup":
		c.scrollBy(-pageSize)
	case "pgdown":
		c.scrollBy(pageSize)
	case "home":
		c.scrollY = 0
		c.follow = false
	case "end":
		c.scrollY = c.maxScroll()
		c.follow = true
	case "y":
		if m, ok := c.Selected(); ok {
			text := m.Content
			return func() tea.Msg { return CopyRequestMsg{Text: text} }
		}
	case "r":
		if m, ok := c.Selected(); ok {
			text := m.Content
			return func() tea.Msg { return SpeakRequestMsg{Text: text} }
		}
	}
	return nil
}

func (c *ChatView) scrollBy(delta int) {
	c.scrollY += delta
	if c.scrollY < 0 {
		c.scrollY = 0
	}
	if limit := c.maxScroll(); c.scrollY >= limit {
		c.scrollY = limit
		c.follow = true
		return
	}
	c.follow = false
}

func (c *ChatView) ensureSelectedVisible() {
	c.reflow()
	if c.selected < 0 || c.selected >= len(c.starts) {
		return
	}
	start := c.starts[c.selected]
	end := len(c.lines)
	if c.selected+1 < len(c.starts) {
		end = c.starts[c.selected+1]
	}
	body := c.bodyHeight()
	if start < c.scrollY {
		c.scrollY = start
	} else if end > c.scrollY+body {
		c.scrollY = end - body
		if c.scrollY > start {
			c.scrollY = start
		}
	}
	c.follow = c.scrollY >= c.maxScroll()
}

func (c *ChatView) contentWidth() int {
	if w := c.width - 2*(borderSize+paddingH); w > 1 {
		return w
	}
	return 1
}

func (c *ChatView) bodyHeight() int {
	if h := c.height - 2*borderSize; h > 1 {
		return h
	}
	return 1
}

func (c *ChatView) maxScroll() int {
	if m := len(c.lines) - c.bodyHeight(); m > 0 {
		return m
	}
	return 0
}

func (c *ChatView) reflow() {
	width := c.contentWidth()
	c.lines = c.lines[:0]
	c.starts = c.starts[:0]

	for i, m := range c.messages {
		if i > 0 {
			c.lines = append(c.lines, "")
		}
		c.starts = append(c.starts, len(c.lines))
		c.lines = append(c.lines, c.headerLine(m.Role, m.Timestamp.Local().Format("15:04"), i == c.selected && c.focused, width))
		c.lines = append(c.lines, renderMarkdown(m.Content, width, c.styles)...)
	}

	if c.waiting || c.pending != "" {
		if len(c.lines) > 0 {
			c.lines = append(c.lines, "")
		}
		c.lines = append(c.lines, c.headerLine(chat.RoleAssistant, "", false, width))
		if c.pending == "" {
			c.lines = append(c.lines, c.styles.Muted.Render("yazıyor…"))
		} else {
			c.lines = append(c.lines, renderMarkdown(c.pending, width, c.styles)...)
		}
	}

	if len(c.messages) == 0 && !c.waiting && c.pending == "" {
		if len(c.emptyLines) > 0 {
			c.lines = append(c.lines, c.emptyLines...)
		} else {
			c.lines = append(c.lines, c.styles.Muted.Render("No messages yet. Type below and press Enter."))
		}
	}

	if c.follow {
		c.scrollY = c.maxScroll()
	}
	if c.scrollY > c.maxScroll() {
		c.scrollY = c.maxScroll()
	}
}

func (c *ChatView) headerLine(role chat.Role, stamp string, selected bool, width int) string {
	label := "Gemini"
	style := c.styles.AssistantLabel
	if role == chat.RoleUser {
		label = "You"
		style = c.styles.UserLabel
	}
	if stamp != "" {
		label += "  " + stamp
	}
	if selected {
		return c.styles.Selected.Render(utils.PadPlain("▶ "+label, width))
	}
	return style.Render(label)
}

// View renders the bordered log.
func (c *ChatView) View() string {
	width := c.contentWidth()
	body := c.bodyHeight()

	rows := make([]string, 0, body)
	for i := c.scrollY; i < len(c.lines) && len(rows) < body; i++ {
		rows = append(rows, utils.PadStyled(utils.TruncateToWidth(c.lines[i], width), width))
	}
	for len(rows) < body {
		rows = append(rows, strings.Repeat(" ", width))
	}

	box := c.styles.Panel
	if c.focused {
		box = box.BorderForeground(c.styles.Palette.Accent)
	}
	outer := c.width
	if outer < 1 {
		outer = 1
	}
	return box.Width(outer).Padding(0, paddingH).Render(strings.Join(rows, "\n"))
}
