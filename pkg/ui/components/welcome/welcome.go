// Package welcome renders the greeting shown while the chat log is empty.
package welcome

import (
	"fmt"
	"strings"

	"gemini_chat/pkg/ui/components/utils"
	"gemini_chat/pkg/ui/styles"
	"gemini_chat/pkg/version"

	"github.com/mattn/go-runewidth"
)

const boxWidth = 47

// Shortcut pairs a key with what it does.
type Shortcut struct {
	Key  string
	Desc string
}

// Shortcuts lists the keys of the chat screen.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{"Enter", "Send message (Alt+Enter newline)"},
		{"Ctrl+O", "Attach an image"},
		{"Ctrl+Y", "Copy last reply"},
		{"Ctrl+R", "Read last reply aloud"},
		{"Ctrl+T", "Toggle dark mode"},
		{"Ctrl+S", "Settings"},
		{"Tab", "Select a message"},
	}
}

// Lines returns the welcome box, one string per row.
func Lines(st styles.Styles) []string {
	border := st.Title.Bold(false)
	makeLine := func(content string, visualWidth int) string {
		pad := boxWidth - visualWidth
		if pad < 0 {
			pad = 0
		}
		return border.Render("│") + content + strings.Repeat(" ", pad) + border.Render("│")
	}
	centered := func(text string, style func(...string) string) string {
		text = utils.TruncateToWidth(text, boxWidth-4)
		w := runewidth.StringWidth(text)
		left := (boxWidth - w) / 2
		return makeLine(strings.Repeat(" ", left)+style(text), left+w)
	}

	lines := []string{
		border.Render("╭" + strings.Repeat("─", boxWidth) + "╮"),
		centered("✨ Gemini Chat ✨", st.Title.Render),
		makeLine("", 0),
	}
	for _, s := range Shortcuts() {
		key := fmt.Sprintf("  %-8s", s.Key)
		lines = append(lines, makeLine(st.Bold.Render(key)+st.Text.Render(s.Desc), runewidth.StringWidth(key)+runewidth.StringWidth(s.Desc)))
	}
	lines = append(lines,
		makeLine("", 0),
		centered(version.Summary(), st.Muted.Render),
		border.Render("╰"+strings.Repeat("─", boxWidth)+"╯"),
	)
	return lines
}
