// Package picker provides a list overlay for choosing one setting value.
package picker

import (
	"fmt"
	"strings"

	"gemini_chat/pkg/ui/components/utils"
	"gemini_chat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// OpenOptionPickerMsg asks the root model to show the picker.
type OpenOptionPickerMsg struct {
	FieldKey string
	Title    string
	Options  []string
	Current  string
}

// OptionPickerSelectMsg reports the chosen value.
type OptionPickerSelectMsg struct {
	FieldKey string
	Value    string
}

// OptionPickerPanel lists options; Enter or a digit selects, Esc cancels.
type OptionPickerPanel struct {
	styles   styles.Styles
	title    string
	fieldKey string
	options  []string
	current  string
	selected int
	visible  bool
	width    int
}

// NewOptionPickerPanel creates a hidden picker.
func NewOptionPickerPanel(st styles.Styles) *OptionPickerPanel {
	return &OptionPickerPanel{styles: st}
}

// SetStyles switches theme.
func (p *OptionPickerPanel) SetStyles(st styles.Styles) {
	p.styles = st
}

// Show opens the picker with current preselected.
func (p *OptionPickerPanel) Show(msg OpenOptionPickerMsg) {
	p.visible = true
	p.title = msg.Title
	p.fieldKey = msg.FieldKey
	p.options = append([]string(nil), msg.Options...)
	p.current = msg.Current
	p.selected = 0
	for i, option := range p.options {
		if option == msg.Current {
			p.selected = i
			break
		}
	}
}

// Hide closes the picker.
func (p *OptionPickerPanel) Hide() {
	p.visible = false
}

// IsVisible reports whether the picker is open.
func (p *OptionPickerPanel) IsVisible() bool {
	return p.visible
}

// SetSize updates the available width.
func (p *OptionPickerPanel) SetSize(width, _ int) {
	p.width = width
}

// Update handles keys while the picker is open.
func (p *OptionPickerPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !p.visible {
		return nil
	}

	key := msg.String()
	switch key {
	case "up", "k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "j":
		if p.selected < len(p.options)-1 {
			p.selected++
		}
	case "home":
		p.selected = 0
	case "end":
		if len(p.options) > 0 {
			p.selected = len(p.options) - 1
		}
	case "enter":
		return p.choose(p.selected)
	case "esc", "q":
		p.Hide()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return p.choose(int(key[0] - '1'))
		}
	}
	return nil
}

func (p *OptionPickerPanel) choose(index int) tea.Cmd {
	if index < 0 || index >= len(p.options) {
		return nil
	}
	sel := OptionPickerSelectMsg{FieldKey: p.fieldKey, Value: p.options[index]}
	p.Hide()
	return func() tea.Msg { return sel }
}

// View renders the picker box.
func (p *OptionPickerPanel) View() string {
	if !p.visible {
		return ""
	}

	boxWidth := p.width - 2
	if boxWidth > 60 {
		boxWidth = 60
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	contentWidth := boxWidth - 6

	var b strings.Builder
	b.WriteString(p.styles.Title.Render(p.title))
	b.WriteString("\n\n")

	if len(p.options) == 0 {
		b.WriteString(p.styles.Muted.Render("No options available"))
		b.WriteString("\n")
	}
	for i, option := range p.options {
		marker := "  "
		if option == p.current {
			marker = "● "
		}
		line := fmt.Sprintf("%d %s%s", i+1, marker, option)
		line = utils.TruncateToWidth(line, contentWidth)
		if i == p.selected {
			b.WriteString(p.styles.Selected.Render(utils.PadPlain(line, contentWidth)))
		} else {
			b.WriteString(p.styles.Text.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.styles.Footer.Render("↑↓ Navigate • Enter/1-9 Select • Esc Cancel"))
	return p.styles.Box.Width(boxWidth).Render(b.String())
}
