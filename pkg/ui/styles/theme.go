// Package styles provides the dark and light themes of the chat UI.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette holds the ANSI 256 colors of one theme.
type Palette struct {
	Accent      color.Color
	Text        color.Color
	TextMuted   color.Color
	TextBright  color.Color
	Error       color.Color
	Warning     color.Color
	Success     color.Color
	Code        color.Color
	CodeBg      color.Color
	Placeholder color.Color
	Border      color.Color
	HeaderFg    color.Color
	HeaderBg    color.Color
	User        color.Color
	Assistant   color.Color
}

// DarkPalette matches the gray-900 page of the browser client.
func DarkPalette() Palette {
	return Palette{
		Accent:      lipgloss.Color("141"),
		Text:        lipgloss.Color("252"),
		TextMuted:   lipgloss.Color("245"),
		TextBright:  lipgloss.Color("15"),
		Error:       lipgloss.Color("196"),
		Warning:     lipgloss.Color("214"),
		Success:     lipgloss.Color("42"),
		Code:        lipgloss.Color("213"),
		CodeBg:      lipgloss.Color("235"),
		Placeholder: lipgloss.Color("240"),
		Border:      lipgloss.Color("62"),
		HeaderFg:    lipgloss.Color("#FAFAFA"),
		HeaderBg:    lipgloss.Color("#1E3A8A"),
		User:        lipgloss.Color("75"),
		Assistant:   lipgloss.Color("252"),
	}
}

// LightPalette matches the gray-100 page of the browser client.
func LightPalette() Palette {
	return Palette{
		Accent:      lipgloss.Color("27"),
		Text:        lipgloss.Color("235"),
		TextMuted:   lipgloss.Color("243"),
		TextBright:  lipgloss.Color("15"),
		Error:       lipgloss.Color("160"),
		Warning:     lipgloss.Color("130"),
		Success:     lipgloss.Color("28"),
		Code:        lipgloss.Color("90"),
		CodeBg:      lipgloss.Color("254"),
		Placeholder: lipgloss.Color("247"),
		Border:      lipgloss.Color("33"),
		HeaderFg:    lipgloss.Color("#FFFFFF"),
		HeaderBg:    lipgloss.Color("#2563EB"),
		User:        lipgloss.Color("26"),
		Assistant:   lipgloss.Color("236"),
	}
}

// Styles is the full style set derived from a palette.
type Styles struct {
	Dark    bool
	Palette Palette

	Box      lipgloss.Style
	Panel    lipgloss.Style
	Header   lipgloss.Style
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Edit     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Footer   lipgloss.Style
	Code     lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
}

// New builds the style set for the dark or light theme.
func New(dark bool) Styles {
	p := LightPalette()
	if dark {
		p = DarkPalette()
	}

	return Styles{
		Dark:    dark,
		Palette: p,

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		Header: lipgloss.NewStyle().
			Foreground(p.HeaderFg).
			Background(p.HeaderBg).
			Padding(0, 1).
			Bold(true),
		Title:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Text:     lipgloss.NewStyle().Foreground(p.Text),
		Muted:    lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true),
		Bold:     lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(p.TextBright).Background(p.Accent).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(p.TextMuted).Width(16),
		Value:    lipgloss.NewStyle().Foreground(p.Text),
		Edit:     lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(p.Error),
		Success:  lipgloss.NewStyle().Foreground(p.Success),
		Footer:   lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true),
		Code:     lipgloss.NewStyle().Foreground(p.Code).Background(p.CodeBg),

		UserLabel:      lipgloss.NewStyle().Foreground(p.User).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
	}
}
