// Package settings is the overlay for changing model, temperature and theme.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/config"
	"gemini_chat/pkg/ui/components/picker"
	"gemini_chat/pkg/ui/styles"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// Field keys.
const (
	KeyModel       = "model"
	KeyTemperature = "temperature"
	KeyDarkMode    = "dark_mode"
	KeyStream      = "stream"
	KeyLogLevel    = "log_level"
)

type fieldKind int

const (
	kindPicker fieldKind = iota
	kindFloat
	kindBool
)

type field struct {
	label string
	key   string
	kind  fieldKind
}

var fields = []field{
	{label: "Model", key: KeyModel, kind: kindPicker},
	{label: "Temperature", key: KeyTemperature, kind: kindFloat},
	{label: "Dark mode", key: KeyDarkMode, kind: kindBool},
	{label: "Stream replies", key: KeyStream, kind: kindBool},
	{label: "Log level", key: KeyLogLevel, kind: kindPicker},
}

// SettingsSaveMsg carries the edited values. Settings goes to the session,
// Config to the config file.
type SettingsSaveMsg struct {
	Settings   chat.Settings
	Config     config.Config
	ConfigPath string
}

// SettingsCloseMsg is sent when the panel closes without changes.
type SettingsCloseMsg struct{}

// SettingsPanel edits a copy of the session settings and config.
type SettingsPanel struct {
	styles     styles.Styles
	settings   chat.Settings
	config     config.Config
	configPath string
	models     []string

	selected int
	editing  bool
	input    textinput.Model
	changed  bool
	errorMsg string
	visible  bool
	width    int
}

// NewSettingsPanel creates a hidden panel.
func NewSettingsPanel(st styles.Styles) *SettingsPanel {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 8
	return &SettingsPanel{styles: st, input: in}
}

// SetStyles switches theme.
func (sp *SettingsPanel) SetStyles(st styles.Styles) {
	sp.styles = st
}

// Show opens the panel on a copy of the given values.
func (sp *SettingsPanel) Show(s chat.Settings, cfg config.Config, configPath string, models []string) {
	sp.settings = s
	sp.config = cfg
	sp.configPath = configPath
	sp.models = append([]string(nil), models...)
	sp.selected = 0
	sp.editing = false
	sp.changed = false
	sp.errorMsg = ""
	sp.visible = true
}

// Hide closes the panel.
func (sp *SettingsPanel) Hide() {
	sp.visible = false
	sp.editing = false
	sp.input.Blur()
}

// IsVisible reports whether the panel is open.
func (sp *SettingsPanel) IsVisible() bool {
	return sp.visible
}

// HasChanges reports unsaved edits.
func (sp *SettingsPanel) HasChanges() bool {
	return sp.changed
}

// SetSize sets the available width.
func (sp *SettingsPanel) SetSize(width, _ int) {
	sp.width = width
}

// Settings returns the edited session settings.
func (sp *SettingsPanel) Settings() chat.Settings {
	return sp.settings
}

// ApplyPick stores a value chosen in the option picker.
func (sp *SettingsPanel) ApplyPick(key, value string) {
	switch key {
	case KeyModel:
		sp.settings.Model = value
	case KeyLogLevel:
		sp.config.LogLevel = value
	default:
		return
	}
	sp.changed = true
}

// Update handles keys while the panel is open.
func (sp *SettingsPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if sp.editing {
		return sp.updateEdit(msg)
	}

	switch msg.String() {
	case "up", "k":
		if sp.selected > 0 {
			sp.selected--
		}
	case "down", "j":
		if sp.selected < len(fields)-1 {
			sp.selected++
		}
	case "enter", "space":
		return sp.activate(fields[sp.selected])
	case "s":
		if sp.changed {
			return sp.saveAndClose()
		}
	case "esc", "q":
		if sp.changed {
			return sp.saveAndClose()
		}
		sp.Hide()
		return func() tea.Msg { return SettingsCloseMsg{} }
	}
	return nil
}

func (sp *SettingsPanel) activate(f field) tea.Cmd {
	sp.errorMsg = ""
	switch f.kind {
	case kindPicker:
		open := picker.OpenOptionPickerMsg{FieldKey: f.key, Title: f.label}
		if f.key == KeyModel {
			open.Options = sp.models
			open.Current = sp.settings.Model
		} else {
			open.Options = []string{"trace", "debug", "info", "warn", "error"}
			open.Current = sp.config.LogLevel
		}
		return func() tea.Msg { return open }
	case kindBool:
		switch f.key {
		case KeyDarkMode:
			sp.settings.DarkMode = !sp.settings.DarkMode
		case KeyStream:
			sp.config.Chat.Stream = !sp.config.Chat.Stream
		}
		sp.changed = true
		return nil
	case kindFloat:
		sp.editing = true
		sp.input.SetValue(sp.valueOf(f))
		sp.input.CursorEnd()
		return sp.input.Focus()
	}
	return nil
}

func (sp *SettingsPanel) updateEdit(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(sp.input.Value())
		t, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			err = config.ValidateTemperature(t)
		}
		if err != nil {
			sp.errorMsg = fmt.Sprintf("Invalid temperature %q: must be a number between 0 and 1", raw)
		} else {
			sp.settings.Temperature = t
			sp.changed = true
			sp.errorMsg = ""
		}
		sp.editing = false
		sp.input.Blur()
		return nil
	case "esc":
		sp.editing = false
		sp.errorMsg = ""
		sp.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	sp.input, cmd = sp.input.Update(msg)
	return cmd
}

func (sp *SettingsPanel) saveAndClose() tea.Cmd {
	cfg := sp.config
	cfg.SetActiveModel(sp.settings.Model)
	cfg.SetActiveTemperature(sp.settings.Temperature)
	save := SettingsSaveMsg{Settings: sp.settings, Config: cfg, ConfigPath: sp.configPath}
	sp.Hide()
	return func() tea.Msg { return save }
}

func (sp *SettingsPanel) valueOf(f field) string {
	switch f.key {
	case KeyModel:
		return sp.settings.Model
	case KeyTemperature:
		return strconv.FormatFloat(sp.settings.Temperature, 'f', -1, 64)
	case KeyDarkMode:
		return onOff(sp.settings.DarkMode)
	case KeyStream:
		return onOff(sp.config.Chat.Stream)
	case KeyLogLevel:
		return sp.config.LogLevel
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the panel.
func (sp *SettingsPanel) View() string {
	if !sp.visible {
		return ""
	}

	boxWidth := sp.width - 2
	if boxWidth > 70 {
		boxWidth = 70
	}
	if boxWidth < 36 {
		boxWidth = 36
	}

	var b strings.Builder
	b.WriteString(sp.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	for i, f := range fields {
		label := sp.styles.Label.Render(f.label + ":")
		value := sp.valueOf(f)

		switch {
		case sp.editing && i == sp.selected:
			b.WriteString("▶ " + label + " " + sp.styles.Edit.Render(sp.input.View()))
		case i == sp.selected:
			b.WriteString(sp.styles.Selected.Render(fmt.Sprintf("  %-17s %s ", f.label+":", value)))
		default:
			b.WriteString("  " + label + " " + sp.styles.Value.Render(value))
		}
		b.WriteString("\n")
	}

	if sp.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(sp.styles.Error.Render(sp.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sp.styles.Footer.Render(sp.hint()))
	return sp.styles.Box.Width(boxWidth).Render(b.String())
}

func (sp *SettingsPanel) hint() string {
	if sp.editing {
		return "Enter: Confirm • Esc: Cancel"
	}
	action := "Edit"
	switch fields[sp.selected].kind {
	case kindPicker:
		action = "Pick"
	case kindBool:
		action = "Toggle"
	}
	if sp.changed {
		return "↑↓ Navigate • Enter: " + action + " • s: Save • Esc: Save & Close"
	}
	return "↑↓ Navigate • Enter: " + action + " • Esc: Close"
}
