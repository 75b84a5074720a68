// Package input defines the key bindings of the chat screen.
package input

import (
	"charm.land/bubbles/v2/key"
)

// KeyMap holds the global bindings. Keys handled inside a component
// (composer enter, chat panel y/r) live with that component.
type KeyMap struct {
	Quit        key.Binding
	Clear       key.Binding
	ToggleTheme key.Binding
	Settings    key.Binding
	Attach      key.Binding
	Copy        key.Binding
	Speak       key.Binding
	StopSpeech  key.Binding
	FocusChat   key.Binding
	Dismiss     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear history"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "dark mode"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "settings"),
		),
		Attach: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "attach image"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy reply"),
		),
		Speak: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "read aloud"),
		),
		StopSpeech: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "stop reading"),
		),
		FocusChat: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select message"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// ShortHelp is the compact help row.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Settings, k.Clear, k.Copy, k.Speak, k.Quit}
}

// FullHelp groups every binding.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Settings, k.ToggleTheme, k.Clear},
		{k.Attach, k.Copy, k.Speak, k.StopSpeech},
		{k.FocusChat, k.Dismiss, k.Quit},
	}
}
