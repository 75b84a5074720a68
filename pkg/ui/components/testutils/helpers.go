// Package testutils builds Bubble Tea v2 key events for component tests.
package testutils

import (
	tea "charm.land/bubbletea/v2"
)

// NewKeyPressMsg creates a KeyPressMsg for a special key.
func NewKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// NewTextKeyPressMsg creates a KeyPressMsg that types text.
func NewTextKeyPressMsg(text string) tea.KeyPressMsg {
	if text == "" {
		return tea.KeyPressMsg(tea.Key{})
	}
	return tea.KeyPressMsg(tea.Key{
		Code: []rune(text)[0],
		Text: text,
	})
}

// NewCtrlKeyPressMsg creates ctrl+<char>.
func NewCtrlKeyPressMsg(char rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: char, Mod: tea.ModCtrl})
}

// NewAltKeyPressMsg creates alt+<key>.
func NewAltKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code, Mod: tea.ModAlt})
}

// TypeText returns one key press per rune of text.
func TypeText(text string) []tea.KeyPressMsg {
	msgs := make([]tea.KeyPressMsg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, NewTextKeyPressMsg(string(r)))
	}
	return msgs
}

var (
	TestKeyUp        = NewKeyPressMsg(tea.KeyUp)
	TestKeyDown      = NewKeyPressMsg(tea.KeyDown)
	TestKeyEnter     = NewKeyPressMsg(tea.KeyEnter)
	TestKeyTab       = NewKeyPressMsg(tea.KeyTab)
	TestKeyEsc       = NewKeyPressMsg(tea.KeyEscape)
	TestKeyBackspace = NewKeyPressMsg(tea.KeyBackspace)
	TestKeyPgUp      = NewKeyPressMsg(tea.KeyPgUp)
	TestKeyPgDown    = NewKeyPressMsg(tea.KeyPgDown)
	TestKeyHome      = NewKeyPressMsg(tea.KeyHome)
	TestKeyEnd       = NewKeyPressMsg(tea.KeyEnd)
)

var (
	TestKeyCtrlC = NewCtrlKeyPressMsg('c')
	TestKeyCtrlL = NewCtrlKeyPressMsg('l')
	TestKeyCtrlO = NewCtrlKeyPressMsg('o')
	TestKeyCtrlR = NewCtrlKeyPressMsg('r')
	TestKeyCtrlS = NewCtrlKeyPressMsg('s')
	TestKeyCtrlT = NewCtrlKeyPressMsg('t')
	TestKeyCtrlX = NewCtrlKeyPressMsg('x')
	TestKeyCtrlY = NewCtrlKeyPressMsg('y')
)
