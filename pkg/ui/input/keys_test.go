package input

import (
	"testing"

	"gemini_chat/pkg/ui/components/testutils"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		msg     tea.KeyPressMsg
	}{
		{"quit", km.Quit, testutils.TestKeyCtrlC},
		{"clear", km.Clear, testutils.TestKeyCtrlL},
		{"theme", km.ToggleTheme, testutils.TestKeyCtrlT},
		{"settings", km.Settings, testutils.TestKeyCtrlS},
		{"attach", km.Attach, testutils.TestKeyCtrlO},
		{"copy", km.Copy, testutils.TestKeyCtrlY},
		{"speak", km.Speak, testutils.TestKeyCtrlR},
		{"stop", km.StopSpeech, testutils.TestKeyCtrlX},
		{"focus", km.FocusChat, testutils.TestKeyTab},
		{"dismiss", km.Dismiss, testutils.TestKeyEsc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !key.Matches(tt.msg, tt.binding) {
				t.Fatalf("Expected %q to match %s binding", tt.msg.String(), tt.name)
			}
		})
	}
}

func TestDefaultKeyMap_NoOverlap(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				if prev, ok := seen[k]; ok {
					t.Fatalf("key %q bound twice (%s, %s)", k, prev, b.Help().Desc)
				}
				seen[k] = b.Help().Desc
			}
		}
	}
	if len(seen) != 10 {
		t.Fatalf("Expected 10 bound keys, got %d", len(seen))
	}
}
