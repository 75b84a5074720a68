package composer

import (
	"strings"
	"testing"

	"gemini_chat/pkg/ui/components/testutils"
	"gemini_chat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

func newComposer() *Composer {
	c := New(styles.New(true))
	c.SetWidth(60)
	return c
}

func typeText(c *Composer, text string) {
	for _, k := range testutils.TypeText(text) {
		c.Update(k)
	}
}

func TestComposer_SubmitKeepsText(t *testing.T) {
	c := newComposer()
	typeText(c, "Merhaba")

	cmd := c.Update(testutils.TestKeyEnter)
	if cmd == nil {
		t.Fatal("Expected submit command")
	}
	msg, ok := cmd().(SubmitMsg)
	if !ok {
		t.Fatalf("Expected SubmitMsg, got %T", cmd())
	}
	if msg.Content != "Merhaba" {
		t.Fatalf("Expected content Merhaba, got %q", msg.Content)
	}
	if c.Value() != "Merhaba" {
		t.Fatal("Composer should leave clearing to the caller")
	}
}

func TestComposer_LockedDoesNotSubmit(t *testing.T) {
	c := newComposer()
	c.SetLocked(true)
	typeText(c, "hi")

	if cmd := c.Update(testutils.TestKeyEnter); cmd != nil {
		t.Fatal("Locked composer should not submit")
	}
	if c.Value() != "hi" {
		t.Fatalf("Typing should still work while locked, got %q", c.Value())
	}
}

func TestComposer_AltEnterInsertsNewline(t *testing.T) {
	c := newComposer()
	typeText(c, "a")
	c.Update(testutils.NewAltKeyPressMsg(tea.KeyEnter))
	typeText(c, "b")

	if c.Value() != "a\nb" {
		t.Fatalf("Expected multi-line value, got %q", c.Value())
	}
}

func TestComposer_AttachMode(t *testing.T) {
	c := newComposer()
	typeText(c, "draft")

	c.StartAttach()
	if c.Mode() != ModeAttachPath || c.Value() != "" {
		t.Fatalf("Expected empty path prompt, got mode=%v value=%q", c.Mode(), c.Value())
	}

	if cmd := c.Update(testutils.TestKeyEnter); cmd != nil {
		t.Fatal("Empty path should not submit")
	}

	typeText(c, " /tmp/cat.png ")
	cmd := c.Update(testutils.TestKeyEnter)
	if cmd == nil {
		t.Fatal("Expected attach command")
	}
	msg, ok := cmd().(AttachPathMsg)
	if !ok || msg.Path != "/tmp/cat.png" {
		t.Fatalf("Unexpected attach message: %#v", cmd())
	}
	if c.Mode() != ModeMessage || c.Value() != "draft" {
		t.Fatalf("Expected draft restored, got mode=%v value=%q", c.Mode(), c.Value())
	}
}

func TestComposer_EscCancelsAttach(t *testing.T) {
	c := newComposer()
	typeText(c, "keep me")
	c.StartAttach()
	typeText(c, "/tmp/x")

	c.Update(testutils.TestKeyEsc)
	if c.Mode() != ModeMessage || c.Value() != "keep me" {
		t.Fatalf("Expected draft restored, got mode=%v value=%q", c.Mode(), c.Value())
	}
}

func TestComposer_ResetAndFocus(t *testing.T) {
	c := newComposer()
	typeText(c, "x")
	c.Reset()
	if c.Value() != "" {
		t.Fatal("Expected empty value after Reset")
	}

	c.Blur()
	if c.Focused() {
		t.Fatal("Expected blurred composer")
	}
	c.Focus()
	if !c.Focused() {
		t.Fatal("Expected focused composer")
	}

	c.InsertString("pasted")
	if c.Value() != "pasted" {
		t.Fatalf("Expected pasted text, got %q", c.Value())
	}
}

func TestComposer_ViewSize(t *testing.T) {
	c := newComposer()
	view := c.View()

	if h := lipgloss.Height(view); h != c.Height() {
		t.Fatalf("Expected height %d, got %d", c.Height(), h)
	}
	for _, line := range strings.Split(view, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Fatalf("Expected width 60, got %d", w)
		}
	}
}
