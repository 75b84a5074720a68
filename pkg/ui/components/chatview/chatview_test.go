package chatview

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gemini_chat/pkg/chat"
	"gemini_chat/pkg/ui/components/testutils"
	"gemini_chat/pkg/ui/styles"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

func sampleMessages(n int) []chat.Message {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs := make([]chat.Message, 0, n)
	for i := range n {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		msgs = append(msgs, chat.Message{
			ID:        fmt.Sprintf("msg-%d", i+1),
			Role:      role,
			Content:   fmt.Sprintf("message %d", i+1),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}
	return msgs
}

func plainView(c *ChatView) string {
	return ansi.Strip(c.View())
}

func TestChatView_EmptyPlaceholder(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 10)

	if !strings.Contains(plainView(c), "No messages yet") {
		t.Fatal("Expected empty placeholder")
	}
}

func TestChatView_RendersRolesAndContent(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 12)
	c.SetMessages(sampleMessages(2))

	view := plainView(c)
	for _, want := range []string{"You", "Gemini", "message 1", "message 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
	if strings.Contains(view, "No messages yet") {
		t.Error("Placeholder should be hidden once messages exist")
	}
}

func TestChatView_ViewDimensions(t *testing.T) {
	c := New(styles.New(false))
	c.SetSize(50, 8)
	c.SetMessages(sampleMessages(10))

	view := c.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 8 {
		t.Fatalf("Expected 8 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if w := lipgloss.Width(line); w != 50 {
			t.Fatalf("Expected width 50, got %d: %q", w, line)
		}
	}
}

func TestChatView_FollowsNewestMessage(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(50, 8)
	c.SetMessages(sampleMessages(10))

	view := plainView(c)
	if !strings.Contains(view, "message 10") {
		t.Fatal("Expected newest message to be visible")
	}
	if strings.Contains(view, "message 1 ") {
		t.Fatal("Expected oldest message scrolled out")
	}
}

func TestChatView_PageUpStopsFollowing(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(50, 8)
	c.SetMessages(sampleMessages(10))

	c.Update(testutils.TestKeyHome)
	if c.scrollY != 0 {
		t.Fatalf("Expected scrollY=0, got %d", c.scrollY)
	}
	c.SetMessages(sampleMessages(12))
	if c.scrollY != 0 {
		t.Fatal("New messages should not move a scrolled-up view")
	}
	c.Update(testutils.TestKeyEnd)
	if !strings.Contains(plainView(c), "message 12") {
		t.Fatal("End should jump to the newest message")
	}
}

func TestChatView_PendingReply(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 12)
	c.SetMessages(sampleMessages(1))

	c.SetPending("", true)
	if !strings.Contains(plainView(c), "yazıyor…") {
		t.Fatal("Expected typing indicator while waiting")
	}

	c.AppendPending("Mer")
	c.AppendPending("haba")
	view := plainView(c)
	if !strings.Contains(view, "Merhaba") {
		t.Fatal("Expected streamed text to be shown")
	}
	if strings.Contains(view, "yazıyor…") {
		t.Fatal("Typing indicator should disappear once text arrives")
	}

	c.SetPending("", false)
	if strings.Contains(plainView(c), "Merhaba") {
		t.Fatal("Expected pending reply cleared")
	}
}

func TestChatView_SelectionCopyAndSpeak(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 20)
	c.SetMessages(sampleMessages(3))

	if cmd := c.Update(testutils.NewTextKeyPressMsg("y")); cmd != nil {
		t.Fatal("Unfocused view should not copy")
	}

	c.Focus()
	if m, ok := c.Selected(); !ok || m.ID != "msg-3" {
		t.Fatalf("Expected newest message selected, got %+v", m)
	}

	c.Update(testutils.TestKeyUp)
	cmd := c.Update(testutils.NewTextKeyPressMsg("y"))
	if cmd == nil {
		t.Fatal("Expected copy command")
	}
	if msg, ok := cmd().(CopyRequestMsg); !ok || msg.Text != "message 2" {
		t.Fatalf("Unexpected copy message: %#v", cmd())
	}

	cmd = c.Update(testutils.NewTextKeyPressMsg("r"))
	if cmd == nil {
		t.Fatal("Expected speak command")
	}
	if msg, ok := cmd().(SpeakRequestMsg); !ok || msg.Text != "message 2" {
		t.Fatalf("Unexpected speak message: %#v", cmd())
	}

	if !strings.Contains(plainView(c), "▶ Gemini") {
		t.Fatal("Expected selection marker on the selected message")
	}

	c.Blur()
	if _, ok := c.Selected(); ok {
		t.Fatal("Blur should drop the selection")
	}
}

func TestChatView_SelectionClampsOnShrink(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 20)
	c.SetMessages(sampleMessages(3))
	c.Focus()

	c.SetMessages(nil)
	if _, ok := c.Selected(); ok {
		t.Fatal("Expected no selection after the log is cleared")
	}
}

func TestRenderMarkdown(t *testing.T) {
	st := styles.New(true)
	content := "# Başlık\nSome **bold** text\n- item one\n```\ncode line\n```"
	lines := renderMarkdown(content, 40, st)

	var plain []string
	for _, l := range lines {
		plain = append(plain, strings.TrimRight(ansi.Strip(l), " "))
	}
	want := []string{"Başlık", "Some bold text", "• item one", "code line"}
	if strings.Join(plain, "|") != strings.Join(want, "|") {
		t.Fatalf("renderMarkdown = %q, want %q", plain, want)
	}
}

func TestRenderMarkdown_WrapsBullets(t *testing.T) {
	st := styles.New(true)
	lines := renderMarkdown("- alpha beta gamma delta", 12, st)

	if len(lines) < 2 {
		t.Fatalf("Expected wrapped bullet, got %q", lines)
	}
	if !strings.HasPrefix(ansi.Strip(lines[1]), "  ") {
		t.Fatalf("Expected hanging indent, got %q", ansi.Strip(lines[1]))
	}
	for _, l := range lines {
		if w := ansi.StringWidth(l); w > 12 {
			t.Fatalf("Line wider than 12: %q", ansi.Strip(l))
		}
	}
}

func TestChatView_CustomEmptyLines(t *testing.T) {
	c := New(styles.New(true))
	c.SetSize(60, 10)
	c.SetEmptyLines([]string{"hello there"})

	view := plainView(c)
	if !strings.Contains(view, "hello there") || strings.Contains(view, "No messages yet") {
		t.Fatalf("Expected custom empty text, got:\n%s", view)
	}
}
