package utils

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ellipsis", "hello world", 6, "hello…"},
		{"one column", "hello", 1, "h"},
		{"zero width", "hello", 0, ""},
		{"wide runes", "merhaba dünya", 9, "merhaba …"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateToWidth(tt.text, tt.width); got != tt.want {
				t.Fatalf("TruncateToWidth(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncateToWidth_KeepsStyledWidth(t *testing.T) {
	styled := "\x1b[1mbold text here\x1b[0m"
	got := TruncateToWidth(styled, 6)
	if w := ansi.StringWidth(got); w != 6 {
		t.Fatalf("Expected width 6, got %d (%q)", w, got)
	}
}

func TestPadPlainAndStyled(t *testing.T) {
	if got := PadPlain("ab", 5); got != "ab   " {
		t.Fatalf("PadPlain = %q", got)
	}
	if got := PadPlain("abcdef", 3); got != "abcdef" {
		t.Fatalf("PadPlain should not cut, got %q", got)
	}
	styled := "\x1b[31mab\x1b[0m"
	if got := PadStyled(styled, 4); ansi.StringWidth(got) != 4 || !strings.HasPrefix(got, styled) {
		t.Fatalf("PadStyled = %q", got)
	}
}

func TestSplitByWidth(t *testing.T) {
	got := SplitByWidth("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("SplitByWidth = %v, want %v", got, want)
	}
	if got := SplitByWidth("", 3); len(got) != 1 || got[0] != "" {
		t.Fatalf("Expected single empty chunk, got %v", got)
	}
}

func TestSanitize(t *testing.T) {
	in := "a\x1b[31mb\tc\nd\x7f"
	if got := Sanitize(in); got != "a[31mb\tc\nd" {
		t.Fatalf("Sanitize = %q", got)
	}
}
