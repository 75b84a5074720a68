// Package utils holds width helpers shared by the UI components.
package utils

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// TruncateToWidth shortens plain or styled text to width cells, ending in an ellipsis.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return ansi.Truncate(text, width, "")
	}
	return ansi.Truncate(text, width, "…")
}

// PadPlain pads unstyled text with spaces to width.
func PadPlain(text string, width int) string {
	w := runewidth.StringWidth(text)
	if width <= 0 || w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// PadStyled pads text that may contain ANSI sequences.
func PadStyled(text string, width int) string {
	w := ansi.StringWidth(text)
	if width <= 0 || w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// SplitByWidth hard-wraps text into chunks no wider than width.
func SplitByWidth(text string, width int) []string {
	if width <= 0 || text == "" {
		return []string{text}
	}

	var parts []string
	var sb strings.Builder
	used := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if used > 0 && used+rw > width {
			parts = append(parts, sb.String())
			sb.Reset()
			used = 0
		}
		sb.WriteRune(r)
		used += rw
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}

// Sanitize drops control characters other than newline and tab.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
