// Package render holds screen geometry helpers for the root model.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// CenterRect returns a rectangle centered within the screen bounds.
// Width/height are clamped to the screen size before centering.
func CenterRect(panelW, panelH, screenW, screenH int) (x, y, w, h int) {
	w = max(panelW, 0)
	h = max(panelH, 0)
	screenW = max(screenW, 0)
	screenH = max(screenH, 0)
	w = min(w, screenW)
	h = min(h, screenH)
	if screenW > w {
		x = (screenW - w) / 2
	}
	if screenH > h {
		y = (screenH - h) / 2
	}
	return ClampRect(x, y, w, h, screenW, screenH)
}

// ClampRect clamps a rectangle to the screen bounds.
func ClampRect(x, y, w, h, screenW, screenH int) (int, int, int, int) {
	screenW = max(screenW, 0)
	screenH = max(screenH, 0)
	w = max(w, 0)
	h = max(h, 0)
	x = min(max(x, 0), screenW)
	y = min(max(y, 0), screenH)
	if x+w > screenW {
		w = screenW - x
	}
	if y+h > screenH {
		h = screenH - y
	}
	return x, y, max(w, 0), max(h, 0)
}

// ChatHeight is what remains for the chat panel once the fixed rows are
// taken. It never goes below 3 so the bordered panel still draws.
func ChatHeight(screenH int, fixed ...int) int {
	h := screenH
	for _, f := range fixed {
		h -= f
	}
	return max(h, 3)
}

// Overlay draws panel centered over base. Rows of base outside the panel
// are kept as they are; covered rows keep the cells left and right of it.
func Overlay(base, panel string, screenW, screenH int) string {
	if panel == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < screenH {
		baseLines = append(baseLines, "")
	}
	panelLines := strings.Split(panel, "\n")

	panelW := 0
	for _, l := range panelLines {
		panelW = max(panelW, ansi.StringWidth(l))
	}
	x, y, w, h := CenterRect(panelW, len(panelLines), screenW, screenH)

	for i := 0; i < h; i++ {
		row := baseLines[y+i]
		left := ansi.Truncate(row, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		mid := ansi.Truncate(panelLines[i], w, "")
		if pad := w - ansi.StringWidth(mid); pad > 0 {
			mid += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(row, x+w, "")
		baseLines[y+i] = left + "\x1b[0m" + mid + "\x1b[0m" + right
	}
	return strings.Join(baseLines, "\n")
}
