package chatview

import (
	"strings"

	"gemini_chat/pkg/ui/components/utils"
	"gemini_chat/pkg/ui/styles"

	"github.com/mattn/go-runewidth"
)

type word struct {
	text string
	bold bool
}

// renderMarkdown turns reply text into styled lines no wider than width.
// Only the constructs Gemini uses most are handled: fenced code, headings,
// bullets and **bold**.
func renderMarkdown(content string, width int, st styles.Styles) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = utils.Sanitize(content)

	var out []string
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			for _, part := range utils.SplitByWidth(line, width) {
				out = append(out, st.Code.Render(utils.PadPlain(part, width)))
			}
			continue
		}

		switch {
		case trimmed == "":
			out = append(out, "")
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, wrapWords(splitWords(heading, true), width, "", st)...)
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			out = append(out, wrapWords(splitWords(trimmed[2:], false), width, "• ", st)...)
		default:
			out = append(out, wrapWords(splitWords(line, false), width, "", st)...)
		}
	}

	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// splitWords breaks a line on whitespace, toggling bold at each "**".
func splitWords(line string, bold bool) []word {
	var words []word
	for i, segment := range strings.Split(line, "**") {
		segBold := bold != (i%2 == 1)
		for _, f := range strings.Fields(segment) {
			words = append(words, word{text: f, bold: segBold})
		}
	}
	return words
}

// wrapWords lays words out greedily. Continuation lines are indented to
// line up under the bullet text.
func wrapWords(words []word, width int, bullet string, st styles.Styles) []string {
	indent := runewidth.StringWidth(bullet)
	if width-indent < 1 {
		indent, bullet = 0, ""
	}
	avail := width - indent

	var lines []string
	var cur strings.Builder
	used := 0
	first := true

	flush := func() {
		lead := strings.Repeat(" ", indent)
		if first {
			lead = bullet
			first = false
		}
		lines = append(lines, st.Text.Render(lead)+cur.String())
		cur.Reset()
		used = 0
	}

	for _, w := range words {
		for _, part := range utils.SplitByWidth(w.text, avail) {
			pw := runewidth.StringWidth(part)
			if used > 0 && used+1+pw > avail {
				flush()
			}
			if used > 0 {
				cur.WriteString(st.Text.Render(" "))
				used++
			}
			if w.bold {
				cur.WriteString(st.Bold.Render(part))
			} else {
				cur.WriteString(st.Text.Render(part))
			}
			used += pw
		}
	}
	if used > 0 || first {
		flush()
	}
	return lines
}
