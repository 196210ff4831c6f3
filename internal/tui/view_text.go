package tui

import (
	"fmt"
	"strings"
)

// textViewState is the scrollable full-screen text pane shared by the
// describe view and the YAML view.
type textViewState struct {
	title   string
	content string
	lines   []string
	offset  int
	active  bool
}

func (ts *textViewState) open(title, content string) {
	ts.title = title
	ts.content = content
	ts.lines = strings.Split(content, "\n")
	ts.offset = 0
	ts.active = true
}

func (ts *textViewState) close() {
	ts.content = ""
	ts.lines = nil
	ts.active = false
}

func (ts *textViewState) scrollDown(amount, viewHeight int) {
	maxOffset := len(ts.lines) - viewHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	ts.offset = min(ts.offset+amount, maxOffset)
}

func (ts *textViewState) scrollUp(amount int) {
	ts.offset = max(ts.offset-amount, 0)
}

func (ts *textViewState) jumpTop() {
	ts.offset = 0
}

func (ts *textViewState) jumpBottom(viewHeight int) {
	maxOffset := len(ts.lines) - viewHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	ts.offset = maxOffset
}

func renderTextView(ts *textViewState, width, viewHeight int) string {
	var b strings.Builder

	header := fmt.Sprintf("  %s [%d lines]", ts.title, len(ts.lines))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	end := min(ts.offset+viewHeight, len(ts.lines))
	for i := ts.offset; i < end; i++ {
		line := ts.lines[i]
		if len(line) > width-2 {
			line = line[:width-2]
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func textHelpKeys() string {
	return "j/k:Scroll | PgUp/PgDn | g/G:Top/Bottom | q/Esc:Close"
}
