package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/crn4/kr/internal/domain"
)

type secretRow struct {
	key   string
	value string
}

// secretView is the decode modal for one secret. Values arrive already
// base64-decoded from the watch cache; anything that does not decode to
// valid UTF-8 displays as <binary>.
type secretView struct {
	name     string
	rows     []secretRow
	cursor   int
	revealed bool
	active   bool
}

func newSecretView(s domain.SecretInfo) secretView {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]secretRow, 0, len(keys))
	for _, k := range keys {
		raw := s.Data[k]
		value := "<binary>"
		if utf8.Valid(raw) {
			value = string(raw)
		}
		rows = append(rows, secretRow{key: k, value: value})
	}
	return secretView{name: s.Name, rows: rows, active: true}
}

func (sv *secretView) close() {
	sv.rows = nil
	sv.active = false
	sv.revealed = false
	sv.cursor = 0
}

func (sv *secretView) moveUp() {
	if sv.cursor > 0 {
		sv.cursor--
	}
}

func (sv *secretView) moveDown() {
	if sv.cursor < len(sv.rows)-1 {
		sv.cursor++
	}
}

func (sv *secretView) toggleReveal() {
	sv.revealed = !sv.revealed
}

// currentRow returns the highlighted key/value pair for the copy action.
func (sv *secretView) currentRow() (secretRow, bool) {
	if sv.cursor >= len(sv.rows) {
		return secretRow{}, false
	}
	return sv.rows[sv.cursor], true
}

func (sv *secretView) view(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Decoded Secret"))
	b.WriteString("\n\n")

	if len(sv.rows) == 0 {
		b.WriteString("No data in secret.\n")
		return modalBoxStyle.Width(min(width-4, 70)).Render(b.String())
	}

	keyWidth := 12
	for _, row := range sv.rows {
		if len(row.key) > keyWidth {
			keyWidth = len(row.key)
		}
	}
	if keyWidth > 30 {
		keyWidth = 30
	}
	valueWidth := width - keyWidth - 16
	if valueWidth < 8 {
		valueWidth = 8
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %s", keyWidth, "KEY", "VALUE")))
	b.WriteString("\n")

	maxVisible := height - 10
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if sv.cursor >= maxVisible {
		start = sv.cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(sv.rows) {
		end = len(sv.rows)
	}

	for i := start; i < end; i++ {
		row := sv.rows[i]
		value := "********"
		if sv.revealed {
			value = strings.ReplaceAll(row.value, "\n", "\\n")
		}
		line := fmt.Sprintf("%-*s  %s", keyWidth, truncate(row.key, keyWidth), truncate(value, valueWidth))
		if i == sv.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return modalBoxStyle.Width(min(width-4, 90)).Render(b.String())
}
