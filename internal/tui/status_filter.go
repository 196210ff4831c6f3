package tui

import (
	"fmt"
	"sort"
	"strings"
)

type statusRow struct {
	status string
	count  int
}

// statusFilterState is the pod status filter popup. Rows are the phases
// present in the store with their counts; selection is staged locally and
// only takes effect on enter.
type statusFilterState struct {
	rows     []statusRow
	cursor   int
	selected map[string]bool
	active   bool
}

// build snapshots the current phase counts and pre-selects the phases of the
// filter already in force.
func (sf *statusFilterState) build(counts map[string]int, current map[string]bool) {
	rows := make([]statusRow, 0, len(counts))
	for status, count := range counts {
		rows = append(rows, statusRow{status: status, count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].status < rows[j].status })
	sf.rows = rows
	sf.cursor = 0
	sf.selected = make(map[string]bool, len(current))
	for status := range current {
		sf.selected[status] = true
	}
	sf.active = true
}

func (sf *statusFilterState) close() {
	sf.rows = nil
	sf.selected = nil
	sf.active = false
}

func (sf *statusFilterState) moveUp() {
	if sf.cursor > 0 {
		sf.cursor--
	}
}

func (sf *statusFilterState) moveDown() {
	if sf.cursor < len(sf.rows)-1 {
		sf.cursor++
	}
}

func (sf *statusFilterState) toggle() {
	if sf.cursor >= len(sf.rows) {
		return
	}
	status := sf.rows[sf.cursor].status
	if sf.selected[status] {
		delete(sf.selected, status)
	} else {
		sf.selected[status] = true
	}
}

// toggleAll selects every phase, or clears the staging when everything is
// already selected.
func (sf *statusFilterState) toggleAll() {
	if len(sf.selected) == len(sf.rows) {
		sf.selected = map[string]bool{}
		return
	}
	for _, row := range sf.rows {
		sf.selected[row.status] = true
	}
}

// commit converts the staged selection into the filter to apply. With
// nothing staged the highlighted row alone becomes the filter; with every
// phase staged the filter clears.
func (sf *statusFilterState) commit() map[string]bool {
	if len(sf.selected) == 0 {
		if sf.cursor < len(sf.rows) {
			return map[string]bool{sf.rows[sf.cursor].status: true}
		}
		return nil
	}
	if len(sf.selected) == len(sf.rows) {
		return nil
	}
	out := make(map[string]bool, len(sf.selected))
	for status := range sf.selected {
		out[status] = true
	}
	return out
}

func (sf *statusFilterState) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter by Status"))
	b.WriteString("\n\n")
	for i, row := range sf.rows {
		mark := "[ ]"
		if sf.selected[row.status] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%d)", mark, colorizeStatus(row.status), row.count)
		if i == sf.cursor {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(sf.rows) == 0 {
		b.WriteString(tabInactiveStyle.Render("  (no pods)"))
		b.WriteString("\n")
	}
	return modalBoxStyle.Width(min(width-4, 44)).Render(b.String())
}
