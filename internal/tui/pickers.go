package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// pickerState drives the context and namespace popups. Both share the list
// mechanics; the namespace picker additionally allows '/' to enter typing
// mode, where the input filters the list and enter may pick a namespace that
// is not listed at all.
type pickerState struct {
	title    string
	items    []string
	filtered []string
	cursor   int
	current  string
	typing   bool
	canType  bool
	// navigated flips when the user moves the cursor while typing, shifting
	// enter from the typed text to the highlighted row. Editing the input
	// clears it again.
	navigated bool
	input     textinput.Model
}

func newPickerState() pickerState {
	ti := textinput.New()
	ti.CharLimit = 63
	ti.Width = 40
	return pickerState{input: ti}
}

func (p *pickerState) open(title string, items []string, current string, canType bool) {
	p.title = title
	p.items = items
	p.filtered = items
	p.current = current
	p.canType = canType
	p.typing = false
	p.input.SetValue("")
	p.input.Blur()
	p.cursor = 0
	for i, item := range items {
		if item == current {
			p.cursor = i
			break
		}
	}
}

func (p *pickerState) close() {
	p.items = nil
	p.filtered = nil
	p.typing = false
	p.input.SetValue("")
	p.input.Blur()
}

// setItems replaces the list while the picker is open, preserving the
// highlighted entry when it survives the update.
func (p *pickerState) setItems(items []string) {
	var highlighted string
	if p.cursor < len(p.filtered) {
		highlighted = p.filtered[p.cursor]
	}
	p.items = items
	p.updateFilter()
	for i, item := range p.filtered {
		if item == highlighted {
			p.cursor = i
			return
		}
	}
}

func (p *pickerState) startTyping() {
	if !p.canType {
		return
	}
	p.typing = true
	p.input.SetValue("")
	p.input.Focus()
	p.updateFilter()
}

func (p *pickerState) stopTyping() {
	p.typing = false
	p.input.SetValue("")
	p.input.Blur()
	p.updateFilter()
}

func (p *pickerState) updateFilter() {
	query := strings.ToLower(p.input.Value())
	if query == "" {
		p.filtered = p.items
	} else {
		filtered := make([]string, 0, len(p.items))
		for _, item := range p.items {
			if strings.Contains(strings.ToLower(item), query) {
				filtered = append(filtered, item)
			}
		}
		p.filtered = filtered
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = 0
	}
	p.navigated = false
}

func (p *pickerState) moveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
	p.navigated = true
}

func (p *pickerState) moveDown() {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
	}
	p.navigated = true
}

// choice returns the entry to select on enter. While typing, the typed text
// wins over the highlighted row unless the user has moved the cursor, so a
// name that is a prefix of a listed entry stays selectable.
func (p *pickerState) choice() string {
	typed := strings.TrimSpace(p.input.Value())
	if p.typing && typed != "" && !p.navigated && validNamespaceName(typed) {
		return typed
	}
	if p.cursor < len(p.filtered) {
		return p.filtered[p.cursor]
	}
	return typed
}

func (p *pickerState) view(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n\n")
	if p.typing {
		b.WriteString(p.input.View())
		b.WriteString("\n\n")
	}

	maxVisible := height - 10
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if p.cursor >= maxVisible {
		start = p.cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	for i := start; i < end; i++ {
		item := p.filtered[i]
		label := item
		if item == p.current {
			label = fmt.Sprintf("%s (current)", item)
		}
		if i == p.cursor {
			b.WriteString(selectedStyle.Render(">> " + label))
		} else {
			b.WriteString("   " + label)
		}
		b.WriteString("\n")
	}
	if len(p.filtered) == 0 {
		b.WriteString(tabInactiveStyle.Render("   (no matches)"))
		b.WriteString("\n")
	}

	return modalBoxStyle.Width(min(width-4, 50)).Render(b.String())
}

// validNamespaceName checks the RFC 1123 label rules: 1 to 63 characters of
// lowercase letters, digits and hyphens, starting and ending alphanumeric.
func validNamespaceName(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return name[0] != '-' && name[len(name)-1] != '-'
}
