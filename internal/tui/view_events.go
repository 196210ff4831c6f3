package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crn4/kr/internal/domain"
)

var (
	eventWarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	eventNormalStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
)

func renderEventList(events []domain.Resource, cursor, width, maxVisible int, sortState SortState) string {
	var b strings.Builder

	if width >= 120 {
		header := fmt.Sprintf("  %-10s %-22s %-28s %-40s %-8s %s",
			SortIndicator("TYPE", sortState), "REASON", "OBJECT", "MESSAGE",
			SortIndicator("AGE", sortState), SortIndicator("COUNT", sortState))
		b.WriteString(headerStyle.Render(header))
	} else {
		header := fmt.Sprintf("  %-10s %-20s %-30s %s",
			SortIndicator("TYPE", sortState), "REASON", "OBJECT", SortIndicator("AGE", sortState))
		b.WriteString(headerStyle.Render(header))
	}
	b.WriteString("\n")

	start := 0
	if cursor >= maxVisible {
		start = cursor - maxVisible + 1
	}

	for i := start; i < len(events) && i < start+maxVisible; i++ {
		e, ok := events[i].(domain.EventInfo)
		if !ok {
			continue
		}

		typeStr := eventNormalStyle.Render(e.Type)
		if e.Type == "Warning" {
			typeStr = eventWarningStyle.Render(e.Type)
		}

		var line string
		if width >= 120 {
			line = fmt.Sprintf("  %-10s %-22s %-28s %-40s %-8s %d",
				typeStr,
				truncate(e.Reason, 21),
				truncate(e.Object, 27),
				truncate(e.Message, 39),
				e.Age,
				e.Count)
		} else {
			line = fmt.Sprintf("  %-10s %-20s %-30s %s",
				typeStr,
				truncate(e.Reason, 19),
				truncate(e.Object, 29),
				e.Age)
		}

		if i == cursor {
			b.WriteString(selectedStyle.Width(width).Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func eventHelpKeys() string {
	return "q:Quit /:Filter j/k:Nav g/G:Top/End o/O:Sort Tab:Next d:Desc c:Ctx n:NS"
}
