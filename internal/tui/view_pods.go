package tui

import (
	"fmt"
	"strings"

	"github.com/crn4/kr/internal/domain"
)

func renderPodList(pods []domain.Resource, selected map[string]bool, cursor, width, maxVisible int, sortState SortState) string {
	var b strings.Builder

	// Responsive columns
	if width >= 100 {
		header := fmt.Sprintf("    %-42s %-7s %-18s %-10s %s",
			SortIndicator("NAME", sortState),
			"READY",
			SortIndicator("STATUS", sortState),
			SortIndicator("RESTARTS", sortState),
			SortIndicator("AGE", sortState))
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("    %-35s %-7s %s",
			SortIndicator("NAME", sortState), "READY", SortIndicator("STATUS", sortState))
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
	}

	start := 0
	if cursor >= maxVisible {
		start = cursor - maxVisible + 1
	}

	for i := start; i < len(pods) && i < start+maxVisible; i++ {
		p, ok := pods[i].(domain.PodInfo)
		if !ok {
			continue
		}
		marker := " "
		if selected[domain.ResourceKey(pods[i])] {
			marker = markedStyle.Render("●")
		}
		var line string
		if width >= 100 {
			line = fmt.Sprintf("  %s %-42s %-7s %-18s %-10d %s",
				marker,
				truncate(p.Name, 41),
				p.Ready,
				colorizeStatus(p.Status),
				p.Restarts,
				p.Age)
		} else {
			line = fmt.Sprintf("  %s %-35s %-7s %s",
				marker,
				truncate(p.Name, 34),
				p.Ready,
				colorizeStatus(p.Status))
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

func podHelpKeys() string {
	return "q:Quit /:Filter f:Status j/k:Nav g/G:Top/End Space:Sel ^a:All Tab:Next l:Logs s:Shell D:Del d:Desc e:Edit c:Ctx n:NS"
}
