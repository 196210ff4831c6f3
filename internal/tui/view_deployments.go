package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crn4/kr/internal/domain"
)

func renderDeploymentList(deps []domain.Resource, selected map[string]bool, cursor, width, maxVisible int, sortState SortState) string {
	var b strings.Builder

	if width >= 120 {
		header := fmt.Sprintf("    %-38s %-10s %-10s %-8s %s",
			SortIndicator("NAME", sortState),
			SortIndicator("READY", sortState),
			"AVAIL",
			SortIndicator("AGE", sortState),
			"IMAGE")
		b.WriteString(headerStyle.Render(header))
	} else if width >= 80 {
		header := fmt.Sprintf("    %-35s %-10s %-10s %s",
			SortIndicator("NAME", sortState), SortIndicator("READY", sortState), "AVAIL",
			SortIndicator("AGE", sortState))
		b.WriteString(headerStyle.Render(header))
	} else {
		header := fmt.Sprintf("    %-30s %-10s %s",
			SortIndicator("NAME", sortState), SortIndicator("READY", sortState),
			SortIndicator("AGE", sortState))
		b.WriteString(headerStyle.Render(header))
	}
	b.WriteString("\n")

	start := 0
	if cursor >= maxVisible {
		start = cursor - maxVisible + 1
	}

	for i := start; i < len(deps) && i < start+maxVisible; i++ {
		d, ok := deps[i].(domain.DeploymentInfo)
		if !ok {
			continue
		}
		marker := " "
		if selected[domain.ResourceKey(deps[i])] {
			marker = markedStyle.Render("●")
		}
		readyColor := colorizeReady(d.Ready)

		var line string
		if width >= 120 {
			line = fmt.Sprintf("  %s %-38s %-10s %-10d %-8s %s",
				marker, truncate(d.Name, 37), readyColor, d.Available, d.Age,
				truncate(d.Image, width-77))
		} else if width >= 80 {
			line = fmt.Sprintf("  %s %-35s %-10s %-10d %s",
				marker, truncate(d.Name, 34), readyColor, d.Available, d.Age)
		} else {
			line = fmt.Sprintf("  %s %-30s %-10s %s",
				marker, truncate(d.Name, 29), readyColor, d.Age)
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

func colorizeReady(ready string) string {
	var readyN, totalN int
	fmt.Sscanf(ready, "%d/%d", &readyN, &totalN)
	if totalN > 0 && readyN == totalN {
		return lipgloss.NewStyle().Foreground(colorSuccess).Render(ready)
	}
	if readyN == 0 {
		return lipgloss.NewStyle().Foreground(colorError).Render(ready)
	}
	return lipgloss.NewStyle().Foreground(colorWarning).Render(ready)
}

func deploymentHelpKeys() string {
	return "q:Quit /:Filter j/k:Nav g/G:Top/End Space:Sel ^a:All Tab:Next S:Scale +/-:Replicas r:Restart D:Del d:Desc e:Edit c:Ctx n:NS"
}
