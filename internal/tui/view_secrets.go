package tui

import (
	"fmt"
	"strings"

	"github.com/crn4/kr/internal/domain"
)

func renderSecretList(secrets []domain.Resource, cursor, width, maxVisible int, sortState SortState) string {
	var b strings.Builder

	if width >= 100 {
		header := fmt.Sprintf("  %-42s %-32s %-6s %s",
			SortIndicator("NAME", sortState),
			SortIndicator("TYPE", sortState),
			SortIndicator("KEYS", sortState),
			"AGE")
		b.WriteString(headerStyle.Render(header))
	} else {
		header := fmt.Sprintf("  %-35s %-6s %s",
			SortIndicator("NAME", sortState), SortIndicator("KEYS", sortState), "AGE")
		b.WriteString(headerStyle.Render(header))
	}
	b.WriteString("\n")

	start := 0
	if cursor >= maxVisible {
		start = cursor - maxVisible + 1
	}

	for i := start; i < len(secrets) && i < start+maxVisible; i++ {
		s, ok := secrets[i].(domain.SecretInfo)
		if !ok {
			continue
		}
		var line string
		if width >= 100 {
			line = fmt.Sprintf("  %-42s %-32s %-6d %s",
				truncate(s.Name, 41), truncate(s.Type, 31), s.Keys, s.Age)
		} else {
			line = fmt.Sprintf("  %-35s %-6d %s",
				truncate(s.Name, 34), s.Keys, s.Age)
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

func secretHelpKeys() string {
	return "q:Quit /:Filter j/k:Nav g/G:Top/End Tab:Next Enter/x:Decode d:Desc e:Edit c:Ctx n:NS"
}
