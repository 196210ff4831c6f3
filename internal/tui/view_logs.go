package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crn4/kr/internal/session"
)

// Compiled regexes for log line colorization.
var (
	reTimestamp  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}[\.\d]*`)
	reLogLevel   = regexp.MustCompile(`\b(INFO|WARN|WARNING|ERROR|FATAL|SEVERE|DEBUG|TRACE)\b`)
	reHTTPMethod = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b`)
	reHTTPStatus = regexp.MustCompile(`\b([2-5]\d{2})\b`)
)

// logViewState holds the render-side options of the log view; the line
// buffer, scroll position and search all live in the session.
type logViewState struct {
	searchInput    string
	searching      bool
	loadingHistory bool
	wrap           bool
}

func renderLogs(l *session.Log, ls logViewState, width, viewHeight int) string {
	var b strings.Builder

	total := l.Len()
	modeLabel := "PAUSED"
	if l.Follow() {
		modeLabel = "FOLLOWING"
	}
	historyLabel := ""
	if ls.loadingHistory {
		historyLabel = " [Loading...]"
	}
	searchLabel := ""
	if ls.searching {
		searchLabel = fmt.Sprintf(" /%s_", ls.searchInput)
	} else if l.Query() != "" {
		searchLabel = fmt.Sprintf(" /%s", l.Query())
		if n := l.MatchCount(); n > 0 {
			searchLabel += fmt.Sprintf(" (%d/%d)", l.MatchPos()+1, n)
		}
	}
	title := fmt.Sprintf("  Logs [%d lines] [%s]%s%s", total, modeLabel, historyLabel, searchLabel)
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	query := l.Query()
	if ls.searching {
		query = strings.ToLower(ls.searchInput)
	}

	usable := width - 2
	if usable < 1 {
		usable = 1
	}
	top := l.Top(viewHeight)
	rendered := 0
	for _, line := range l.Lines(top, viewHeight) {
		if rendered >= viewHeight {
			break
		}
		if ls.wrap {
			runes := []rune(line)
			for rendered < viewHeight {
				n := min(usable, len(runes))
				chunk := string(runes[:n])
				runes = runes[n:]
				b.WriteString("  ")
				b.WriteString(renderLogLine(chunk, query))
				b.WriteString("\n")
				rendered++
				if len(runes) == 0 {
					break
				}
			}
		} else {
			b.WriteString("  ")
			b.WriteString(renderLogLine(truncate(line, usable), query))
			b.WriteString("\n")
			rendered++
		}
	}

	return b.String()
}

// renderLogLine highlights search matches when a query is live, otherwise
// colorizes timestamps, levels and HTTP tokens.
func renderLogLine(line, query string) string {
	if query != "" && strings.Contains(strings.ToLower(line), query) {
		return highlightMatches(line, query)
	}
	return colorizeLine(line)
}

// highlightMatches marks every case-insensitive occurrence of query.
func highlightMatches(line, query string) string {
	if query == "" {
		return line
	}
	var b strings.Builder
	lower := strings.ToLower(line)
	n := len(query)
	start := 0
	for {
		pos := strings.Index(lower[start:], query)
		if pos < 0 {
			break
		}
		abs := start + pos
		b.WriteString(line[start:abs])
		b.WriteString(matchStyle.Render(line[abs : abs+n]))
		start = abs + n
	}
	b.WriteString(line[start:])
	return b.String()
}

func colorizeLine(line string) string {
	if line == "" {
		return ""
	}

	// 1. Timestamps → gray
	line = reTimestamp.ReplaceAllStringFunc(line, func(m string) string {
		return lipgloss.NewStyle().Foreground(colorMuted).Render(m)
	})

	// 2. Log levels → colored bold
	line = reLogLevel.ReplaceAllStringFunc(line, func(m string) string {
		switch m {
		case "INFO":
			return lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(m)
		case "WARN", "WARNING":
			return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render(m)
		case "ERROR", "FATAL", "SEVERE":
			return lipgloss.NewStyle().Foreground(colorError).Bold(true).Render(m)
		case "DEBUG", "TRACE":
			return lipgloss.NewStyle().Foreground(colorMuted).Render(m)
		}
		return m
	})

	// 3. HTTP methods → colored bold
	line = reHTTPMethod.ReplaceAllStringFunc(line, func(m string) string {
		switch m {
		case "GET":
			return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render(m)
		case "POST":
			return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render(m)
		case "PUT", "PATCH":
			return lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(m)
		case "DELETE":
			return lipgloss.NewStyle().Foreground(colorError).Bold(true).Render(m)
		case "HEAD", "OPTIONS":
			return lipgloss.NewStyle().Foreground(colorMuted).Bold(true).Render(m)
		}
		return m
	})

	// 4. HTTP status codes → colored by range
	line = reHTTPStatus.ReplaceAllStringFunc(line, func(m string) string {
		switch m[0] {
		case '2':
			return lipgloss.NewStyle().Foreground(colorSuccess).Render(m)
		case '3':
			return lipgloss.NewStyle().Foreground(colorPrimary).Render(m)
		case '4':
			return lipgloss.NewStyle().Foreground(colorWarning).Render(m)
		case '5':
			return lipgloss.NewStyle().Foreground(colorError).Render(m)
		}
		return m
	})

	return line
}

func logHelpKeys(wrap bool) string {
	wrapLabel := "w:Wrap"
	if wrap {
		wrapLabel = "w:Nowrap"
	}
	return fmt.Sprintf("j/k:Scroll | PgUp/PgDn | g/G:Top/Follow | /:Search n/N:Next/Prev | %s | q/Esc:Back", wrapLabel)
}
