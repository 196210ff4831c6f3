package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/session"
)

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderContextBar())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContextBar is the top info line: cluster scope, row count and the
// filters currently in force.
func (m Model) renderContextBar() string {
	var parts []string
	parts = append(parts, "Ctx: "+contextStyle.Render(m.gateway.GetContext()))
	parts = append(parts, "NS: "+namespaceStyle.Render(m.namespace))
	parts = append(parts, fmt.Sprintf("Items: %d", m.listLen()))
	if f := m.filter.Value(); f != "" {
		parts = append(parts, "Filter: "+f)
	}
	if len(m.statusFilter) > 0 {
		statuses := make([]string, 0, len(m.statusFilter))
		for s := range m.statusFilter {
			statuses = append(statuses, s)
		}
		parts = append(parts, "Status: "+strings.Join(statuses, ","))
	}
	bar := " " + strings.Join(parts, " | ")

	switch m.subStates[m.tab.Kind()] {
	case domain.StateStreaming:
		bar += liveStyle.Render(" ● live")
	case domain.StateBackoff:
		bar += bannerWarnStyle.Render(" reconnecting ")
	}
	if m.disconnected {
		bar += bannerWarnStyle.Render(" disconnected (ctrl+r to reconnect) ")
	}
	return bar
}

func (m Model) renderTabs() string {
	labels := make([]string, tabCount)
	for i := 0; i < tabCount; i++ {
		t := Tab(i)
		label := t.String()
		if t == m.tab {
			if n := len(m.selected); n > 0 {
				label = fmt.Sprintf("%s (%d selected)", label, n)
			}
			labels[i] = tabActiveStyle.Render("[" + label + "]")
		} else {
			labels[i] = tabInactiveStyle.Render(" " + label + " ")
		}
	}
	return " " + strings.Join(labels, " ")
}

func (m Model) renderContent() string {
	if m.confirm.isActive() {
		return m.confirm.view(m.width) + "\n"
	}
	if m.selector.active {
		return m.selector.view(m.width) + "\n"
	}

	switch m.mode {
	case ModeLog, ModeLogSearch:
		if l := m.sessions.CurrentLog(); l != nil {
			return renderLogs(l, m.logView, m.width, m.contentHeight())
		}
		return ""
	case ModeShell:
		sh := m.sessions.CurrentShell()
		if sh == nil {
			return ""
		}
		ended := sh.Status() == session.StatusClosed || sh.Status() == session.StatusFailed
		return renderShell(m.shell, sh.Pod, sh.Container, ended, m.width, m.contentHeight())
	case ModeSecret:
		return m.secret.view(m.width, m.height) + "\n"
	case ModeContextPick, ModeNamespacePick:
		return m.picker.view(m.width, m.height) + "\n"
	case ModeScaleInput:
		box := fmt.Sprintf("Scale '%s'\n\nReplicas: %s\n\n[Enter] Apply  [Esc] Cancel", m.scaleTarget, m.scaleInput.View())
		return confirmBoxStyle.Width(min(m.width-4, 40)).Render(box) + "\n"
	case ModeDescribe:
		return renderTextView(&m.describe, m.width, m.contentHeight())
	case ModeYAML:
		return renderYAMLView(&m.yaml, m.width, m.contentHeight())
	case ModeStatusFilter:
		return m.statusPick.view(m.width) + "\n"
	}
	return m.renderList()
}

func (m Model) renderList() string {
	kind := m.tab.Kind()
	if m.subStates[kind] == domain.StateForbidden {
		return bannerWarnStyle.Render(fmt.Sprintf(" Access denied: cannot list %s in '%s' ", m.tab.resourceLabel(), m.namespace)) + "\n"
	}

	items := m.visible()
	if len(items) == 0 {
		if m.loading {
			frame := spinnerFrames[int(time.Since(m.loadingSince)/(250*time.Millisecond))%len(spinnerFrames)]
			return fmt.Sprintf("  %s Loading %s... (%ds)\n", frame, m.tab.resourceLabel(), int(time.Since(m.loadingSince).Seconds()))
		}
		if m.filter.Value() != "" || len(m.statusFilter) > 0 {
			return fmt.Sprintf("  No %s match the filter\n", m.tab.resourceLabel())
		}
		return fmt.Sprintf("  No %s in this namespace\n", m.tab.resourceLabel())
	}

	maxVisible := m.contentHeight()
	sortState := m.sortStates[kind]
	switch m.tab {
	case TabPods:
		return renderPodList(items, m.selected, m.cursor, m.width, maxVisible, sortState)
	case TabDeployments:
		return renderDeploymentList(items, m.selected, m.cursor, m.width, maxVisible, sortState)
	case TabSecrets:
		return renderSecretList(items, m.cursor, m.width, maxVisible, sortState)
	case TabEvents:
		return renderEventList(items, m.cursor, m.width, maxVisible, sortState)
	}
	return ""
}

func (m Model) renderFooter() string {
	var b strings.Builder

	if m.mode == ModeFilter {
		b.WriteString(" /")
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	} else if m.toast.isActive() {
		b.WriteString(m.toast.render())
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(statusBarStyle.Width(m.width).Render(m.helpLine()))
	return b.String()
}

func (m Model) helpLine() string {
	switch m.mode {
	case ModeFilter:
		return "enter:Apply  esc:Back"
	case ModeLog:
		return logHelpKeys(m.logView.wrap)
	case ModeLogSearch:
		return "enter:Search  esc:Cancel"
	case ModeShell:
		return shellHelpKeys()
	case ModeSecret:
		return "j/k:Nav | r:Reveal | c:Copy | q/Esc:Close"
	case ModeContextPick:
		return "j/k:Nav | enter:Switch | q/Esc:Close"
	case ModeNamespacePick:
		return "j/k:Nav | /:Type | enter:Switch | q/Esc:Close"
	case ModeScaleInput:
		return "enter:Apply | esc:Cancel"
	case ModeDescribe:
		return textHelpKeys()
	case ModeYAML:
		return yamlHelpKeys()
	case ModeStatusFilter:
		return "j/k:Nav | space:Toggle | a:All | enter:Apply | q/Esc:Close"
	}

	switch m.tab {
	case TabPods:
		return podHelpKeys()
	case TabDeployments:
		return deploymentHelpKeys()
	case TabSecrets:
		return secretHelpKeys()
	case TabEvents:
		return eventHelpKeys()
	}
	return ""
}
