package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crn4/kr/internal/config"
	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/session"
)

// handleKey routes one key press. The shell forwards raw bytes and must see
// the key before anything else; the confirm prompt and the container
// selector are overlays that capture input ahead of the mode handler.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeShell {
		return m.handleShellKey(msg)
	}

	if m.confirm.isActive() {
		cmd, handled := m.confirm.update(msg)
		if handled {
			return m, cmd
		}
	}

	if m.selector.active {
		return m.handleSelectorKey(msg)
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeLog:
		return m.handleLogKey(msg)
	case ModeLogSearch:
		return m.handleLogSearchKey(msg)
	case ModeSecret:
		return m.handleSecretKey(msg)
	case ModeContextPick, ModeNamespacePick:
		return m.handlePickerKey(msg)
	case ModeScaleInput:
		return m.handleScaleKey(msg)
	case ModeDescribe:
		return m.handleDescribeKey(msg)
	case ModeYAML:
		return m.handleYAMLKey(msg)
	case ModeStatusFilter:
		return m.handleStatusFilterKey(msg)
	}
	return m, nil
}

// --- Browsing ---

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.sessions.CloseAll()
		return m, tea.Quit

	case key.Matches(msg, keys.TabNext):
		return m.switchTab(Tab((int(m.tab) + 1) % tabCount))

	case key.Matches(msg, keys.TabPrev):
		return m.switchTab(Tab((int(m.tab) + tabCount - 1) % tabCount))

	case key.Matches(msg, keys.Up):
		if n := m.listLen(); n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if n := m.listLen(); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return m, nil

	case key.Matches(msg, keys.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, keys.Bottom):
		if n := m.listLen(); n > 0 {
			m.cursor = n - 1
		}
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.cursor -= m.pageSize()
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.cursor += m.pageSize()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Filter):
		m.mode = ModeFilter
		m.filter.Focus()
		return m, nil

	case key.Matches(msg, keys.Escape):
		m.filter.SetValue("")
		m.statusFilter = map[string]bool{}
		m.pruneSelection()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Select):
		return m.toggleSelect()

	case key.Matches(msg, keys.SelectAll):
		return m.selectAll()

	case key.Matches(msg, keys.Sort):
		st := m.sortStates[m.tab.Kind()]
		st.Column = NextSort(m.tab.Kind(), st.Column)
		st.Ascending = true
		m.sortStates[m.tab.Kind()] = st
		return m, nil

	case key.Matches(msg, keys.SortRev):
		st := m.sortStates[m.tab.Kind()]
		if st.Column != SortNone {
			st.Ascending = !st.Ascending
			m.sortStates[m.tab.Kind()] = st
		}
		return m, nil

	case key.Matches(msg, keys.StatusFilter):
		if m.tab != TabPods {
			return m, nil
		}
		m.statusPick.build(m.store.StatusCounts(domain.KindPod), m.statusFilter)
		m.mode = ModeStatusFilter
		return m, nil

	case key.Matches(msg, keys.Logs):
		return m.openContainerAction(containerForLogs)

	case key.Matches(msg, keys.Shell):
		return m.openContainerAction(containerForShell)

	case key.Matches(msg, keys.Describe):
		return m.openDescribe()

	case key.Matches(msg, keys.Edit):
		return m.openEdit()

	case msg.String() == "y":
		return m.openYAML()

	case key.Matches(msg, keys.Delete):
		return m.requestDelete()

	case key.Matches(msg, keys.Scale):
		return m.openScaleInput()

	case key.Matches(msg, keys.ScaleUp):
		return m.requestScaleBy(1)

	case key.Matches(msg, keys.ScaleDn):
		return m.requestScaleBy(-1)

	case key.Matches(msg, keys.Restart):
		return m.requestRestart()

	case key.Matches(msg, keys.Enter), msg.String() == "x":
		return m.openSecret()

	case key.Matches(msg, keys.Contexts):
		return m.openContextPicker()

	case key.Matches(msg, keys.Namespaces):
		return m.openNamespacePicker()

	case msg.String() == "ctrl+r":
		return m, reconnectCmd(m.gateway)
	}
	return m, nil
}

func (m Model) toggleSelect() (tea.Model, tea.Cmd) {
	if m.tab != TabPods && m.tab != TabDeployments {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	k := domain.ResourceKey(r)
	if m.selected[k] {
		delete(m.selected, k)
	} else {
		m.selected[k] = true
	}
	return m, nil
}

func (m Model) selectAll() (tea.Model, tea.Cmd) {
	if m.tab != TabPods && m.tab != TabDeployments {
		return m, nil
	}
	items := m.visible()
	if len(m.selected) == len(items) {
		m.selected = map[string]bool{}
		return m, nil
	}
	for _, r := range items {
		m.selected[domain.ResourceKey(r)] = true
	}
	return m, nil
}

// targetNames resolves a bulk action: the marked rows when any exist,
// otherwise the row under the cursor.
func (m Model) targetNames() []string {
	if len(m.selected) > 0 {
		names := make([]string, 0, len(m.selected))
		for _, r := range m.visible() {
			if m.selected[domain.ResourceKey(r)] {
				names = append(names, r.GetName())
			}
		}
		return names
	}
	if r, ok := m.currentResource(); ok {
		return []string{r.GetName()}
	}
	return nil
}

// guardMutation enforces the namespace policy shared by every mutating
// action: read-only namespaces reject it outright, production namespaces
// escalate to the type-the-guard-word confirm.
func (m *Model) guardMutation(message, guard string, cb tea.Cmd) tea.Cmd {
	if config.IsReadonlyNamespace(m.namespace, m.cfg.ReadonlyNamespaces) {
		return m.setError(fmt.Sprintf("Namespace '%s' is read-only", m.namespace), false)
	}
	isProd := config.IsProdNamespace(m.namespace, m.cfg.ProdPatterns)
	m.confirm.activate(message, m.namespace, guard, isProd, cb)
	return nil
}

func (m Model) requestDelete() (tea.Model, tea.Cmd) {
	if m.tab != TabPods && m.tab != TabDeployments {
		return m, nil
	}
	names := m.targetNames()
	if len(names) == 0 {
		return m, nil
	}
	kind := m.tab.Kind()
	label := strings.TrimSuffix(m.tab.resourceLabel(), "s")
	if len(names) > 1 {
		label = m.tab.resourceLabel()
	}
	guard := names[0]
	if len(names) > 1 {
		guard = m.namespace
	}
	cb := deleteCmd(m.gateway, kind, m.namespace, names)
	cmd := m.guardMutation(deleteMessage(label, names), guard, cb)
	return m, cmd
}

func (m Model) requestRestart() (tea.Model, tea.Cmd) {
	if m.tab != TabDeployments {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	cb := restartCmd(m.gateway, m.namespace, r.GetName())
	cmd := m.guardMutation(restartMessage(r.GetName()), r.GetName(), cb)
	return m, cmd
}

func (m Model) requestScaleBy(delta int32) (tea.Model, tea.Cmd) {
	if m.tab != TabDeployments {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	dep, ok := r.(domain.DeploymentInfo)
	if !ok {
		return m, nil
	}
	replicas := dep.Replicas + delta
	if replicas < 0 || replicas > maxReplicas {
		return m, nil
	}
	cb := scaleCmd(m.gateway, m.namespace, dep.Name, replicas)
	cmd := m.guardMutation(scaleMessage(dep.Name, replicas), dep.Name, cb)
	return m, cmd
}

func (m Model) openScaleInput() (tea.Model, tea.Cmd) {
	if m.tab != TabDeployments {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	dep, ok := r.(domain.DeploymentInfo)
	if !ok {
		return m, nil
	}
	m.scaleTarget = dep.Name
	m.scaleInput.SetValue(strconv.Itoa(int(dep.Replicas)))
	m.scaleInput.Focus()
	m.mode = ModeScaleInput
	return m, nil
}

func (m Model) openSecret() (tea.Model, tea.Cmd) {
	if m.tab != TabSecrets {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	sec, ok := r.(domain.SecretInfo)
	if !ok {
		return m, nil
	}
	m.secret = newSecretView(sec)
	m.mode = ModeSecret
	return m, nil
}

func (m Model) openDescribe() (tea.Model, tea.Cmd) {
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	m.loading = true
	return m, describeCmd(m.runner, r.GetKind(), m.namespace, r.GetName())
}

func (m Model) openEdit() (tea.Model, tea.Cmd) {
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	if config.IsReadonlyNamespace(m.namespace, m.cfg.ReadonlyNamespaces) {
		return m, m.setError(fmt.Sprintf("Namespace '%s' is read-only", m.namespace), false)
	}
	cmd, err := m.runner.EditCmd(r.GetKind(), m.namespace, r.GetName())
	if err != nil {
		return m, m.setError(err.Error(), false)
	}
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editFinishedMsg{err: err}
	})
}

func (m Model) openYAML() (tea.Model, tea.Cmd) {
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	m.loading = true
	return m, yamlCmd(m.gateway, r.GetKind(), m.namespace, r.GetName())
}

// openContainerAction starts the log or shell flow for the pod under the
// cursor. Multi-container pods go through the selector overlay first.
func (m Model) openContainerAction(target containerTarget) (tea.Model, tea.Cmd) {
	if m.tab != TabPods {
		return m, nil
	}
	r, ok := m.currentResource()
	if !ok {
		return m, nil
	}
	pod, ok := r.(domain.PodInfo)
	if !ok {
		return m, nil
	}
	if len(pod.Containers) > 1 {
		names := make([]string, len(pod.Containers))
		for i, c := range pod.Containers {
			names[i] = c.Name
		}
		m.selector.open(pod.Name, names, target)
		return m, nil
	}
	container := ""
	if len(pod.Containers) == 1 {
		container = pod.Containers[0].Name
	}
	return m.startContainerAction(target, pod.Name, container)
}

func (m Model) startContainerAction(target containerTarget, pod, container string) (tea.Model, tea.Cmd) {
	switch target {
	case containerForLogs:
		m.sessions.OpenLog(m.namespace, pod, container, m.logOptions(), m.epoch)
		m.logView = logViewState{}
		m.searchInput.SetValue("")
		m.mode = ModeLog
	case containerForShell:
		m.shell.reset()
		m.sessions.OpenShell(m.namespace, pod, container, m.shellCols(), m.shellRows(), m.epoch)
		m.mode = ModeShell
	}
	return m, nil
}

func (m Model) logOptions() session.LogOptions {
	return session.LogOptions{Capacity: m.cfg.Logs.Capacity, Tail: m.cfg.Logs.Tail}
}

func (m Model) handleSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.selector.moveDown()
	case "k", "up":
		m.selector.moveUp()
	case "enter":
		target := m.selector.target
		pod := m.selector.pod
		container := m.selector.choice()
		m.selector.close()
		return m.startContainerAction(target, pod, container)
	case "esc", "q":
		m.selector.close()
	}
	return m, nil
}

// --- Filtering ---

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = ModeList
		m.filter.Blur()
		m.pruneSelection()
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.pruneSelection()
	m.clampCursor()
	return m, cmd
}

// --- Log view ---

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.sessions.CurrentLog()
	if l == nil {
		m.mode = ModeList
		return m, nil
	}
	page := m.contentHeight()

	switch msg.String() {
	case "q", "esc":
		m.sessions.CloseLog()
		m.logView = logViewState{}
		m.mode = ModeList
		return m, nil
	case "j", "down":
		l.ScrollDown(1, page)
	case "k", "up":
		if l.ScrollUp(1, page) && m.sessions.FetchLogHistory(l) {
			m.logView.loadingHistory = true
		}
	case "pgdown":
		l.ScrollDown(page, page)
	case "pgup":
		if l.ScrollUp(page, page) && m.sessions.FetchLogHistory(l) {
			m.logView.loadingHistory = true
		}
	case "g":
		l.JumpTop()
	case "G":
		l.JumpBottom()
	case "w":
		m.logView.wrap = !m.logView.wrap
	case "/":
		m.logView.searching = true
		m.logView.searchInput = ""
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.mode = ModeLogSearch
	case "n":
		if idx, ok := l.NextMatch(); ok {
			l.ShowLine(idx, page)
		}
	case "N":
		if idx, ok := l.PrevMatch(); ok {
			l.ShowLine(idx, page)
		}
	}
	return m, nil
}

func (m Model) handleLogSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.sessions.CurrentLog()
	if l == nil {
		m.mode = ModeList
		return m, nil
	}
	switch msg.String() {
	case "enter":
		query := m.searchInput.Value()
		m.searchInput.Blur()
		m.logView.searching = false
		l.SetQuery(query)
		if idx, ok := l.NextMatch(); ok {
			l.ShowLine(idx, m.contentHeight())
		}
		m.mode = ModeLog
		return m, nil
	case "esc":
		m.searchInput.Blur()
		m.logView.searching = false
		m.logView.searchInput = ""
		m.mode = ModeLog
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.logView.searchInput = m.searchInput.Value()
	return m, cmd
}

// --- Shell view ---

func (m Model) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sh := m.sessions.CurrentShell()
	if sh == nil {
		m.mode = ModeList
		return m, nil
	}

	// The one reserved local control sequence. Never forwarded.
	if msg.String() == "ctrl+q" {
		m.sessions.CloseShell()
		m.mode = ModeList
		return m, nil
	}

	ended := sh.Status() == session.StatusClosed || sh.Status() == session.StatusFailed
	if ended {
		switch msg.String() {
		case "q", "esc", "enter":
			m.sessions.CloseShell()
			m.mode = ModeList
		}
		return m, nil
	}

	if b := keyToBytes(msg); len(b) > 0 {
		sh.Send(b)
	}
	return m, nil
}

// --- Secret modal ---

func (m Model) handleSecretKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.secret.close()
		m.mode = ModeList
	case "j", "down":
		m.secret.moveDown()
	case "k", "up":
		m.secret.moveUp()
	case "r":
		m.secret.toggleReveal()
	case "c":
		if row, ok := m.secret.currentRow(); ok {
			return m, copyToClipboardCmd(row.key, row.value)
		}
	}
	return m, nil
}

// --- Context / namespace pickers ---

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.typing {
		switch msg.String() {
		case "esc":
			m.picker.stopTyping()
			return m, nil
		case "enter":
			return m.commitPicker()
		case "up":
			m.picker.moveUp()
			return m, nil
		case "down":
			m.picker.moveDown()
			return m, nil
		}
		var cmd tea.Cmd
		m.picker.input, cmd = m.picker.input.Update(msg)
		m.picker.updateFilter()
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		m.picker.close()
		m.mode = ModeList
	case "j", "down":
		m.picker.moveDown()
	case "k", "up":
		m.picker.moveUp()
	case "/":
		m.picker.startTyping()
	case "enter":
		return m.commitPicker()
	}
	return m, nil
}

func (m Model) commitPicker() (tea.Model, tea.Cmd) {
	choice := m.picker.choice()
	if choice == "" {
		return m, nil
	}

	switch m.mode {
	case ModeContextPick:
		m.picker.close()
		m.mode = ModeList
		if choice == m.gateway.GetContext() {
			return m, nil
		}
		m.loading = true
		return m, switchContextCmd(m.gateway, choice)

	case ModeNamespacePick:
		if !validNamespaceName(choice) {
			return m, m.setError(fmt.Sprintf("'%s' is not a valid namespace name", choice), false)
		}
		m.picker.close()
		m.mode = ModeList
		if choice == m.namespace {
			return m, nil
		}
		return m.switchNamespace(choice)
	}
	return m, nil
}

// --- Scale input ---

const maxReplicas = 1000

func (m Model) handleScaleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.scaleInput.Blur()
		m.mode = ModeList
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.scaleInput.Value())
		replicas, err := strconv.Atoi(raw)
		if err != nil || replicas < 0 || replicas > maxReplicas {
			return m, m.setError(fmt.Sprintf("Invalid replica count '%s' (0-%d)", raw, maxReplicas), false)
		}
		name := m.scaleTarget
		m.scaleInput.Blur()
		m.mode = ModeList
		cb := scaleCmd(m.gateway, m.namespace, name, int32(replicas))
		cmd := m.guardMutation(scaleMessage(name, int32(replicas)), name, cb)
		return m, cmd
	}
	var cmd tea.Cmd
	m.scaleInput, cmd = m.scaleInput.Update(msg)
	return m, cmd
}

// --- Describe / YAML panes ---

func (m Model) handleDescribeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.contentHeight()
	switch msg.String() {
	case "q", "esc":
		m.describe.close()
		m.mode = ModeList
	case "j", "down":
		m.describe.scrollDown(1, page)
	case "k", "up":
		m.describe.scrollUp(1)
	case "pgdown":
		m.describe.scrollDown(page, page)
	case "pgup":
		m.describe.scrollUp(page)
	case "g":
		m.describe.jumpTop()
	case "G":
		m.describe.jumpBottom(page)
	}
	return m, nil
}

func (m Model) handleYAMLKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.contentHeight()
	switch msg.String() {
	case "q", "esc":
		m.mode = ModeList
	case "j", "down":
		m.yaml.scrollDown(1, page)
	case "k", "up":
		m.yaml.scrollUp(1)
	case "pgdown":
		m.yaml.scrollDown(page, page)
	case "pgup":
		m.yaml.scrollUp(page)
	}
	return m, nil
}

// --- Status filter popup ---

func (m Model) handleStatusFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.statusPick.close()
		m.mode = ModeList
	case "j", "down":
		m.statusPick.moveDown()
	case "k", "up":
		m.statusPick.moveUp()
	case " ":
		m.statusPick.toggle()
	case "a":
		m.statusPick.toggleAll()
	case "enter":
		m.statusFilter = m.statusPick.commit()
		if m.statusFilter == nil {
			m.statusFilter = map[string]bool{}
		}
		m.statusPick.close()
		m.mode = ModeList
		m.pruneSelection()
		m.clampCursor()
	}
	return m, nil
}
