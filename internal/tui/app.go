package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crn4/kr/internal/cache"
	"github.com/crn4/kr/internal/config"
	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/kubectl"
	"github.com/crn4/kr/internal/session"
	"github.com/crn4/kr/internal/store"
	"github.com/crn4/kr/internal/watch"
)

// --- Tabs ---

type Tab int

const (
	TabPods Tab = iota
	TabDeployments
	TabSecrets
	TabEvents
)

const tabCount = 4

func (t Tab) Kind() domain.Kind {
	switch t {
	case TabPods:
		return domain.KindPod
	case TabDeployments:
		return domain.KindDeployment
	case TabSecrets:
		return domain.KindSecret
	case TabEvents:
		return domain.KindEvent
	default:
		return domain.KindPod
	}
}

func (t Tab) String() string {
	switch t {
	case TabPods:
		return "Pods"
	case TabDeployments:
		return "Deployments"
	case TabSecrets:
		return "Secrets"
	case TabEvents:
		return "Events"
	default:
		return ""
	}
}

// resourceLabel is the lowercase plural used in messages.
func (t Tab) resourceLabel() string {
	switch t {
	case TabPods:
		return "pods"
	case TabDeployments:
		return "deployments"
	case TabSecrets:
		return "secrets"
	case TabEvents:
		return "events"
	default:
		return "resources"
	}
}

// --- Modes ---

// Mode is the input mode of the event loop. Exactly one mode is active;
// the confirm prompt and the container selector are overlays that capture
// input before the mode handler runs.
type Mode int

const (
	ModeList Mode = iota
	ModeFilter
	ModeLog
	ModeLogSearch
	ModeSecret
	ModeContextPick
	ModeNamespacePick
	ModeScaleInput
	ModeShell
	ModeDescribe
	ModeYAML
	ModeStatusFilter
)

// --- Messages ---

type watchEventMsg struct{ event domain.WatchEvent }
type watchClosedMsg struct{}
type sessionEventMsg struct{ event session.Event }
type sessionClosedMsg struct{}

type scopeStartMsg struct{}

type actionDoneMsg struct{ message string }
type actionFailedMsg struct {
	message string
	err     error
}

type contextSwitchedMsg struct {
	name string
	err  error
}
type namespacesLoadedMsg struct {
	names []string
	err   error
}
type describeLoadedMsg struct {
	title   string
	content string
}
type yamlLoadedMsg struct {
	name    string
	kind    string
	content string
}
type editFinishedMsg struct{ err error }
type reconnectedMsg struct{ err error }
type stateFlushedMsg struct{ err error }

type clipboardCopiedMsg struct {
	key string
	err error
}
type clipboardClearMsg struct{ seq int }

type spinnerTickMsg struct{}

// --- Model ---

type Model struct {
	gateway  domain.KubeGateway
	store    *store.Store
	watches  *watch.Manager
	sessions *session.Manager
	runner   *kubectl.Runner
	cfg      *config.AppConfig
	state    *config.State

	mode Mode
	tab  Tab

	namespace string
	epoch     int64

	sub       *watch.Subscription
	subStates map[domain.Kind]domain.SubscriptionState

	cursor   int
	selected map[string]bool

	filter       textinput.Model
	filtering    bool
	statusFilter map[string]bool

	confirm    confirmState
	selector   containerSelector
	picker     pickerState
	statusPick statusFilterState
	secret     secretView
	describe   textViewState
	yaml       yamlViewState
	logView    logViewState
	shell      *shellScreen

	scaleInput  textinput.Model
	scaleTarget string

	searchInput textinput.Model

	sortStates map[domain.Kind]SortState

	toast    toast
	toastSeq int
	clipSeq  int

	nsCache *cache.TTL[[]string]

	disconnected bool
	loading      bool
	loadingSince time.Time

	width  int
	height int
}

func NewModel(gateway domain.KubeGateway, watches *watch.Manager, sessions *session.Manager, runner *kubectl.Runner, cfg *config.AppConfig, state *config.State) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if state == nil {
		state = config.NewState()
	}

	fi := textinput.New()
	fi.Placeholder = "filter..."
	fi.CharLimit = 64
	fi.Width = 30

	si := textinput.New()
	si.Placeholder = "replica count"
	si.CharLimit = 4
	si.Width = 20

	li := textinput.New()
	li.Placeholder = "search..."
	li.CharLimit = 64
	li.Width = 30

	namespace := state.LastNamespace(gateway.GetContext())
	if namespace == "" {
		namespace = gateway.DefaultNamespace()
	}
	if namespace == "" {
		namespace = "default"
	}

	return Model{
		gateway:      gateway,
		store:        store.New(),
		watches:      watches,
		sessions:     sessions,
		runner:       runner,
		cfg:          cfg,
		state:        state,
		tab:          TabPods,
		namespace:    namespace,
		subStates:    make(map[domain.Kind]domain.SubscriptionState),
		selected:     make(map[string]bool),
		filter:       fi,
		scaleInput:   si,
		searchInput:  li,
		confirm:      newConfirmState(),
		picker:       newPickerState(),
		shell:        newShellScreen(2000),
		sortStates:   make(map[domain.Kind]SortState),
		statusFilter: map[string]bool{},
		nsCache:      cache.New[[]string](cfg.Cache.NamespaceTTL),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenWatch(m.watches.Events()),
		listenSessions(m.sessions.Events()),
		func() tea.Msg { return scopeStartMsg{} },
	)
}

// --- Pumps ---

// listenWatch receives one watch event and re-arms itself from Update.
func listenWatch(ch <-chan domain.WatchEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg{event: ev}
	}
}

func listenSessions(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg{event: ev}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if sh := m.sessions.CurrentShell(); sh != nil && m.mode == ModeShell {
			sh.Resize(m.shellCols(), m.shellRows())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scopeStartMsg:
		m.subscribeActive()
		m.loading = true
		m.loadingSince = time.Now()
		return m, spinnerTick()

	case watchEventMsg:
		rearm := listenWatch(m.watches.Events())
		if msg.event.Epoch != m.epoch {
			return m, rearm
		}
		m.applyWatchEvent(msg.event)
		return m, rearm

	case watchClosedMsg:
		return m, nil

	case sessionEventMsg:
		rearm := listenSessions(m.sessions.Events())
		cmd := m.applySessionEvent(msg.event)
		return m, tea.Batch(rearm, cmd)

	case sessionClosedMsg:
		return m, nil

	case spinnerTickMsg:
		if !m.loading {
			return m, nil
		}
		return m, spinnerTick()

	case actionDoneMsg:
		return m, m.setSuccess(msg.message)

	case actionFailedMsg:
		return m, m.setError(msg.message, domain.IsForbidden(msg.err))

	case contextSwitchedMsg:
		return m.finishContextSwitch(msg)

	case namespacesLoadedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.nsCache.Put(msg.names)
		if m.mode != ModeNamespacePick {
			return m, nil
		}
		m.state.Merge(m.gateway.GetContext(), msg.names)
		m.picker.setItems(m.state.Known(m.gateway.GetContext()))
		return m, nil

	case describeLoadedMsg:
		m.describe.open(msg.title, msg.content)
		m.mode = ModeDescribe
		m.loading = false
		return m, nil

	case yamlLoadedMsg:
		m.yaml.resourceName = msg.name
		m.yaml.resourceType = msg.kind
		m.yaml.setContent(msg.content)
		m.mode = ModeYAML
		m.loading = false
		return m, nil

	case editFinishedMsg:
		if msg.err != nil {
			return m, m.setError(fmt.Sprintf("Edit failed: %v", msg.err), false)
		}
		return m, nil

	case reconnectedMsg:
		if msg.err != nil {
			return m, m.setError(fmt.Sprintf("Reconnect failed: %v", msg.err), false)
		}
		m.disconnected = false
		return m, m.restartScope()

	case stateFlushedMsg:
		if msg.err != nil {
			return m, m.setError(fmt.Sprintf("Saving state failed: %v", msg.err), false)
		}
		return m, nil

	case clipboardCopiedMsg:
		if msg.err != nil {
			return m, m.setError(fmt.Sprintf("Clipboard error: %v", msg.err), false)
		}
		m.clipSeq++
		seq := m.clipSeq
		clear := tea.Tick(15*time.Second, func(time.Time) tea.Msg {
			return clipboardClearMsg{seq: seq}
		})
		return m, tea.Batch(
			m.setSuccess(fmt.Sprintf("Copied '%s' to clipboard (clears in 15s)", msg.key)),
			clear,
		)

	case clipboardClearMsg:
		if msg.seq == m.clipSeq {
			return m, clearClipboardCmd()
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toast.seq && !m.toast.persistent {
			m.toast = toast{}
		}
		return m, nil
	}

	return m, nil
}

// --- Event application ---

// applyWatchEvent folds one already epoch-checked event into the store and
// the per-kind subscription states.
func (m *Model) applyWatchEvent(ev domain.WatchEvent) {
	if ev.Type == domain.WatchState {
		m.subStates[ev.Kind] = ev.State
		switch ev.State {
		case domain.StateForbidden:
			m.loading = false
			msg := fmt.Sprintf("Access denied: cannot list %s", strings.ToLower(string(ev.Kind))+"s")
			m.toastSeq++
			m.toast = toast{seq: m.toastSeq, message: msg, level: toastError, persistent: true}
		case domain.StateStreaming:
			m.disconnected = false
			if ev.Kind == m.tab.Kind() {
				m.loading = false
			}
		case domain.StateBackoff:
			m.disconnected = true
		}
		return
	}

	removed := m.store.Apply(ev)
	for _, key := range removed {
		delete(m.selected, key)
	}
	if ev.Type == domain.WatchSynced && ev.Kind == m.tab.Kind() {
		m.loading = false
	}
	if ev.Kind == m.tab.Kind() {
		m.pruneSelection()
		m.clampCursor()
	}
}

// applySessionEvent folds one log or shell event into the current session.
// Events from an older epoch or a superseded session are dropped.
func (m *Model) applySessionEvent(ev session.Event) tea.Cmd {
	if ev.SessionID() == 0 {
		return nil
	}

	switch e := ev.(type) {
	case session.LogLine:
		l := m.sessions.CurrentLog()
		if l == nil || l.ID != e.ID || e.Epoch != m.epoch {
			return nil
		}
		l.MarkActive()
		l.Push(e.Line)

	case session.LogEnded:
		l := m.sessions.CurrentLog()
		if l == nil || l.ID != e.ID || e.Epoch != m.epoch {
			return nil
		}
		l.MarkEnded(e.Err)
		if e.Err != nil {
			return m.setError(fmt.Sprintf("Log stream ended: %v", e.Err), domain.IsForbidden(e.Err))
		}

	case session.LogHistory:
		l := m.sessions.CurrentLog()
		if l == nil || l.ID != e.ID || e.Epoch != m.epoch {
			return nil
		}
		m.logView.loadingHistory = false
		if e.Err != nil {
			return m.setError(fmt.Sprintf("Loading history failed: %v", e.Err), false)
		}
		l.ApplyHistory(e.Generation, e.Lines)

	case session.ShellOutput:
		sh := m.sessions.CurrentShell()
		if sh == nil || sh.ID != e.ID || e.Epoch != m.epoch {
			return nil
		}
		sh.MarkActive()
		m.shell.feed(e.Data)

	case session.ShellExited:
		sh := m.sessions.CurrentShell()
		if sh == nil || sh.ID != e.ID || e.Epoch != m.epoch {
			return nil
		}
		sh.MarkExited(e.Err)
		if e.Err != nil {
			return m.setError(fmt.Sprintf("Shell exited: %v", e.Err), domain.IsForbidden(e.Err))
		}
	}
	return nil
}

// --- Toasts ---

func (m *Model) setSuccess(msg string) tea.Cmd {
	m.toastSeq++
	m.toast = toast{seq: m.toastSeq, message: msg, level: toastSuccess}
	return m.toast.scheduleExpiry()
}

func (m *Model) setError(msg string, persistent bool) tea.Cmd {
	m.toastSeq++
	m.toast = toast{seq: m.toastSeq, message: msg, level: toastError, persistent: persistent}
	m.loading = false
	return m.toast.scheduleExpiry()
}

// --- Visible rows ---

// visible returns the active tab's rows after filter, status filter and
// sort. The pod status filter applies only on the pod tab.
func (m Model) visible() []domain.Resource {
	kind := m.tab.Kind()
	statuses := map[string]bool(nil)
	if kind == domain.KindPod && len(m.statusFilter) > 0 {
		statuses = m.statusFilter
	}
	items := m.store.Query(kind, m.filter.Value(), statuses)
	return SortResources(kind, items, m.sortStates[kind])
}

func (m Model) listLen() int {
	return len(m.visible())
}

// currentResource returns the row under the cursor.
func (m Model) currentResource() (domain.Resource, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return nil, false
	}
	return items[m.cursor], true
}

// pruneSelection drops marks that are no longer visible, keeping the
// selection a subset of what the operator can see.
func (m *Model) pruneSelection() {
	if len(m.selected) == 0 {
		return
	}
	visible := make(map[string]bool, m.listLen())
	for _, r := range m.visible() {
		visible[domain.ResourceKey(r)] = true
	}
	for key := range m.selected {
		if !visible[key] {
			delete(m.selected, key)
		}
	}
}

func (m *Model) clampCursor() {
	maxIdx := m.listLen() - 1
	if m.cursor > maxIdx {
		m.cursor = maxIdx
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// --- Layout ---

func (m Model) contentHeight() int {
	// context bar(1) + tabs(1) + blank(1) + col header(1) + toast(1) + status bar(1)
	ch := m.height - 6
	if ch < 1 {
		return 1
	}
	return ch
}

func (m Model) pageSize() int {
	return m.contentHeight()
}

func (m Model) shellCols() uint16 {
	cols := m.width - 4
	if cols < 20 {
		cols = 20
	}
	return uint16(cols)
}

func (m Model) shellRows() uint16 {
	rows := m.contentHeight()
	if rows < 5 {
		rows = 5
	}
	return uint16(rows)
}

// --- Helpers ---

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return string(runes[:1])
	}
	return string(runes[:maxLen-1]) + "…"
}
