package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crn4/kr/internal/domain"
)

// subscribeActive points the single live subscription at the active tab's
// kind in the current namespace. The previous subscription is stopped
// first; its leftovers are ignored either by epoch (scope changes) or
// harmlessly re-applied (tab switches within the same scope).
func (m *Model) subscribeActive() {
	if m.sub != nil {
		m.sub.Stop()
	}
	m.subStates[m.tab.Kind()] = domain.StateConnecting
	m.sub = m.watches.Subscribe(context.Background(), m.tab.Kind(), m.namespace, m.epoch)
}

// switchTab moves to another resource tab. The store keeps the old kind's
// records so coming back renders instantly; the fresh subscription
// reconciles them with a Synced replace.
func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}
	m.tab = tab
	m.cursor = 0
	m.selected = map[string]bool{}
	m.filter.SetValue("")
	m.subscribeActive()
	if m.store.Len(tab.Kind()) == 0 {
		m.loading = true
		return m, spinnerTick()
	}
	return m, nil
}

// switchNamespace re-scopes everything to another namespace: a new epoch,
// all sessions closed, the store cleared, the MRU history updated and
// flushed. Late events from the old scope carry the old epoch and are
// dropped in Update.
func (m Model) switchNamespace(namespace string) (tea.Model, tea.Cmd) {
	m.epoch++
	m.sessions.CloseAll()
	m.store.Clear()
	m.selected = map[string]bool{}
	m.statusFilter = map[string]bool{}
	m.cursor = 0
	m.namespace = namespace
	m.subStates = make(map[domain.Kind]domain.SubscriptionState)
	m.toast = toast{}

	m.state.Touch(m.gateway.GetContext(), namespace)
	m.subscribeActive()
	m.loading = true
	return m, tea.Batch(spinnerTick(), flushStateCmd(m.state))
}

// finishContextSwitch completes an in-app context change once the gateway
// has rebuilt its connection. It re-scopes exactly like a namespace switch
// and additionally repoints the kubectl runner and picks the new context's
// most recently used namespace.
func (m Model) finishContextSwitch(msg contextSwitchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loading = false
		return m, m.setError(fmt.Sprintf("Switching context failed: %v", msg.err), false)
	}

	m.runner.SetContext(msg.name)
	m.nsCache.Invalidate()

	namespace := m.state.LastNamespace(msg.name)
	if namespace == "" {
		namespace = m.gateway.DefaultNamespace()
	}
	if namespace == "" {
		namespace = "default"
	}

	model, cmd := m.switchNamespace(namespace)
	next := model.(Model)
	return next, tea.Batch(cmd, next.setSuccess(fmt.Sprintf("Switched to context '%s'", msg.name)))
}

// restartScope rebuilds the current scope from scratch after a manual
// reconnect: new epoch, cleared store, fresh subscription.
func (m *Model) restartScope() tea.Cmd {
	m.epoch++
	m.store.Clear()
	m.selected = map[string]bool{}
	m.subStates = make(map[domain.Kind]domain.SubscriptionState)
	m.subscribeActive()
	m.loading = true
	return spinnerTick()
}

func (m Model) openContextPicker() (tea.Model, tea.Cmd) {
	names, err := m.gateway.ListContexts()
	if err != nil {
		return m, m.setError(fmt.Sprintf("Listing contexts failed: %v", err), false)
	}
	m.picker.open("Context", names, m.gateway.GetContext(), false)
	m.mode = ModeContextPick
	return m, nil
}

// openNamespacePicker lists the MRU history immediately and merges the
// cluster's namespaces in, from the TTL cache when fresh, otherwise via an
// async list.
func (m Model) openNamespacePicker() (tea.Model, tea.Cmd) {
	ctx := m.gateway.GetContext()
	items := m.state.Known(ctx)
	if len(items) == 0 {
		items = []string{m.namespace}
	}
	m.picker.open("Namespace", items, m.namespace, true)
	m.mode = ModeNamespacePick

	if cached, ok := m.nsCache.Get(); ok {
		m.state.Merge(ctx, cached)
		m.picker.setItems(m.state.Known(ctx))
		return m, nil
	}
	return m, namespacesCmd(m.gateway)
}
