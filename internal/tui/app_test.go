package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crn4/kr/internal/config"
	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/kubectl"
	"github.com/crn4/kr/internal/session"
	"github.com/crn4/kr/internal/watch"
)

func newTestModel(t *testing.T) (Model, *domain.MockGateway) {
	t.Helper()
	gw := &domain.MockGateway{
		ContextVal:   "test-ctx",
		NamespaceVal: "default",
		Contexts:     []string{"test-ctx", "other-ctx"},
	}
	watches := watch.NewManager(gw, time.Millisecond, 2*time.Millisecond)
	sessions := session.NewManager(context.Background(), gw)
	runner := kubectl.NewRunner("test-ctx")
	m := NewModel(gw, watches, sessions, runner, config.DefaultConfig(), config.NewState())
	m.width = 120
	m.height = 40
	return m, gw
}

func testPod(name, rv string) domain.PodInfo {
	return domain.PodInfo{
		Name:            name,
		Namespace:       "default",
		Status:          "Running",
		Ready:           "1/1",
		Containers:      []domain.ContainerInfo{{Name: "app"}},
		ResourceVersion: rv,
	}
}

// seedPods replaces the pod set through a synced watch event, the way the
// initial list arrives.
func seedPods(t *testing.T, m Model, version string, pods ...domain.PodInfo) Model {
	t.Helper()
	items := make([]domain.Resource, len(pods))
	for i := range pods {
		items[i] = pods[i]
	}
	updated, _ := m.Update(watchEventMsg{event: domain.WatchEvent{
		Kind:    domain.KindPod,
		Type:    domain.WatchSynced,
		Items:   items,
		Version: version,
	}})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func containsStr(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestUpdate_WindowSize(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next := updated.(Model)
	if next.width != 80 || next.height != 24 {
		t.Errorf("size = %dx%d, want 80x24", next.width, next.height)
	}
}

func TestUpdate_SyncedSeedsStore(t *testing.T) {
	m, _ := newTestModel(t)
	m = seedPods(t, m, "3", testPod("api", "1"), testPod("web", "2"))

	if got := m.store.Len(domain.KindPod); got != 2 {
		t.Errorf("store len = %d, want 2", got)
	}
	if got := m.store.Cursor(domain.KindPod); got != "3" {
		t.Errorf("cursor = %q, want 3", got)
	}
}

func TestUpdate_PutThenDeletePrunesSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m = seedPods(t, m, "1", testPod("pod-a", "1"))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	if len(m.selected) != 1 {
		t.Fatalf("selected = %d, want 1", len(m.selected))
	}

	updated, _ = m.Update(watchEventMsg{event: domain.WatchEvent{
		Kind: domain.KindPod,
		Type: domain.WatchDeleted,
		Item: testPod("pod-a", "2"),
	}})
	m = updated.(Model)

	if got := m.store.Len(domain.KindPod); got != 0 {
		t.Errorf("store len = %d, want 0", got)
	}
	if len(m.selected) != 0 {
		t.Errorf("selection not pruned: %v", m.selected)
	}
}

func TestUpdate_StaleEpochDropped(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(watchEventMsg{event: domain.WatchEvent{
		Epoch: 7, // model is at epoch 0
		Kind:  domain.KindPod,
		Type:  domain.WatchSynced,
		Items: []domain.Resource{testPod("stale", "1")},
	}})
	m = updated.(Model)

	if got := m.store.Len(domain.KindPod); got != 0 {
		t.Errorf("stale-epoch event applied, store len = %d", got)
	}
}

func TestUpdate_ForbiddenShowsBanner(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(watchEventMsg{event: domain.WatchEvent{
		Kind:  domain.KindPod,
		Type:  domain.WatchState,
		State: domain.StateForbidden,
	}})
	m = updated.(Model)

	if m.subStates[domain.KindPod] != domain.StateForbidden {
		t.Fatalf("subscription state = %v, want Forbidden", m.subStates[domain.KindPod])
	}
	if !m.toast.persistent {
		t.Error("permission toast should be persistent")
	}
	if view := m.View(); !containsStr(view, "Access denied") {
		t.Error("view should show the permission banner")
	}
}

func TestUpdate_ToastExpiryIgnoresStaleSeq(t *testing.T) {
	m, _ := newTestModel(t)
	mp := &m
	mp.setSuccess("first")
	staleSeq := m.toast.seq
	mp.setSuccess("second")

	updated, _ := m.Update(toastExpiredMsg{seq: staleSeq})
	m = updated.(Model)
	if m.toast.message != "second" {
		t.Errorf("stale expiry cleared the newer toast: %q", m.toast.message)
	}

	updated, _ = m.Update(toastExpiredMsg{seq: m.toast.seq})
	m = updated.(Model)
	if m.toast.isActive() {
		t.Error("matching expiry should clear the toast")
	}
}

func TestUpdate_DescribeLoadedOpensPane(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(describeLoadedMsg{title: "Describe pod/api", content: "Name: api"})
	m = updated.(Model)

	if m.mode != ModeDescribe {
		t.Fatalf("mode = %v, want ModeDescribe", m.mode)
	}
	if view := m.View(); !containsStr(view, "Describe pod/api") {
		t.Error("describe title missing from view")
	}
}

func TestUpdate_YAMLLoadedOpensPane(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(yamlLoadedMsg{name: "api", kind: "pod", content: "kind: Pod"})
	m = updated.(Model)

	if m.mode != ModeYAML {
		t.Fatalf("mode = %v, want ModeYAML", m.mode)
	}
	if view := m.View(); !containsStr(view, "kind: Pod") {
		t.Error("yaml content missing from view")
	}
}

func TestUpdate_NamespacesLoadedFillsCache(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(namespacesLoadedMsg{names: []string{"default", "dev"}})
	m = updated.(Model)

	cached, ok := m.nsCache.Get()
	if !ok || len(cached) != 2 {
		t.Errorf("cache = %v, %v", cached, ok)
	}
}

func TestUpdate_SessionEventForSupersededSessionDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = seedPods(t, m, "1", testPod("api", "1"))

	updated, _ := m.Update(keyRunes("l"))
	m = updated.(Model)
	l := m.sessions.CurrentLog()
	if l == nil {
		t.Fatal("log session not opened")
	}

	updated, _ = m.Update(sessionEventMsg{event: session.LogLine{ID: l.ID + 99, Epoch: 0, Line: "ghost"}})
	m = updated.(Model)
	if l.Len() != 0 {
		t.Errorf("line from another session was applied, len = %d", l.Len())
	}

	updated, _ = m.Update(sessionEventMsg{event: session.LogLine{ID: l.ID, Epoch: 0, Line: "real"}})
	m = updated.(Model)
	if l.Len() != 1 {
		t.Errorf("line for current session dropped, len = %d", l.Len())
	}
}
