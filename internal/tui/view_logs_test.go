package tui

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/session"
)

func newTestLog(t *testing.T, lines ...string) *session.Log {
	t.Helper()
	mgr := session.NewManager(context.Background(), &domain.MockGateway{})
	t.Cleanup(mgr.CloseAll)
	l := mgr.OpenLog("default", "api", "app", session.LogOptions{Capacity: 100, Tail: 10}, 0)
	for _, line := range lines {
		l.Push(line)
	}
	return l
}

func TestRenderLogs_TitleReflectsFollowState(t *testing.T) {
	l := newTestLog(t, "one", "two")

	out := renderLogs(l, logViewState{}, 80, 10)
	if !strings.Contains(out, "[2 lines]") || !strings.Contains(out, "[FOLLOWING]") {
		t.Errorf("title missing follow state:\n%s", out)
	}

	l.ScrollUp(1, 10)
	out = renderLogs(l, logViewState{}, 80, 10)
	if !strings.Contains(out, "[PAUSED]") {
		t.Errorf("title should show PAUSED after scrolling up:\n%s", out)
	}
}

func TestRenderLogs_ShowsTailInFollowMode(t *testing.T) {
	var lines []string
	for _, s := range []string{"l0", "l1", "l2", "l3", "l4", "l5"} {
		lines = append(lines, s)
	}
	l := newTestLog(t, lines...)

	out := renderLogs(l, logViewState{}, 80, 3)
	if strings.Contains(out, "l0") {
		t.Error("follow mode should not show the oldest lines")
	}
	if !strings.Contains(out, "l5") {
		t.Error("follow mode should show the newest line")
	}
}

func TestRenderLogs_TruncatesWithoutWrap(t *testing.T) {
	long := strings.Repeat("x", 200)
	l := newTestLog(t, long)

	out := renderLogs(l, logViewState{}, 40, 5)
	if !strings.Contains(out, "…") {
		t.Error("long lines should be truncated with an ellipsis")
	}
	// Two header-stripped content rows with wrap on.
	out = renderLogs(l, logViewState{wrap: true}, 40, 5)
	if strings.Contains(out, "…") {
		t.Error("wrap mode must not truncate")
	}
	if got := strings.Count(out, "\n"); got < 3 {
		t.Errorf("wrapped line should span several rows, got %d", got)
	}
}

func TestRenderLogs_TruncationKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("héllo wörld ", 20)
	l := newTestLog(t, long)

	out := renderLogs(l, logViewState{}, 40, 5)
	if !utf8.ValidString(out) {
		t.Error("truncated output contains a split rune")
	}
	out = renderLogs(l, logViewState{wrap: true}, 40, 5)
	if !utf8.ValidString(out) {
		t.Error("wrapped output contains a split rune")
	}
}

func TestRenderLogs_SearchLabelShowsPosition(t *testing.T) {
	l := newTestLog(t, "error one", "fine", "error two")
	l.SetQuery("error")
	l.NextMatch()

	out := renderLogs(l, logViewState{}, 80, 10)
	if !strings.Contains(out, "/error (1/2)") {
		t.Errorf("search label missing match position:\n%s", out)
	}
}

func TestRenderLogs_PendingSearchShowsTypedQuery(t *testing.T) {
	l := newTestLog(t, "a")
	out := renderLogs(l, logViewState{searching: true, searchInput: "err"}, 80, 10)
	if !strings.Contains(out, "/err_") {
		t.Errorf("pending search input not shown:\n%s", out)
	}
}

func TestHighlightMatches_AllOccurrences(t *testing.T) {
	out := highlightMatches("Error then error again", "error")
	if !strings.Contains(out, "Error") || !strings.Contains(out, "error") {
		t.Errorf("case of the original text must be preserved: %q", out)
	}
}

func TestLogHelpKeys_WrapLabelToggles(t *testing.T) {
	if !strings.Contains(logHelpKeys(false), "w:Wrap") {
		t.Error("wrap-off help should offer Wrap")
	}
	if !strings.Contains(logHelpKeys(true), "w:Nowrap") {
		t.Error("wrap-on help should offer Nowrap")
	}
}
