package store

import (
	"fmt"
	"testing"

	"github.com/crn4/kr/internal/domain"
)

func pod(name, ns, rv, status string) domain.PodInfo {
	return domain.PodInfo{Name: name, Namespace: ns, ResourceVersion: rv, Status: status}
}

func putEvent(p domain.PodInfo) domain.WatchEvent {
	return domain.WatchEvent{Kind: domain.KindPod, Type: domain.WatchModified, Item: p}
}

func TestApplyPutInsertsAndAdvancesCursor(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-1", "default", "5", "Running")))

	if s.Len(domain.KindPod) != 1 {
		t.Fatalf("Len = %d, want 1", s.Len(domain.KindPod))
	}
	if s.Cursor(domain.KindPod) != "5" {
		t.Errorf("Cursor = %q, want %q", s.Cursor(domain.KindPod), "5")
	}

	// A newer event for the same key replaces the record.
	s.Apply(putEvent(pod("web-1", "default", "7", "Terminating")))
	r, ok := s.Get(domain.KindPod, domain.Key(domain.KindPod, "default", "web-1"))
	if !ok {
		t.Fatal("record missing after replace")
	}
	if r.StatusText() != "Terminating" {
		t.Errorf("StatusText = %q, want %q", r.StatusText(), "Terminating")
	}
	if s.Cursor(domain.KindPod) != "7" {
		t.Errorf("Cursor = %q, want %q", s.Cursor(domain.KindPod), "7")
	}
}

func TestApplyOlderEventDiscarded(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-1", "default", "9", "Running")))
	s.Apply(putEvent(pod("web-1", "default", "4", "Pending")))

	r, _ := s.Get(domain.KindPod, domain.Key(domain.KindPod, "default", "web-1"))
	if r.StatusText() != "Running" {
		t.Errorf("stale event overwrote record, StatusText = %q", r.StatusText())
	}
	if s.Cursor(domain.KindPod) != "9" {
		t.Errorf("cursor regressed to %q", s.Cursor(domain.KindPod))
	}
}

func TestApplySameEventTwiceIsNoOp(t *testing.T) {
	s := New()
	ev := putEvent(pod("web-1", "default", "5", "Running"))
	s.Apply(ev)
	s.Apply(ev)

	if s.Len(domain.KindPod) != 1 {
		t.Errorf("Len = %d, want 1", s.Len(domain.KindPod))
	}
	if s.Cursor(domain.KindPod) != "5" {
		t.Errorf("Cursor = %q, want %q", s.Cursor(domain.KindPod), "5")
	}

	del := domain.WatchEvent{Kind: domain.KindPod, Type: domain.WatchDeleted, Item: pod("web-1", "default", "6", "Running")}
	if removed := s.Apply(del); len(removed) != 1 {
		t.Fatalf("first delete removed %v, want 1 key", removed)
	}
	if removed := s.Apply(del); len(removed) != 0 {
		t.Errorf("second delete removed %v, want none", removed)
	}
}

func TestApplyDeleteReportsRemovedKey(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("pod-a", "default", "5", "Running")))

	removed := s.Apply(domain.WatchEvent{
		Kind: domain.KindPod,
		Type: domain.WatchDeleted,
		Item: pod("pod-a", "default", "6", "Running"),
	})

	want := domain.Key(domain.KindPod, "default", "pod-a")
	if len(removed) != 1 || removed[0] != want {
		t.Fatalf("removed = %v, want [%s]", removed, want)
	}
	if s.Len(domain.KindPod) != 0 {
		t.Errorf("Len = %d, want 0", s.Len(domain.KindPod))
	}
}

func TestApplySyncedReplacesAndReportsVanished(t *testing.T) {
	s := New()
	s.Apply(domain.WatchEvent{
		Kind:    domain.KindPod,
		Type:    domain.WatchSynced,
		Items:   []domain.Resource{pod("old-1", "default", "3", "Running"), pod("keep", "default", "4", "Running")},
		Version: "10",
	})

	removed := s.Apply(domain.WatchEvent{
		Kind:    domain.KindPod,
		Type:    domain.WatchSynced,
		Items:   []domain.Resource{pod("keep", "default", "4", "Running"), pod("new-1", "default", "11", "Pending")},
		Version: "12",
	})

	if len(removed) != 1 || removed[0] != domain.Key(domain.KindPod, "default", "old-1") {
		t.Fatalf("removed = %v, want the vanished key", removed)
	}
	if s.Len(domain.KindPod) != 2 {
		t.Errorf("Len = %d, want 2", s.Len(domain.KindPod))
	}
	if s.Cursor(domain.KindPod) != "12" {
		t.Errorf("Cursor = %q, want %q", s.Cursor(domain.KindPod), "12")
	}
}

func TestCursorNonDecreasingAcrossSequences(t *testing.T) {
	s := New()
	versions := []string{"2", "5", "3", "9", "9", "1"}
	last := ""
	for i, rv := range versions {
		s.Apply(putEvent(pod(fmt.Sprintf("p-%d", i), "default", rv, "Running")))
		cur := s.Cursor(domain.KindPod)
		if last != "" && newerVersion(last, cur) {
			t.Fatalf("cursor regressed from %q to %q after rv %q", last, cur, rv)
		}
		last = cur
	}
	if last != "9" {
		t.Errorf("final cursor = %q, want %q", last, "9")
	}
}

func TestQueryOrderedByNamespaceThenName(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("zeta", "beta-ns", "1", "Running")))
	s.Apply(putEvent(pod("alpha", "beta-ns", "2", "Running")))
	s.Apply(putEvent(pod("mid", "alpha-ns", "3", "Running")))

	got := s.Query(domain.KindPod, "", nil)
	want := []string{"alpha-ns/mid", "beta-ns/alpha", "beta-ns/zeta"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		id := r.GetNamespace() + "/" + r.GetName()
		if id != want[i] {
			t.Errorf("Query()[%d] = %q, want %q", i, id, want[i])
		}
	}
}

func TestQueryFilterText(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-frontend", "default", "1", "Running")))
	s.Apply(putEvent(pod("api-backend", "default", "2", "Running")))

	got := s.Query(domain.KindPod, "FRONT", nil)
	if len(got) != 1 || got[0].GetName() != "web-frontend" {
		t.Errorf("Query(FRONT) = %v, want only web-frontend", got)
	}
	if n := len(s.Query(domain.KindPod, "nomatch", nil)); n != 0 {
		t.Errorf("Query(nomatch) returned %d records", n)
	}
}

func TestQueryStatusFilter(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("a", "default", "1", "Running")))
	s.Apply(putEvent(pod("b", "default", "2", "CrashLoopBackOff")))
	s.Apply(putEvent(pod("c", "default", "3", "Running")))

	got := s.Query(domain.KindPod, "", map[string]bool{"Running": true})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.StatusText() != "Running" {
			t.Errorf("unexpected status %q", r.StatusText())
		}
	}

	// Empty set means no filtering.
	if n := len(s.Query(domain.KindPod, "", map[string]bool{})); n != 3 {
		t.Errorf("empty status set filtered rows, got %d", n)
	}
}

func TestStatusCounts(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("a", "default", "1", "Running")))
	s.Apply(putEvent(pod("b", "default", "2", "Running")))
	s.Apply(putEvent(pod("c", "default", "3", "Pending")))

	counts := s.StatusCounts(domain.KindPod)
	if counts["Running"] != 2 || counts["Pending"] != 1 {
		t.Errorf("StatusCounts = %v", counts)
	}
}

func TestNonNumericVersionAccepted(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-1", "default", "5", "Running")))
	// Opaque tokens cannot be ordered, so they must apply.
	s.Apply(putEvent(pod("web-1", "default", "abc123", "Pending")))

	r, _ := s.Get(domain.KindPod, domain.Key(domain.KindPod, "default", "web-1"))
	if r.StatusText() != "Pending" {
		t.Errorf("opaque version was discarded, StatusText = %q", r.StatusText())
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-1", "default", "5", "Running")))
	s.Clear()
	if s.Len(domain.KindPod) != 0 {
		t.Errorf("Len = %d after Clear, want 0", s.Len(domain.KindPod))
	}
	if s.Cursor(domain.KindPod) != "" {
		t.Errorf("Cursor = %q after Clear, want empty", s.Cursor(domain.KindPod))
	}
}

func TestKindsAreIndependent(t *testing.T) {
	s := New()
	s.Apply(putEvent(pod("web-1", "default", "5", "Running")))
	s.Apply(domain.WatchEvent{
		Kind: domain.KindDeployment,
		Type: domain.WatchModified,
		Item: domain.DeploymentInfo{Name: "api", Namespace: "default", ResourceVersion: "2", Ready: "1/1"},
	})

	if s.Cursor(domain.KindPod) != "5" {
		t.Errorf("pod cursor = %q, want 5", s.Cursor(domain.KindPod))
	}
	if s.Cursor(domain.KindDeployment) != "2" {
		t.Errorf("deployment cursor = %q, want 2", s.Cursor(domain.KindDeployment))
	}
	if s.Len(domain.KindPod) != 1 || s.Len(domain.KindDeployment) != 1 {
		t.Error("kind maps are not independent")
	}
}
