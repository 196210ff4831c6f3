package k8s

import (
	"testing"

	"github.com/crn4/kr/internal/domain"
)

type fakeSizes struct {
	sizes []domain.ShellSize
	i     int
}

func (f *fakeSizes) Next() *domain.ShellSize {
	if f.i >= len(f.sizes) {
		return nil
	}
	s := f.sizes[f.i]
	f.i++
	return &s
}

func TestRemoteSizeQueue_MapsSizes(t *testing.T) {
	q := &remoteSizeQueue{inner: &fakeSizes{sizes: []domain.ShellSize{
		{Width: 80, Height: 24},
		{Width: 120, Height: 40},
	}}}

	first := q.Next()
	if first == nil || first.Width != 80 || first.Height != 24 {
		t.Fatalf("Next() = %+v, want 80x24", first)
	}
	second := q.Next()
	if second == nil || second.Width != 120 || second.Height != 40 {
		t.Fatalf("Next() = %+v, want 120x40", second)
	}
	if q.Next() != nil {
		t.Error("Next() should return nil once the session queue is drained")
	}
}
