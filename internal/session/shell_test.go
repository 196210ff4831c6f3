package session

import (
	"context"
	"io"
	"testing"

	"github.com/crn4/kr/internal/domain"
)

func TestInputStreamReadsChunks(t *testing.T) {
	in := newInputStream()
	in.put([]byte("abc"))

	buf := make([]byte, 2)
	n, err := in.Read(buf)
	if err != nil || n != 2 || string(buf[:n]) != "ab" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}
	n, err = in.Read(buf)
	if err != nil || n != 1 || string(buf[:n]) != "c" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}
}

func TestInputStreamEOFAfterClose(t *testing.T) {
	in := newInputStream()
	in.put([]byte("x"))
	in.close()

	buf := make([]byte, 8)
	n, err := in.Read(buf)
	if err != nil || string(buf[:n]) != "x" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}
	if _, err := in.Read(buf); err != io.EOF {
		t.Fatalf("Read() after close = %v, want io.EOF", err)
	}
}

func TestInputStreamCopiesCallerBuffer(t *testing.T) {
	in := newInputStream()
	b := []byte("ls")
	in.put(b)
	b[0] = 'X'

	buf := make([]byte, 8)
	n, _ := in.Read(buf)
	if string(buf[:n]) != "ls" {
		t.Errorf("Read() = %q, want %q", buf[:n], "ls")
	}
}

func TestSizeQueueDeliversAndCloses(t *testing.T) {
	q := newSizeQueue()
	q.put(domain.ShellSize{Width: 80, Height: 24})
	q.put(domain.ShellSize{Width: 100, Height: 30})

	if s := q.Next(); s == nil || s.Width != 80 {
		t.Fatalf("Next() = %v, want width 80", s)
	}
	if s := q.Next(); s == nil || s.Width != 100 {
		t.Fatalf("Next() = %v, want width 100", s)
	}
	q.close()
	if s := q.Next(); s != nil {
		t.Fatalf("Next() after close = %v, want nil", s)
	}
}

func TestSizeQueueDropsOldestWhenFull(t *testing.T) {
	q := newSizeQueue()
	for i := 0; i < 20; i++ {
		q.put(domain.ShellSize{Width: uint16(i), Height: 1})
	}
	q.close()

	var last uint16
	for {
		s := q.Next()
		if s == nil {
			break
		}
		last = s.Width
	}
	if last != 19 {
		t.Errorf("last queued width = %d, want 19", last)
	}
}

func TestShellGuardsAfterClose(t *testing.T) {
	sh := newShell(1, 0, "default", "api-0", "app", 80, 24, func() {})
	sh.Close()

	// Neither may panic on the closed channels.
	sh.Send([]byte("x"))
	sh.Resize(100, 30)
	sh.Close()

	if sh.Status() != StatusClosed {
		t.Errorf("Status() = %v, want closed", sh.Status())
	}
}

func TestShellStatusTransitions(t *testing.T) {
	sh := newShell(1, 0, "default", "api-0", "app", 80, 24, func() {})
	if sh.Status() != StatusStarting {
		t.Fatalf("Status() = %v, want starting", sh.Status())
	}
	sh.MarkActive()
	if sh.Status() != StatusActive {
		t.Fatalf("Status() = %v, want active", sh.Status())
	}

	sh.MarkExited(nil)
	if sh.Status() != StatusClosed {
		t.Errorf("Status() = %v, want closed after clean exit", sh.Status())
	}

	failed := newShell(2, 0, "default", "api-0", "app", 80, 24, func() {})
	failed.MarkExited(context.DeadlineExceeded)
	if failed.Status() != StatusFailed {
		t.Errorf("Status() = %v, want failed", failed.Status())
	}

	// A locally closed session reports closed even when the transport
	// surfaces the cancellation as an error.
	local := newShell(3, 0, "default", "api-0", "app", 80, 24, func() {})
	local.Close()
	local.MarkExited(context.Canceled)
	if local.Status() != StatusClosed {
		t.Errorf("Status() = %v, want closed after local close", local.Status())
	}
}
