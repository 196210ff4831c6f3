package session

import (
	"context"
	"io"

	"github.com/crn4/kr/internal/domain"
)

// Shell is one interactive exec session. Keystrokes are forwarded to the
// remote process byte for byte; output comes back through the manager's
// event channel. The struct is owned by the consumer's event loop, same as
// Log.
type Shell struct {
	ID        int64
	Epoch     int64
	Namespace string
	Pod       string
	Container string

	status Status
	closed bool

	stdin  *inputStream
	sizes  *sizeQueue
	cancel context.CancelFunc
	done   chan struct{}
}

func newShell(id, epoch int64, namespace, pod, container string, cols, rows uint16, cancel context.CancelFunc) *Shell {
	sh := &Shell{
		ID:        id,
		Epoch:     epoch,
		Namespace: namespace,
		Pod:       pod,
		Container: container,
		status:    StatusStarting,
		stdin:     newInputStream(),
		sizes:     newSizeQueue(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	sh.sizes.put(domain.ShellSize{Width: cols, Height: rows})
	return sh
}

func (s *Shell) Status() Status { return s.status }

// MarkActive is called by the event loop on the first byte of output.
func (s *Shell) MarkActive() {
	if s.status == StatusStarting {
		s.status = StatusActive
	}
}

// MarkExited records the exec result. A nil error or a locally cancelled
// stream is a clean close; anything else is a failure. Neither is
// reconnected automatically.
func (s *Shell) MarkExited(err error) {
	if err != nil && !s.closed {
		s.status = StatusFailed
		return
	}
	s.status = StatusClosed
}

// Done closes when the exec goroutine has returned.
func (s *Shell) Done() <-chan struct{} { return s.done }

// Send forwards raw bytes to the remote stdin. Bytes sent after the
// session ended are dropped.
func (s *Shell) Send(p []byte) {
	if s.closed || s.status == StatusClosed || s.status == StatusFailed {
		return
	}
	s.stdin.put(p)
}

// Resize propagates a new terminal size to the remote PTY. Only the most
// recent pending size is kept.
func (s *Shell) Resize(cols, rows uint16) {
	if s.closed {
		return
	}
	s.sizes.put(domain.ShellSize{Width: cols, Height: rows})
}

// Close tears the session down locally: stdin reports EOF, the size queue
// drains and the exec context is cancelled.
func (s *Shell) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.stdin.close()
	s.sizes.close()
	if s.cancel != nil {
		s.cancel()
	}
	if s.status == StatusStarting || s.status == StatusActive {
		s.status = StatusClosed
	}
}

// inputStream adapts an event loop's Send calls into the io.Reader the
// exec transport wants. Writes never block the loop; the channel buffer is
// generous compared to typing speed.
type inputStream struct {
	ch   chan []byte
	rest []byte
}

func newInputStream() *inputStream {
	return &inputStream{ch: make(chan []byte, 1024)}
}

func (i *inputStream) put(p []byte) {
	b := make([]byte, len(p))
	copy(b, p)
	select {
	case i.ch <- b:
	default:
	}
}

func (i *inputStream) close() { close(i.ch) }

func (i *inputStream) Read(p []byte) (int, error) {
	if len(i.rest) == 0 {
		b, ok := <-i.ch
		if !ok {
			return 0, io.EOF
		}
		i.rest = b
	}
	n := copy(p, i.rest)
	i.rest = i.rest[n:]
	return n, nil
}

// sizeQueue carries terminal resizes to the exec transport. Next blocks
// until a size is pending and returns nil once the queue is closed, which
// stops the transport's resize loop.
type sizeQueue struct {
	ch chan domain.ShellSize
}

func newSizeQueue() *sizeQueue {
	return &sizeQueue{ch: make(chan domain.ShellSize, 16)}
}

func (q *sizeQueue) put(size domain.ShellSize) {
	for {
		select {
		case q.ch <- size:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

func (q *sizeQueue) close() { close(q.ch) }

func (q *sizeQueue) Next() *domain.ShellSize {
	size, ok := <-q.ch
	if !ok {
		return nil
	}
	return &size
}
