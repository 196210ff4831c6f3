package session

import (
	"bufio"
	"context"
	"strings"

	"github.com/crn4/kr/internal/domain"
)

// Status is the lifecycle of a log or shell session.
type Status int

const (
	StatusStarting Status = iota
	StatusActive
	StatusClosed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusActive:
		return "active"
	case StatusClosed:
		return "closed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is an async session notification. Events carry the session ID and
// the scope epoch the session was opened under so the consumer can drop
// anything that outlived its scope.
type Event interface {
	SessionID() int64
}

// LogLine is one streamed log line.
type LogLine struct {
	ID    int64
	Epoch int64
	Line  string
}

// LogEnded reports that the remote closed the log stream. Err is nil when
// the stream ended cleanly.
type LogEnded struct {
	ID    int64
	Epoch int64
	Err   error
}

// LogHistory is the result of a history fetch, tagged with the generation
// it was requested under.
type LogHistory struct {
	ID         int64
	Epoch      int64
	Generation int
	Lines      []string
	Err        error
}

// ShellOutput is a chunk of remote terminal output.
type ShellOutput struct {
	ID    int64
	Epoch int64
	Data  []byte
}

// ShellExited reports that the exec stream ended. Err is nil on a clean
// remote exit; sessions are never reconnected automatically.
type ShellExited struct {
	ID    int64
	Epoch int64
	Err   error
}

func (e LogLine) SessionID() int64     { return e.ID }
func (e LogEnded) SessionID() int64    { return e.ID }
func (e LogHistory) SessionID() int64  { return e.ID }
func (e ShellOutput) SessionID() int64 { return e.ID }
func (e ShellExited) SessionID() int64 { return e.ID }

// LogOptions sizes a new log session.
type LogOptions struct {
	Capacity int
	Tail     int64
}

// Manager owns the active log and shell sessions. It keeps at most one of
// each: opening a new session closes its predecessor first. All methods
// are called from the consumer's event loop; only the ingest goroutines
// run concurrently, and they communicate exclusively through Events.
type Manager struct {
	gateway domain.KubeGateway
	ctx     context.Context
	events  chan Event
	nextID  int64
	log     *Log
	shell   *Shell
}

func NewManager(ctx context.Context, gateway domain.KubeGateway) *Manager {
	return &Manager{
		gateway: gateway,
		ctx:     ctx,
		events:  make(chan Event, 256),
	}
}

// Events is the fan-in channel for all session notifications.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) CurrentLog() *Log     { return m.log }
func (m *Manager) CurrentShell() *Shell { return m.shell }

func (m *Manager) send(ev Event) {
	select {
	case m.events <- ev:
	case <-m.ctx.Done():
	}
}

// OpenLog starts streaming one container's logs, replacing any previous
// log session.
func (m *Manager) OpenLog(namespace, pod, container string, opts LogOptions, epoch int64) *Log {
	m.CloseLog()

	ctx, cancel := context.WithCancel(m.ctx)
	m.nextID++
	l := newLog(ctx, cancel, m.nextID, epoch, namespace, pod, container, opts.Capacity, opts.Tail)
	m.log = l

	go m.ingestLog(ctx, l, opts.Tail)
	return l
}

func (m *Manager) ingestLog(ctx context.Context, l *Log, tail int64) {
	defer close(l.done)

	rc, err := m.gateway.StreamPodLogs(ctx, l.Namespace, l.Pod, l.Container, tail)
	if err != nil {
		if ctx.Err() == nil {
			m.send(LogEnded{ID: l.ID, Epoch: l.Epoch, Err: err})
		}
		return
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m.send(LogLine{ID: l.ID, Epoch: l.Epoch, Line: scanner.Text()})
	}
	if ctx.Err() != nil {
		return
	}
	m.send(LogEnded{ID: l.ID, Epoch: l.Epoch, Err: scanner.Err()})
}

// FetchLogHistory grows the buffered tail of the given log session by
// re-requesting a larger tail and prepending the lines the buffer does not
// hold yet. At most one fetch is in flight per session; results from a
// superseded request are dropped by generation tag.
func (m *Manager) FetchLogHistory(l *Log) bool {
	if l == nil {
		return false
	}
	gen, tail, ok := l.BeginHistory()
	if !ok {
		return false
	}
	go func() {
		content, err := m.gateway.GetPodLogs(l.ctx, l.Namespace, l.Pod, l.Container, tail)
		ev := LogHistory{ID: l.ID, Epoch: l.Epoch, Generation: gen, Err: err}
		if err == nil {
			ev.Lines = splitLines(content)
		}
		m.send(ev)
	}()
	return true
}

func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// CloseLog cancels the current log session, if any. The buffer stays
// readable until the next OpenLog.
func (m *Manager) CloseLog() {
	if m.log == nil {
		return
	}
	m.log.Close()
	m.log = nil
}

// OpenShell starts an interactive shell in the given container. Only one
// foreground shell exists at a time: any previous one is closed first and
// is not reconnected.
func (m *Manager) OpenShell(namespace, pod, container string, cols, rows uint16, epoch int64) *Shell {
	m.CloseShell()

	ctx, cancel := context.WithCancel(m.ctx)
	m.nextID++
	sh := newShell(m.nextID, epoch, namespace, pod, container, cols, rows, cancel)
	m.shell = sh

	go m.runShell(ctx, sh)
	return sh
}

func (m *Manager) runShell(ctx context.Context, sh *Shell) {
	defer close(sh.done)

	w := &shellWriter{m: m, id: sh.ID, epoch: sh.Epoch}
	err := m.gateway.ExecShell(ctx, sh.Namespace, sh.Pod, sh.Container, sh.stdin, w, sh.sizes)
	if ctx.Err() != nil {
		return
	}
	m.send(ShellExited{ID: sh.ID, Epoch: sh.Epoch, Err: err})
}

// CloseShell tears down the foreground shell, if any.
func (m *Manager) CloseShell() {
	if m.shell == nil {
		return
	}
	m.shell.Close()
	m.shell = nil
}

// CloseAll shuts down every session. Used on scope switches and exit.
func (m *Manager) CloseAll() {
	m.CloseLog()
	m.CloseShell()
}

// shellWriter turns transport writes into events. The transport reuses its
// buffer between writes, so the chunk is copied out.
type shellWriter struct {
	m     *Manager
	id    int64
	epoch int64
}

func (w *shellWriter) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	w.m.send(ShellOutput{ID: w.id, Epoch: w.epoch, Data: data})
	return len(p), nil
}
