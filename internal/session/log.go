package session

import (
	"context"
	"strings"
)

// Log buffers one pod container's log stream in a bounded ring. Oldest
// lines are evicted on overflow; match indices and the manual cursor are
// shifted so they keep pointing at the same content.
//
// All methods are owned by the consumer's event loop. The ingest goroutine
// never touches the struct; it only emits events through the manager.
type Log struct {
	ID        int64
	Epoch     int64
	Namespace string
	Pod       string
	Container string

	status   Status
	capacity int

	buf   []string
	start int
	count int

	follow bool
	offset int // top visible line when not following

	query    string
	matches  []int
	matchPos int

	histGen     int
	histPending bool
	histTail    int64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newLog(ctx context.Context, cancel context.CancelFunc, id, epoch int64, namespace, pod, container string, capacity int, tail int64) *Log {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Log{
		ID:        id,
		Epoch:     epoch,
		Namespace: namespace,
		Pod:       pod,
		Container: container,
		status:    StatusStarting,
		capacity:  capacity,
		buf:       make([]string, capacity),
		follow:    true,
		matchPos:  -1,
		histTail:  tail,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (l *Log) Status() Status { return l.status }

// MarkActive is called by the event loop on the first delivered line.
func (l *Log) MarkActive() {
	if l.status == StatusStarting {
		l.status = StatusActive
	}
}

// MarkEnded records the remote end of the stream.
func (l *Log) MarkEnded(err error) {
	if err != nil {
		l.status = StatusFailed
		return
	}
	l.status = StatusClosed
}

// Done closes when the ingest goroutine has finished.
func (l *Log) Done() <-chan struct{} { return l.done }

// Push appends one line, evicting the oldest when the ring is full.
func (l *Log) Push(line string) {
	if l.capacity == 0 {
		return
	}
	if l.count == l.capacity {
		l.evictOne()
	}
	l.buf[(l.start+l.count)%l.capacity] = line
	l.count++
	if l.query != "" && strings.Contains(strings.ToLower(line), l.query) {
		l.matches = append(l.matches, l.count-1)
	}
}

// evictOne drops the oldest line and re-indexes everything that referred
// to it: match positions shift down and stale ones are invalidated, the
// manual cursor stays on the same content.
func (l *Log) evictOne() {
	l.start = (l.start + 1) % l.capacity
	l.count--

	dropped := 0
	for _, idx := range l.matches {
		if idx-1 < 0 {
			dropped++
		}
	}
	if dropped > 0 {
		l.matches = l.matches[dropped:]
	}
	for i := range l.matches {
		l.matches[i]--
	}
	if l.matchPos >= 0 {
		if l.matchPos < dropped {
			l.matchPos = -1
		} else {
			l.matchPos -= dropped
		}
	}

	if !l.follow && l.offset > 0 {
		l.offset--
	}
}

func (l *Log) Len() int { return l.count }

// Line returns the logical i-th line, oldest first.
func (l *Log) Line(i int) string {
	return l.buf[(l.start+i)%l.capacity]
}

// Lines copies out n lines starting at logical index from, clamped to the
// buffer bounds.
func (l *Log) Lines(from, n int) []string {
	if from < 0 {
		from = 0
	}
	if from >= l.count || n <= 0 {
		return nil
	}
	if from+n > l.count {
		n = l.count - from
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = l.Line(from + i)
	}
	return out
}

func (l *Log) Follow() bool { return l.follow }

func (l *Log) maxTop(page int) int {
	if page <= 0 {
		page = 1
	}
	if l.count <= page {
		return 0
	}
	return l.count - page
}

// Top computes the top visible line for a viewport of page lines.
func (l *Log) Top(page int) int {
	top := l.maxTop(page)
	if l.follow {
		return top
	}
	if l.offset > top {
		return top
	}
	return l.offset
}

// ScrollUp moves the cursor up n lines, leaving follow mode. It reports
// whether the cursor was already at the top, in which case the caller may
// page in older history instead.
func (l *Log) ScrollUp(n, page int) bool {
	if l.follow {
		l.follow = false
		l.offset = l.maxTop(page)
	}
	if l.offset == 0 {
		return true
	}
	l.offset -= n
	if l.offset < 0 {
		l.offset = 0
	}
	return false
}

// ScrollDown moves the cursor down n lines. Scrolling down from follow
// mode parks the cursor at the bottom without re-enabling follow.
func (l *Log) ScrollDown(n, page int) {
	top := l.maxTop(page)
	if l.follow {
		l.follow = false
		l.offset = top
		return
	}
	l.offset += n
	if l.offset > top {
		l.offset = top
	}
}

// ShowLine leaves follow mode and scrolls so that line idx sits roughly in
// the middle of a viewport of page lines.
func (l *Log) ShowLine(idx, page int) {
	l.follow = false
	l.offset = idx - page/2
	if top := l.maxTop(page); l.offset > top {
		l.offset = top
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// JumpTop parks the cursor on the first buffered line.
func (l *Log) JumpTop() {
	l.follow = false
	l.offset = 0
}

// JumpBottom re-enters follow mode: the view tracks incoming lines again.
func (l *Log) JumpBottom() {
	l.follow = true
}

// SetQuery computes the match set for a new query. Matching is a case
// insensitive substring check; the match set is maintained incrementally
// afterwards (appends and evictions), never rescanned per navigation.
func (l *Log) SetQuery(query string) {
	l.query = strings.ToLower(query)
	l.matches = l.matches[:0]
	l.matchPos = -1
	if l.query == "" {
		return
	}
	for i := 0; i < l.count; i++ {
		if strings.Contains(strings.ToLower(l.Line(i)), l.query) {
			l.matches = append(l.matches, i)
		}
	}
}

func (l *Log) ClearQuery() {
	l.query = ""
	l.matches = l.matches[:0]
	l.matchPos = -1
}

func (l *Log) Query() string   { return l.query }
func (l *Log) Matches() []int  { return l.matches }
func (l *Log) MatchPos() int   { return l.matchPos }
func (l *Log) MatchCount() int { return len(l.matches) }

// NextMatch advances cyclically through the match set and returns the
// matched line index.
func (l *Log) NextMatch() (int, bool) {
	if len(l.matches) == 0 {
		return 0, false
	}
	l.matchPos = (l.matchPos + 1) % len(l.matches)
	return l.matches[l.matchPos], true
}

// PrevMatch steps backwards cyclically through the match set.
func (l *Log) PrevMatch() (int, bool) {
	if len(l.matches) == 0 {
		return 0, false
	}
	if l.matchPos <= 0 {
		l.matchPos = len(l.matches) - 1
	} else {
		l.matchPos--
	}
	return l.matches[l.matchPos], true
}

// BeginHistory reserves a history fetch. It returns the generation tag and
// the tail size to request, or ok=false when a fetch is already in flight
// or the buffer cannot hold more.
func (l *Log) BeginHistory() (gen int, tail int64, ok bool) {
	if l.histPending || l.count >= l.capacity {
		return 0, 0, false
	}
	l.histGen++
	l.histPending = true
	l.histTail *= 2
	return l.histGen, l.histTail, true
}

// ApplyHistory prepends the older portion of a fetched tail. Results from
// a superseded generation are dropped. The seam is anchored on content, not
// counts: lines streamed in while the fetch was in flight sit behind the
// buffer head, so the merge locates the head inside the tail and prepends
// only what precedes it. A tail that no longer contains the head (evicted
// meanwhile, or pod restarted) is discarded whole. It returns how many
// lines were prepended; the cursor and match indices shift by that amount
// so the view stays put.
func (l *Log) ApplyHistory(gen int, lines []string) int {
	if gen != l.histGen {
		return 0
	}
	l.histPending = false

	if len(lines) == 0 {
		return 0
	}
	older := lines
	if l.count > 0 {
		anchor := l.historyAnchor(lines)
		if anchor <= 0 {
			return 0
		}
		older = lines[:anchor]
	}
	if room := l.capacity - l.count; len(older) > room {
		older = older[len(older)-room:]
	}
	if len(older) == 0 {
		return 0
	}
	l.prepend(older)
	return len(older)
}

// historyAnchor finds where the buffer begins inside a fetched tail: the
// first index whose line equals the buffer head and whose following lines
// keep matching the buffer for as far as both run. Returns -1 when the head
// is not in the tail.
func (l *Log) historyAnchor(lines []string) int {
	head := l.Line(0)
	for i, line := range lines {
		if line != head {
			continue
		}
		n := len(lines) - i
		if n > l.count {
			n = l.count
		}
		matched := true
		for j := 1; j < n; j++ {
			if lines[i+j] != l.Line(j) {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

func (l *Log) prepend(older []string) {
	n := len(older)
	merged := make([]string, 0, n+l.count)
	merged = append(merged, older...)
	for i := 0; i < l.count; i++ {
		merged = append(merged, l.Line(i))
	}

	l.buf = make([]string, l.capacity)
	copy(l.buf, merged)
	l.start = 0
	l.count = len(merged)

	for i := range l.matches {
		l.matches[i] += n
	}
	if l.query != "" {
		fresh := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if strings.Contains(strings.ToLower(older[i]), l.query) {
				fresh = append(fresh, i)
			}
		}
		if len(fresh) > 0 {
			l.matches = append(fresh, l.matches...)
			if l.matchPos >= 0 {
				l.matchPos += len(fresh)
			}
		}
	}
	if !l.follow {
		l.offset += n
	}
}

// Close cancels the ingest stream. The struct stays readable so the view
// can keep showing the buffered lines.
func (l *Log) Close() {
	if l.cancel != nil {
		l.cancel()
	}
	if l.status == StatusStarting || l.status == StatusActive {
		l.status = StatusClosed
	}
}
