package store

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/crn4/kr/internal/domain"
)

// Store is the authoritative in-memory snapshot of watched resources. It
// has exactly one writer, the event loop applying watch events, and many
// readers on the render path. Every query returns a copied slice so readers
// never observe a partial apply.
type Store struct {
	mu      sync.RWMutex
	records map[domain.Kind]map[string]domain.Resource
	cursors map[domain.Kind]string
}

func New() *Store {
	return &Store{
		records: map[domain.Kind]map[string]domain.Resource{},
		cursors: map[domain.Kind]string{},
	}
}

// Apply folds one watch event into the snapshot. It returns the store keys
// that disappeared so the caller can prune its selection synchronously.
// Events at or behind the per-kind cursor are discarded, which makes
// re-applying any already-applied event a no-op.
func (s *Store) Apply(ev domain.WatchEvent) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case domain.WatchAdded, domain.WatchModified:
		s.put(ev.Kind, ev.Item)
		return nil
	case domain.WatchDeleted:
		return s.remove(ev.Kind, ev.Item)
	case domain.WatchSynced:
		return s.replaceAll(ev.Kind, ev.Items, ev.Version)
	default:
		return nil
	}
}

func (s *Store) put(kind domain.Kind, item domain.Resource) {
	if item == nil {
		return
	}
	rv := item.GetResourceVersion()
	if !newerVersion(rv, s.cursors[kind]) {
		return
	}
	m := s.records[kind]
	if m == nil {
		m = map[string]domain.Resource{}
		s.records[kind] = m
	}
	m[domain.ResourceKey(item)] = item
	s.cursors[kind] = rv
}

func (s *Store) remove(kind domain.Kind, item domain.Resource) []string {
	if item == nil {
		return nil
	}
	rv := item.GetResourceVersion()
	if !newerVersion(rv, s.cursors[kind]) {
		return nil
	}
	s.cursors[kind] = rv
	key := domain.ResourceKey(item)
	if _, ok := s.records[kind][key]; !ok {
		return nil
	}
	delete(s.records[kind], key)
	return []string{key}
}

// replaceAll installs the full item set from a list or relist. The old map
// is diffed against the new one so keys that vanished while the watch was
// down are reported for selection pruning.
func (s *Store) replaceAll(kind domain.Kind, items []domain.Resource, version string) []string {
	fresh := make(map[string]domain.Resource, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		fresh[domain.ResourceKey(item)] = item
	}

	var removed []string
	for key := range s.records[kind] {
		if _, ok := fresh[key]; !ok {
			removed = append(removed, key)
		}
	}

	s.records[kind] = fresh
	if newerVersion(version, s.cursors[kind]) {
		s.cursors[kind] = version
	}
	return removed
}

// Query returns the kind's records matching the filter text (case
// insensitive name substring) and the status set (empty set means no
// status filtering), ordered by namespace then name.
func (s *Store) Query(kind domain.Kind, filter string, statuses map[string]bool) []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := strings.ToLower(filter)
	out := make([]domain.Resource, 0, len(s.records[kind]))
	for _, r := range s.records[kind] {
		if len(statuses) > 0 && !statuses[r.StatusText()] {
			continue
		}
		if f != "" && !strings.Contains(strings.ToLower(r.GetName()), f) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GetNamespace() != out[j].GetNamespace() {
			return out[i].GetNamespace() < out[j].GetNamespace()
		}
		return out[i].GetName() < out[j].GetName()
	})
	return out
}

// Get looks up one record by key. It can fail gracefully; selections hold
// keys, never references into the store.
func (s *Store) Get(kind domain.Kind, key string) (domain.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[kind][key]
	return r, ok
}

// Len reports the number of records held for kind.
func (s *Store) Len(kind domain.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[kind])
}

// Cursor reports the kind's last applied resourceVersion.
func (s *Store) Cursor(kind domain.Kind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[kind]
}

// StatusCounts tallies records per StatusText, feeding the status filter
// popup.
func (s *Store) StatusCounts(kind domain.Kind) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, r := range s.records[kind] {
		counts[r.StatusText()]++
	}
	return counts
}

// Clear drops all records and cursors. Used when the scope (namespace or
// context) changes and the snapshot no longer describes what is on screen.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[domain.Kind]map[string]domain.Resource{}
	s.cursors = map[domain.Kind]string{}
}

// newerVersion reports whether incoming is strictly newer than current.
// resourceVersions are opaque; etcd-backed servers emit numerics, which we
// compare as such. Tokens that do not parse cannot be ordered and are
// accepted as newer.
func newerVersion(incoming, current string) bool {
	if current == "" {
		return incoming != ""
	}
	if incoming == "" {
		return false
	}
	a, errA := strconv.ParseUint(incoming, 10, 64)
	b, errB := strconv.ParseUint(current, 10, 64)
	if errA != nil || errB != nil {
		return true
	}
	return a > b
}
