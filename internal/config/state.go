package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// State persists the namespace history per kubeconfig context, most
// recently used first. It is owned by the event loop; only the disk flush
// may happen elsewhere.
type State struct {
	Namespaces map[string][]string `json:"namespaces"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Namespaces: map[string][]string{}}
}

// StatePath returns the default state file location.
func StatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// LoadState reads the default state file. A missing or corrupt file loads
// as empty state, never as an error.
func LoadState() *State {
	path, err := StatePath()
	if err != nil {
		return NewState()
	}
	return LoadStateFrom(path)
}

// LoadStateFrom reads state from a specific file path.
func LoadStateFrom(path string) *State {
	st := NewState()
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, st); err != nil {
		return NewState()
	}
	if st.Namespaces == nil {
		st.Namespaces = map[string][]string{}
	}
	return st
}

// Touch moves namespace to the front of the context's history, inserting
// it if unseen.
func (s *State) Touch(context, namespace string) {
	if namespace == "" {
		return
	}
	old := s.Namespaces[context]
	list := make([]string, 0, len(old)+1)
	list = append(list, namespace)
	for _, ns := range old {
		if ns != namespace {
			list = append(list, ns)
		}
	}
	s.Namespaces[context] = list
}

// LastNamespace returns the most recently used namespace for context, or
// "" when none is recorded.
func (s *State) LastNamespace(context string) string {
	if list := s.Namespaces[context]; len(list) > 0 {
		return list[0]
	}
	return ""
}

// Known returns the context's namespace history, most recent first.
func (s *State) Known(context string) []string {
	return s.Namespaces[context]
}

// Clone returns a deep copy. The flush goroutine serializes the copy so the
// event loop can keep mutating the original.
func (s *State) Clone() *State {
	out := NewState()
	for ctx, list := range s.Namespaces {
		out.Namespaces[ctx] = append([]string(nil), list...)
	}
	return out
}

// Merge records namespaces discovered on the cluster without promoting any
// of them; the recency order of already known entries is preserved.
func (s *State) Merge(context string, namespaces []string) {
	known := s.Namespaces[context]
	seen := make(map[string]bool, len(known))
	for _, ns := range known {
		seen[ns] = true
	}
	for _, ns := range namespaces {
		if ns == "" || seen[ns] {
			continue
		}
		known = append(known, ns)
		seen[ns] = true
	}
	s.Namespaces[context] = known
}

// Save writes the state to the default path.
func (s *State) Save() error {
	path, err := StatePath()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the state atomically: temp file plus rename, directory
// 0700, file 0600.
func (s *State) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
