package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateTouchMovesToFront(t *testing.T) {
	st := NewState()
	st.Touch("minikube", "default")
	st.Touch("minikube", "staging")
	st.Touch("minikube", "default")

	got := st.Known("minikube")
	want := []string{"default", "staging"}
	if len(got) != len(want) {
		t.Fatalf("Known() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Known()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStateLastNamespace(t *testing.T) {
	st := NewState()
	if st.LastNamespace("minikube") != "" {
		t.Errorf("LastNamespace() = %q, want empty", st.LastNamespace("minikube"))
	}
	st.Touch("minikube", "default")
	st.Touch("minikube", "staging")
	if st.LastNamespace("minikube") != "staging" {
		t.Errorf("LastNamespace() = %q, want %q", st.LastNamespace("minikube"), "staging")
	}
	// Other contexts are independent.
	if st.LastNamespace("prod-cluster") != "" {
		t.Errorf("LastNamespace(other) = %q, want empty", st.LastNamespace("prod-cluster"))
	}
}

func TestStateTouchIgnoresEmpty(t *testing.T) {
	st := NewState()
	st.Touch("minikube", "")
	if len(st.Known("minikube")) != 0 {
		t.Errorf("Known() = %v, want empty", st.Known("minikube"))
	}
}

func TestStateMergeKeepsRecencyOrder(t *testing.T) {
	st := NewState()
	st.Touch("minikube", "apps")
	st.Touch("minikube", "staging")
	st.Merge("minikube", []string{"apps", "default", "kube-system"})

	got := st.Known("minikube")
	want := []string{"staging", "apps", "default", "kube-system"}
	if len(got) != len(want) {
		t.Fatalf("Known() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Known()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStateSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st := NewState()
	st.Touch("minikube", "default")
	st.Touch("minikube", "staging")
	st.Touch("prod-cluster", "payments")
	if err := st.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := LoadStateFrom(path)
	if loaded.LastNamespace("minikube") != "staging" {
		t.Errorf("LastNamespace(minikube) = %q, want %q", loaded.LastNamespace("minikube"), "staging")
	}
	if loaded.LastNamespace("prod-cluster") != "payments" {
		t.Errorf("LastNamespace(prod-cluster) = %q, want %q", loaded.LastNamespace("prod-cluster"), "payments")
	}
}

func TestLoadStateMissingFile(t *testing.T) {
	st := LoadStateFrom(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if st == nil || st.Namespaces == nil {
		t.Fatal("missing file should load as empty state")
	}
	if len(st.Namespaces) != 0 {
		t.Errorf("Namespaces = %v, want empty", st.Namespaces)
	}
}

func TestLoadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	st := LoadStateFrom(path)
	if st == nil || len(st.Namespaces) != 0 {
		t.Fatal("corrupt file should load as empty state")
	}
}

func TestStateSaveToCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	st := NewState()
	st.Touch("minikube", "default")
	if err := st.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	// Temp file must not be left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	st := NewState()
	st.Touch("minikube", "default")

	clone := st.Clone()
	st.Touch("minikube", "staging")

	got := clone.Known("minikube")
	if len(got) != 1 || got[0] != "default" {
		t.Errorf("clone Known() = %v, want [default]", got)
	}
}
