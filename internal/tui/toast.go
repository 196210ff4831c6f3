package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

const (
	successToastTTL = 5 * time.Second
	errorToastTTL   = 15 * time.Second
)

// toast is the single footer notification slot. Each new toast gets a fresh
// seq so an expiry tick scheduled for an older toast cannot clear a newer one.
// Persistent toasts (permission errors) ignore expiry entirely.
type toast struct {
	seq        int
	message    string
	level      toastLevel
	persistent bool
}

type toastExpiredMsg struct {
	seq int
}

func (t toast) isActive() bool {
	return t.message != ""
}

func (t toast) render() string {
	if !t.isActive() {
		return ""
	}
	switch t.level {
	case toastSuccess:
		return toastSuccessStyle.Render(" OK: " + t.message)
	case toastError:
		return toastErrorStyle.Render(" ERROR: " + t.message)
	default:
		return " " + t.message
	}
}

func (t toast) ttl() time.Duration {
	if t.level == toastError {
		return errorToastTTL
	}
	return successToastTTL
}

// scheduleExpiry arms the clear tick for this toast, or nothing when the
// toast must stay until replaced.
func (t toast) scheduleExpiry() tea.Cmd {
	if t.persistent {
		return nil
	}
	seq := t.seq
	return tea.Tick(t.ttl(), func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}
