package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type confirmMode int

const (
	confirmNone confirmMode = iota
	confirmSimple // [y] Yes [n] No prompt
	confirmProd   // type the guard word
)

// confirmState gates destructive actions. Simple mode asks y/N; prod mode
// demands the guard word (the resource name, or the namespace for a bulk
// action) typed in full before the callback fires.
type confirmState struct {
	mode      confirmMode
	message   string
	namespace string
	guard     string
	input     textinput.Model
	callback  tea.Cmd
}

func newConfirmState() confirmState {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 50
	return confirmState{
		mode:  confirmNone,
		input: ti,
	}
}

// deleteMessage renders the delete prompt. kind reads "pod(s)" or
// "deployment(s)".
func deleteMessage(kind string, names []string) string {
	if len(names) == 1 {
		return fmt.Sprintf("Delete %s '%s'?", kind, names[0])
	}
	return fmt.Sprintf("Delete %d %s?\n%s", len(names), kind, strings.Join(names, ", "))
}

func restartMessage(name string) string {
	return fmt.Sprintf("Rollout restart '%s'?", name)
}

func scaleMessage(name string, replicas int32) string {
	if replicas == 0 {
		return fmt.Sprintf("Scale '%s' to 0 replicas?\nThis will stop all pods.", name)
	}
	return fmt.Sprintf("Scale '%s' to %d replicas?", name, replicas)
}

func (cs *confirmState) activate(message, namespace, guard string, isProd bool, callback tea.Cmd) {
	cs.message = message
	cs.namespace = namespace
	cs.guard = guard
	cs.callback = callback
	if isProd {
		cs.mode = confirmProd
		cs.input.Placeholder = guard
		cs.input.SetValue("")
		cs.input.Focus()
	} else {
		cs.mode = confirmSimple
	}
}

func (cs *confirmState) reset() {
	cs.mode = confirmNone
	cs.message = ""
	cs.namespace = ""
	cs.guard = ""
	cs.input.SetValue("")
	cs.input.Blur()
	cs.callback = nil
}

func (cs *confirmState) isActive() bool {
	return cs.mode != confirmNone
}

// update consumes a key while the confirm prompt is open. The bool reports
// whether the key was captured.
func (cs *confirmState) update(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch cs.mode {
	case confirmSimple:
		switch msg.String() {
		case "y", "Y":
			cb := cs.callback
			cs.reset()
			return cb, true
		case "n", "N", "esc":
			cs.reset()
			return nil, true
		}
		return nil, true // absorb all other keys

	case confirmProd:
		switch msg.String() {
		case "esc":
			cs.reset()
			return nil, true
		case "enter":
			if strings.TrimSpace(cs.input.Value()) == cs.guard {
				cb := cs.callback
				cs.reset()
				return cb, true
			}
			return nil, true // wrong guard word, stay
		default:
			var cmd tea.Cmd
			cs.input, cmd = cs.input.Update(msg)
			return cmd, true
		}
	}
	return nil, false
}

func (cs *confirmState) view(width int) string {
	switch cs.mode {
	case confirmSimple:
		text := fmt.Sprintf("%s\n\n[y] Yes  [n] No", cs.message)
		return confirmBoxStyle.Width(min(width-4, 60)).Render(text)
	case confirmProd:
		box := fmt.Sprintf(
			"PRODUCTION NAMESPACE\n\n"+
				"%s\n"+
				"Namespace: %s\n\n"+
				"Type \"%s\" to confirm:\n"+
				"%s\n\n"+
				"[Esc] Cancel",
			cs.message, cs.namespace,
			cs.guard, cs.input.View(),
		)
		return bannerProdStyle.Width(min(width-4, 60)).Render(box)
	}
	return ""
}
