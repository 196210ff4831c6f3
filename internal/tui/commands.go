package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crn4/kr/internal/config"
	"github.com/crn4/kr/internal/domain"
	"github.com/crn4/kr/internal/kubectl"
)

const dispatchTimeout = 15 * time.Second

// deleteCmd issues one delete call per target. Each call is fire and
// forget: the store only changes once the watch delivers the matching
// DELETED events.
func deleteCmd(gateway domain.KubeGateway, kind domain.Kind, namespace string, names []string) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(names))
	for _, name := range names {
		name := name
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()

			var err error
			switch kind {
			case domain.KindPod:
				err = gateway.DeletePod(ctx, namespace, name)
			case domain.KindDeployment:
				err = gateway.DeleteDeployment(ctx, namespace, name)
			default:
				err = &domain.APIError{Type: domain.ErrValidation, Message: "kind is not deletable: " + string(kind)}
			}
			if err != nil {
				return actionFailedMsg{message: fmt.Sprintf("Deleting '%s' failed: %v", name, err), err: err}
			}
			return actionDoneMsg{message: fmt.Sprintf("Delete requested for '%s'", name)}
		})
	}
	return tea.Batch(cmds...)
}

func scaleCmd(gateway domain.KubeGateway, namespace, name string, replicas int32) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := gateway.ScaleDeployment(ctx, namespace, name, replicas); err != nil {
			return actionFailedMsg{message: fmt.Sprintf("Scaling '%s' failed: %v", name, err), err: err}
		}
		return actionDoneMsg{message: fmt.Sprintf("Scale to %d requested for '%s'", replicas, name)}
	}
}

func restartCmd(gateway domain.KubeGateway, namespace, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := gateway.RestartDeployment(ctx, namespace, name); err != nil {
			return actionFailedMsg{message: fmt.Sprintf("Restarting '%s' failed: %v", name, err), err: err}
		}
		return actionDoneMsg{message: fmt.Sprintf("Rollout restart requested for '%s'", name)}
	}
}

func describeCmd(runner *kubectl.Runner, kind domain.Kind, namespace, name string) tea.Cmd {
	return func() tea.Msg {
		out, err := runner.Describe(context.Background(), kind, namespace, name)
		if err != nil {
			return actionFailedMsg{message: err.Error(), err: err}
		}
		title := fmt.Sprintf("Describe %s/%s", strings.ToLower(string(kind)), name)
		return describeLoadedMsg{title: title, content: strings.TrimRight(out, "\n")}
	}
}

func yamlCmd(gateway domain.KubeGateway, kind domain.Kind, namespace, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		content, err := gateway.ResourceYAML(ctx, kind, namespace, name)
		if err != nil {
			return actionFailedMsg{message: fmt.Sprintf("Loading YAML failed: %v", err), err: err}
		}
		return yamlLoadedMsg{name: name, kind: strings.ToLower(string(kind)), content: content}
	}
}

func namespacesCmd(gateway domain.KubeGateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		infos, err := gateway.ListNamespaces(ctx)
		if err != nil {
			return namespacesLoadedMsg{err: err}
		}
		names := make([]string, len(infos))
		for i, ns := range infos {
			names[i] = ns.Name
		}
		return namespacesLoadedMsg{names: names}
	}
}

func switchContextCmd(gateway domain.KubeGateway, name string) tea.Cmd {
	return func() tea.Msg {
		return contextSwitchedMsg{name: name, err: gateway.SwitchContext(name)}
	}
}

func reconnectCmd(gateway domain.KubeGateway) tea.Cmd {
	return func() tea.Msg {
		return reconnectedMsg{err: gateway.Reconnect()}
	}
}

// flushStateCmd serializes a snapshot of the namespace history to disk off
// the event loop. The clone keeps the loop free to mutate the original.
func flushStateCmd(state *config.State) tea.Cmd {
	snapshot := state.Clone()
	return func() tea.Msg {
		return stateFlushedMsg{err: snapshot.Save()}
	}
}

func copyToClipboardCmd(key, value string) tea.Cmd {
	return func() tea.Msg {
		return clipboardCopiedMsg{key: key, err: clipboard.WriteAll(value)}
	}
}

// clearClipboardCmd wipes the clipboard after the reveal-copy grace period.
func clearClipboardCmd() tea.Cmd {
	return func() tea.Msg {
		_ = clipboard.WriteAll("")
		return nil
	}
}
