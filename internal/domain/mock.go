package domain

import (
	"context"
	"io"
	"strings"
)

// MockGateway implements KubeGateway for testing. Control methods are meant
// to be called from a single test goroutine; watch channels are plain
// channels the test feeds directly.
type MockGateway struct {
	ContextVal   string
	ServerURLVal string
	NamespaceVal string
	Contexts     []string

	Pods        []PodInfo
	Deployments []DeploymentInfo
	Secrets     []SecretInfo
	Events      []EventInfo
	Namespaces  []NamespaceInfo
	LogContent  string
	LogStream   string
	YAMLContent string
	ShellOutput string

	// ListRV is the resourceVersion every list call reports.
	ListRV string

	// Watch channels handed out by the Watch methods. Tests feed them; a
	// nil field yields a fresh channel that never emits.
	PodEvents        chan WatchEvent
	DeploymentEvents chan WatchEvent
	SecretEvents     chan WatchEvent
	EventEvents      chan WatchEvent

	// Error injection
	ListPodsErr         error
	ListDeploymentsErr  error
	ListSecretsErr      error
	ListEventsErr       error
	ListNamespacesErr   error
	ListContextsErr     error
	WatchErr            error
	GetPodLogsErr       error
	StreamLogsErr       error
	DeletePodErr        error
	DeleteDeploymentErr error
	ScaleErr            error
	RestartErr          error
	ExecShellErr        error
	SwitchContextErr    error
	ReconnectErr        error
	YAMLErr             error

	// Call tracking
	DeletedPods        []string
	DeletedDeployments []string
	ScaledDep          string
	ScaledTo           int32
	RestartedDep       string
	SwitchedTo         string
	ReconnectCalls     int
	ListPodCalls       int
	WatchPodCalls      int
	ExecShellCalls     int
	ShellTarget        string
	ShellSizes         []ShellSize
	ShellReceived      []byte
	LogRequests        []int64
}

// Compile-time check.
var _ KubeGateway = (*MockGateway)(nil)

func (m *MockGateway) GetContext() string       { return m.ContextVal }
func (m *MockGateway) GetServerURL() string     { return m.ServerURLVal }
func (m *MockGateway) DefaultNamespace() string { return m.NamespaceVal }

func (m *MockGateway) ListContexts() ([]string, error) {
	if m.ListContextsErr != nil {
		return nil, m.ListContextsErr
	}
	return m.Contexts, nil
}

func (m *MockGateway) SwitchContext(name string) error {
	if m.SwitchContextErr != nil {
		return m.SwitchContextErr
	}
	m.SwitchedTo = name
	m.ContextVal = name
	return nil
}

func (m *MockGateway) Reconnect() error {
	m.ReconnectCalls++
	return m.ReconnectErr
}

func (m *MockGateway) ListPods(_ context.Context, _ string) ([]PodInfo, string, error) {
	m.ListPodCalls++
	if m.ListPodsErr != nil {
		return nil, "", m.ListPodsErr
	}
	return m.Pods, m.ListRV, nil
}

func (m *MockGateway) WatchPods(_ context.Context, _, _ string) (<-chan WatchEvent, error) {
	m.WatchPodCalls++
	if m.WatchErr != nil {
		return nil, m.WatchErr
	}
	if m.PodEvents == nil {
		m.PodEvents = make(chan WatchEvent)
	}
	return m.PodEvents, nil
}

func (m *MockGateway) DeletePod(_ context.Context, _, name string) error {
	m.DeletedPods = append(m.DeletedPods, name)
	return m.DeletePodErr
}

func (m *MockGateway) StreamPodLogs(_ context.Context, _, _, _ string, _ int64) (io.ReadCloser, error) {
	if m.StreamLogsErr != nil {
		return nil, m.StreamLogsErr
	}
	return io.NopCloser(strings.NewReader(m.LogStream)), nil
}

func (m *MockGateway) GetPodLogs(_ context.Context, _, _, _ string, tailLines int64) (string, error) {
	m.LogRequests = append(m.LogRequests, tailLines)
	if m.GetPodLogsErr != nil {
		return "", m.GetPodLogsErr
	}
	return m.LogContent, nil
}

func (m *MockGateway) ListDeployments(_ context.Context, _ string) ([]DeploymentInfo, string, error) {
	if m.ListDeploymentsErr != nil {
		return nil, "", m.ListDeploymentsErr
	}
	return m.Deployments, m.ListRV, nil
}

func (m *MockGateway) WatchDeployments(_ context.Context, _, _ string) (<-chan WatchEvent, error) {
	if m.WatchErr != nil {
		return nil, m.WatchErr
	}
	if m.DeploymentEvents == nil {
		m.DeploymentEvents = make(chan WatchEvent)
	}
	return m.DeploymentEvents, nil
}

func (m *MockGateway) DeleteDeployment(_ context.Context, _, name string) error {
	m.DeletedDeployments = append(m.DeletedDeployments, name)
	return m.DeleteDeploymentErr
}

func (m *MockGateway) ScaleDeployment(_ context.Context, _, name string, replicas int32) error {
	m.ScaledDep = name
	m.ScaledTo = replicas
	return m.ScaleErr
}

func (m *MockGateway) RestartDeployment(_ context.Context, _, name string) error {
	m.RestartedDep = name
	return m.RestartErr
}

func (m *MockGateway) ListSecrets(_ context.Context, _ string) ([]SecretInfo, string, error) {
	if m.ListSecretsErr != nil {
		return nil, "", m.ListSecretsErr
	}
	return m.Secrets, m.ListRV, nil
}

func (m *MockGateway) WatchSecrets(_ context.Context, _, _ string) (<-chan WatchEvent, error) {
	if m.WatchErr != nil {
		return nil, m.WatchErr
	}
	if m.SecretEvents == nil {
		m.SecretEvents = make(chan WatchEvent)
	}
	return m.SecretEvents, nil
}

func (m *MockGateway) ListEvents(_ context.Context, _ string) ([]EventInfo, string, error) {
	if m.ListEventsErr != nil {
		return nil, "", m.ListEventsErr
	}
	return m.Events, m.ListRV, nil
}

func (m *MockGateway) WatchEvents(_ context.Context, _, _ string) (<-chan WatchEvent, error) {
	if m.WatchErr != nil {
		return nil, m.WatchErr
	}
	if m.EventEvents == nil {
		m.EventEvents = make(chan WatchEvent)
	}
	return m.EventEvents, nil
}

func (m *MockGateway) ListNamespaces(_ context.Context) ([]NamespaceInfo, error) {
	if m.ListNamespacesErr != nil {
		return nil, m.ListNamespacesErr
	}
	return m.Namespaces, nil
}

// ExecShell writes ShellOutput, drains the resize queue until the session
// closes it, then collects forwarded input until EOF.
func (m *MockGateway) ExecShell(_ context.Context, namespace, pod, container string, stdin io.Reader, stdout io.Writer, resize ShellSizeQueue) error {
	m.ExecShellCalls++
	m.ShellTarget = namespace + "/" + pod + "/" + container
	if m.ExecShellErr != nil {
		return m.ExecShellErr
	}
	if m.ShellOutput != "" {
		io.WriteString(stdout, m.ShellOutput)
	}
	for {
		size := resize.Next()
		if size == nil {
			break
		}
		m.ShellSizes = append(m.ShellSizes, *size)
	}
	b, _ := io.ReadAll(stdin)
	m.ShellReceived = b
	return nil
}

func (m *MockGateway) ResourceYAML(_ context.Context, _ Kind, _, _ string) (string, error) {
	if m.YAMLErr != nil {
		return "", m.YAMLErr
	}
	return m.YAMLContent, nil
}
