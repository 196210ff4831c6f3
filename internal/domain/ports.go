package domain

import (
	"context"
	"io"
)

// ClusterInfo provides metadata about the current cluster connection and
// control over which kubeconfig context it points at.
type ClusterInfo interface {
	GetContext() string
	GetServerURL() string
	// DefaultNamespace is the namespace bound to the current context in the
	// kubeconfig, or "default".
	DefaultNamespace() string
	ListContexts() ([]string, error)
	// SwitchContext rebuilds the connection against the named kubeconfig
	// context. The old connection stays usable until this returns.
	SwitchContext(name string) error
	Reconnect() error
}

// PodRepository provides access to pod operations. List returns the
// collection's resourceVersion so a watch can resume from it.
type PodRepository interface {
	ListPods(ctx context.Context, namespace string) ([]PodInfo, string, error)
	WatchPods(ctx context.Context, namespace, fromVersion string) (<-chan WatchEvent, error)
	DeletePod(ctx context.Context, namespace, name string) error
	// StreamPodLogs follows the log tail until ctx is cancelled.
	StreamPodLogs(ctx context.Context, namespace, pod, container string, tailLines int64) (io.ReadCloser, error)
	// GetPodLogs fetches a one-shot tail, used to page history backwards.
	GetPodLogs(ctx context.Context, namespace, pod, container string, tailLines int64) (string, error)
}

// DeploymentRepository provides access to deployment operations.
type DeploymentRepository interface {
	ListDeployments(ctx context.Context, namespace string) ([]DeploymentInfo, string, error)
	WatchDeployments(ctx context.Context, namespace, fromVersion string) (<-chan WatchEvent, error)
	DeleteDeployment(ctx context.Context, namespace, name string) error
	ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error
	RestartDeployment(ctx context.Context, namespace, name string) error
}

// SecretRepository provides access to secret operations.
type SecretRepository interface {
	ListSecrets(ctx context.Context, namespace string) ([]SecretInfo, string, error)
	WatchSecrets(ctx context.Context, namespace, fromVersion string) (<-chan WatchEvent, error)
}

// EventRepository provides access to event operations.
type EventRepository interface {
	ListEvents(ctx context.Context, namespace string) ([]EventInfo, string, error)
	WatchEvents(ctx context.Context, namespace, fromVersion string) (<-chan WatchEvent, error)
}

// NamespaceRepository provides access to namespace operations.
type NamespaceRepository interface {
	ListNamespaces(ctx context.Context) ([]NamespaceInfo, error)
}

// ShellSize is one terminal geometry update for an interactive shell.
type ShellSize struct {
	Width  uint16
	Height uint16
}

// ShellSizeQueue yields terminal resizes for a running shell. Next blocks
// until a size is available and returns nil when the session ends.
type ShellSizeQueue interface {
	Next() *ShellSize
}

// ShellRepository opens interactive exec channels into pods.
type ShellRepository interface {
	// ExecShell runs a remote shell with a TTY attached, forwarding stdin
	// and stdout byte-for-byte. It blocks until the remote side exits, the
	// transport fails, or ctx is cancelled.
	ExecShell(ctx context.Context, namespace, pod, container string, stdin io.Reader, stdout io.Writer, resize ShellSizeQueue) error
}

// YAMLRepository renders a resource's live manifest.
type YAMLRepository interface {
	ResourceYAML(ctx context.Context, kind Kind, namespace, name string) (string, error)
}

// KubeGateway is the primary port combining all cluster operations.
// The TUI depends on this interface, not on concrete implementations.
type KubeGateway interface {
	ClusterInfo
	PodRepository
	DeploymentRepository
	SecretRepository
	EventRepository
	NamespaceRepository
	ShellRepository
	YAMLRepository
}
