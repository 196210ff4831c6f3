package domain

import "time"

// Kind identifies a resource kind the client tracks.
type Kind string

const (
	KindPod        Kind = "Pod"
	KindDeployment Kind = "Deployment"
	KindSecret     Kind = "Secret"
	KindEvent      Kind = "Event"
	KindNamespace  Kind = "Namespace"
)

// Resource is one row of cluster state. Implementations form a closed set;
// the store keys them by kind, namespace and name.
type Resource interface {
	GetKind() Kind
	GetName() string
	GetNamespace() string
	GetResourceVersion() string
	StatusText() string
}

// Key builds the store key for a (kind, namespace, name) triple.
func Key(kind Kind, namespace, name string) string {
	return string(kind) + "/" + namespace + "/" + name
}

// ResourceKey returns the store key of r.
func ResourceKey(r Resource) string {
	return Key(r.GetKind(), r.GetNamespace(), r.GetName())
}

// ContainerInfo contains the displayed attributes of one container in a pod.
type ContainerInfo struct {
	Name     string
	Ready    bool
	Restarts int32
}

// PodInfo contains the displayed attributes of a pod.
type PodInfo struct {
	Name            string
	Namespace       string
	Status          string
	Ready           string
	Restarts        int32
	Node            string
	Age             string
	Containers      []ContainerInfo
	CreatedAt       time.Time
	ResourceVersion string
}

func (p PodInfo) GetKind() Kind              { return KindPod }
func (p PodInfo) GetName() string            { return p.Name }
func (p PodInfo) GetNamespace() string       { return p.Namespace }
func (p PodInfo) GetResourceVersion() string { return p.ResourceVersion }
func (p PodInfo) StatusText() string         { return p.Status }

// DeploymentInfo contains the displayed attributes of a deployment.
type DeploymentInfo struct {
	Name            string
	Namespace       string
	Ready           string
	Replicas        int32
	Available       int32
	Image           string
	Age             string
	CreatedAt       time.Time
	ResourceVersion string
}

func (d DeploymentInfo) GetKind() Kind              { return KindDeployment }
func (d DeploymentInfo) GetName() string            { return d.Name }
func (d DeploymentInfo) GetNamespace() string       { return d.Namespace }
func (d DeploymentInfo) GetResourceVersion() string { return d.ResourceVersion }
func (d DeploymentInfo) StatusText() string         { return d.Ready }

// SecretInfo contains the displayed attributes of a secret, including its
// raw data so the decode view works without another API round trip.
type SecretInfo struct {
	Name            string
	Namespace       string
	Type            string
	Keys            int
	Age             string
	Data            map[string][]byte
	CreatedAt       time.Time
	ResourceVersion string
}

func (s SecretInfo) GetKind() Kind              { return KindSecret }
func (s SecretInfo) GetName() string            { return s.Name }
func (s SecretInfo) GetNamespace() string       { return s.Namespace }
func (s SecretInfo) GetResourceVersion() string { return s.ResourceVersion }
func (s SecretInfo) StatusText() string         { return s.Type }

// EventInfo contains the displayed attributes of a cluster event.
type EventInfo struct {
	Name            string
	Namespace       string
	Type            string
	Reason          string
	Object          string
	Message         string
	Count           int32
	Age             string
	CreatedAt       time.Time
	ResourceVersion string
}

func (e EventInfo) GetKind() Kind              { return KindEvent }
func (e EventInfo) GetName() string            { return e.Name }
func (e EventInfo) GetNamespace() string       { return e.Namespace }
func (e EventInfo) GetResourceVersion() string { return e.ResourceVersion }
func (e EventInfo) StatusText() string         { return e.Type }

// NamespaceInfo contains the displayed attributes of a namespace.
type NamespaceInfo struct {
	Name            string
	Status          string
	Age             string
	CreatedAt       time.Time
	ResourceVersion string
}

func (n NamespaceInfo) GetKind() Kind              { return KindNamespace }
func (n NamespaceInfo) GetName() string            { return n.Name }
func (n NamespaceInfo) GetNamespace() string       { return "" }
func (n NamespaceInfo) GetResourceVersion() string { return n.ResourceVersion }
func (n NamespaceInfo) StatusText() string         { return n.Status }
