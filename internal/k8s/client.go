package k8s

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/crn4/kr/internal/domain"
)

const (
	// listPageLimit bounds a single list page; list methods follow the
	// continue token until the server reports no more pages.
	listPageLimit = 500
	// requestTimeout bounds unary calls. Watches, log follows and exec
	// streams run on the caller's context instead, which is why the rest
	// config carries no global timeout.
	requestTimeout = 10 * time.Second
)

// Client wraps the Kubernetes clientset and connection metadata.
// It implements domain.KubeGateway.
type Client struct {
	clientset      kubernetes.Interface
	config         *rest.Config
	kubeconfigPath string
	context        string
	serverURL      string
	namespace      string
	contexts       []string
	shell          string
}

// Compile-time check that Client implements domain.KubeGateway.
var _ domain.KubeGateway = (*Client)(nil)

// --- ClusterInfo implementation ---

func (c *Client) GetContext() string       { return c.context }
func (c *Client) GetServerURL() string     { return c.serverURL }
func (c *Client) DefaultNamespace() string { return c.namespace }

func (c *Client) ListContexts() ([]string, error) {
	return c.contexts, nil
}

// NewClient creates a client from the kubeconfig's current context. shell
// is the command ExecShell runs in the target container; empty means
// /bin/sh.
func NewClient(shell string) (*Client, error) {
	return newClient("", shell)
}

func newClient(contextName, shell string) (*Client, error) {
	if shell == "" {
		shell = "/bin/sh"
	}

	kubeconfigPath := os.Getenv("KUBECONFIG")
	if kubeconfigPath == "" {
		home, _ := os.UserHomeDir()
		kubeconfigPath = filepath.Join(home, ".kube", "config")
	}

	if _, err := os.Stat(kubeconfigPath); os.IsNotExist(err) {
		return nil, &domain.APIError{
			Type:    domain.ErrNoKubeconfig,
			Message: fmt.Sprintf("no kubeconfig found\nlooked at: %s\nset KUBECONFIG or log in to a cluster first", kubeconfigPath),
			Err:     err,
		}
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)

	rawConfig, err := kubeConfig.RawConfig()
	if err != nil {
		return nil, &domain.APIError{
			Type:    domain.ErrBadKubeconfig,
			Message: fmt.Sprintf("invalid kubeconfig: %v", err),
			Err:     err,
		}
	}

	current := rawConfig.CurrentContext
	if contextName != "" {
		current = contextName
	}
	if current == "" {
		return nil, &domain.APIError{
			Type:    domain.ErrNoContext,
			Message: "no current context in the kubeconfig\nrun: kubectl config use-context <name>",
		}
	}
	ctxEntry, ok := rawConfig.Contexts[current]
	if !ok {
		return nil, &domain.APIError{
			Type:    domain.ErrBadKubeconfig,
			Message: fmt.Sprintf("context %q not found in the kubeconfig", current),
		}
	}

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, &domain.APIError{
			Type:    domain.ErrBadKubeconfig,
			Message: fmt.Sprintf("cannot build client config: %v", err),
			Err:     err,
		}
	}

	// Snappy TUI rates; the timeout stays zero so streams are not severed.
	restConfig.QPS = 50
	restConfig.Burst = 100

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, &domain.APIError{
			Type:    domain.ErrUnknown,
			Message: fmt.Sprintf("cannot build clientset: %v", err),
			Err:     err,
		}
	}

	namespace, _, _ := kubeConfig.Namespace()
	if namespace == "" {
		namespace = "default"
	}

	serverURL := ""
	if clusterInfo, ok := rawConfig.Clusters[ctxEntry.Cluster]; ok {
		serverURL = clusterInfo.Server
	}

	contexts := make([]string, 0, len(rawConfig.Contexts))
	for name := range rawConfig.Contexts {
		contexts = append(contexts, name)
	}
	sort.Strings(contexts)

	return &Client{
		clientset:      clientset,
		config:         restConfig,
		kubeconfigPath: kubeconfigPath,
		context:        current,
		serverURL:      serverURL,
		namespace:      namespace,
		contexts:       contexts,
		shell:          shell,
	}, nil
}

// SwitchContext rebuilds the connection against another kubeconfig
// context. The current connection is replaced only on success.
func (c *Client) SwitchContext(name string) error {
	next, err := newClient(name, c.shell)
	if err != nil {
		return err
	}
	c.adopt(next)
	return nil
}

// Reconnect reloads the kubeconfig from disk and recreates the clientset,
// keeping the active context.
func (c *Client) Reconnect() error {
	next, err := newClient(c.context, c.shell)
	if err != nil {
		return err
	}
	c.adopt(next)
	return nil
}

func (c *Client) adopt(next *Client) {
	c.clientset = next.clientset
	c.config = next.config
	c.kubeconfigPath = next.kubeconfigPath
	c.context = next.context
	c.serverURL = next.serverURL
	c.namespace = next.namespace
	c.contexts = next.contexts
}

// requestContext bounds a unary API call.
func requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, requestTimeout)
}

// classifyError converts a raw K8s error into a domain.APIError.
func classifyError(err error, serverURL string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.APIError{
			Type:    domain.ErrUnreachable,
			Message: fmt.Sprintf("request to %s timed out", serverURL),
			Err:     err,
		}
	}

	var statusErr *k8serrors.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.Status().Code
		switch {
		case code == http.StatusUnauthorized:
			target := "the cluster"
			if serverURL != "" {
				target = serverURL
			}
			return &domain.APIError{
				Type:    domain.ErrTokenExpired,
				Message: fmt.Sprintf("session expired for %s\nrefresh your credentials, then press 'r' to reconnect", target),
				Err:     err,
			}
		case code == http.StatusForbidden:
			return &domain.APIError{
				Type:    domain.ErrForbidden,
				Message: statusErr.Status().Message,
				Err:     err,
			}
		case code == http.StatusNotFound:
			return &domain.APIError{
				Type:    domain.ErrNotFound,
				Message: statusErr.Status().Message,
				Err:     err,
			}
		case code == http.StatusConflict:
			return &domain.APIError{
				Type:    domain.ErrConflict,
				Message: "conflict: the resource changed underneath, retry",
				Err:     err,
			}
		case code == http.StatusGone:
			return &domain.APIError{
				Type:    domain.ErrStaleCursor,
				Message: "too old resource version, relisting",
				Err:     err,
			}
		case code == http.StatusTooManyRequests:
			return &domain.APIError{
				Type:    domain.ErrRateLimited,
				Message: "rate limited by the API server",
				Err:     err,
			}
		case code >= 500:
			return &domain.APIError{
				Type:    domain.ErrServerError,
				Message: fmt.Sprintf("server error (%d), press 'r' to retry", code),
				Err:     err,
			}
		}
	}
	if k8serrors.IsResourceExpired(err) {
		return &domain.APIError{
			Type:    domain.ErrStaleCursor,
			Message: "too old resource version, relisting",
			Err:     err,
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") {
		return &domain.APIError{
			Type:    domain.ErrTLS,
			Message: fmt.Sprintf("TLS certificate problem for %s\ncheck your kubeconfig", serverURL),
			Err:     err,
		}
	}
	if strings.Contains(errStr, "dial tcp") || strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return &domain.APIError{
			Type:    domain.ErrUnreachable,
			Message: fmt.Sprintf("cluster unreachable: %s\n%v", serverURL, err),
			Err:     err,
		}
	}

	return &domain.APIError{
		Type:    domain.ErrUnknown,
		Message: err.Error(),
		Err:     err,
	}
}
