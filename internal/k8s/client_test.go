package k8s

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/crn4/kr/internal/domain"
)

func statusError(code int32, message string) *k8serrors.StatusError {
	return &k8serrors.StatusError{
		ErrStatus: metav1.Status{Code: code, Message: message},
	}
}

func classifiedType(t *testing.T, err error) domain.ErrType {
	t.Helper()
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	return apiErr.Type
}

func TestClassifyError_Nil(t *testing.T) {
	if err := classifyError(nil, "https://api.cluster:6443"); err != nil {
		t.Errorf("classifyError(nil) = %v, want nil", err)
	}
}

func TestClassifyError_CanceledPassesThrough(t *testing.T) {
	err := classifyError(context.Canceled, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("classifyError(Canceled) = %v, want context.Canceled", err)
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		t.Error("a local cancellation should not be wrapped")
	}
}

func TestClassifyError_DeadlineIsUnreachable(t *testing.T) {
	if got := classifiedType(t, classifyError(context.DeadlineExceeded, "https://api:6443")); got != domain.ErrUnreachable {
		t.Errorf("Type = %v, want ErrUnreachable", got)
	}
}

func TestClassifyError_401(t *testing.T) {
	k8sErr := statusError(http.StatusUnauthorized, "")
	err := classifyError(k8sErr, "https://api.my-cluster.com:6443")

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Type != domain.ErrTokenExpired {
		t.Errorf("Type = %v, want ErrTokenExpired", apiErr.Type)
	}
	if apiErr.Unwrap() != k8sErr {
		t.Error("Unwrap should return the original error")
	}
	if !strings.Contains(apiErr.Message, "api.my-cluster.com") {
		t.Errorf("401 message should name the server, got: %s", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "'r'") {
		t.Errorf("401 message should point at reconnect, got: %s", apiErr.Message)
	}
}

func TestClassifyError_403(t *testing.T) {
	err := classifyError(statusError(http.StatusForbidden, "pods is forbidden"), "")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Type != domain.ErrForbidden {
		t.Errorf("Type = %v, want ErrForbidden", apiErr.Type)
	}
	if apiErr.Message != "pods is forbidden" {
		t.Errorf("Message = %q, want the server's message", apiErr.Message)
	}
	if !domain.IsForbidden(err) {
		t.Error("IsForbidden() should report true")
	}
}

func TestClassifyError_404(t *testing.T) {
	if got := classifiedType(t, classifyError(statusError(http.StatusNotFound, "pod not found"), "")); got != domain.ErrNotFound {
		t.Errorf("Type = %v, want ErrNotFound", got)
	}
}

func TestClassifyError_409(t *testing.T) {
	if got := classifiedType(t, classifyError(statusError(http.StatusConflict, ""), "")); got != domain.ErrConflict {
		t.Errorf("Type = %v, want ErrConflict", got)
	}
}

func TestClassifyError_410IsStaleCursor(t *testing.T) {
	err := classifyError(statusError(http.StatusGone, "too old resource version: 1 (500)"), "")
	if !domain.IsStaleCursor(err) {
		t.Errorf("IsStaleCursor() = false for %v", err)
	}
}

func TestClassifyError_ResourceExpired(t *testing.T) {
	k8sErr := k8serrors.NewResourceExpired("too old resource version: 1 (500)")
	if !domain.IsStaleCursor(classifyError(k8sErr, "")) {
		t.Error("NewResourceExpired should classify as stale cursor")
	}
}

func TestClassifyError_429(t *testing.T) {
	if got := classifiedType(t, classifyError(statusError(http.StatusTooManyRequests, ""), "")); got != domain.ErrRateLimited {
		t.Errorf("Type = %v, want ErrRateLimited", got)
	}
}

func TestClassifyError_5xx(t *testing.T) {
	for _, code := range []int32{500, 502, 503} {
		if got := classifiedType(t, classifyError(statusError(code, ""), "")); got != domain.ErrServerError {
			t.Errorf("Type for %d = %v, want ErrServerError", code, got)
		}
	}
}

func TestClassifyError_TLS(t *testing.T) {
	tests := []string{
		"x509: certificate signed by unknown authority",
		"tls: handshake failure",
		"certificate is not valid",
	}
	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			if got := classifiedType(t, classifyError(errors.New(msg), "https://api:6443")); got != domain.ErrTLS {
				t.Errorf("Type = %v, want ErrTLS for %q", got, msg)
			}
		})
	}
}

func TestClassifyError_Unreachable(t *testing.T) {
	tests := []string{
		"dial tcp 10.0.0.1:6443: i/o timeout",
		"dial tcp: lookup api.cluster: no such host",
		"connection refused",
	}
	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			if got := classifiedType(t, classifyError(errors.New(msg), "https://api:6443")); got != domain.ErrUnreachable {
				t.Errorf("Type = %v, want ErrUnreachable for %q", got, msg)
			}
		})
	}
}

func TestClassifyError_Unknown(t *testing.T) {
	if got := classifiedType(t, classifyError(errors.New("some random error"), "")); got != domain.ErrUnknown {
		t.Errorf("Type = %v, want ErrUnknown", got)
	}
}

const testKubeconfig = `apiVersion: v1
kind: Config
current-context: dev
clusters:
- cluster:
    server: https://dev.example.com:6443
  name: dev-cluster
contexts:
- context:
    cluster: dev-cluster
    user: dev-user
    namespace: team-a
  name: dev
- context:
    cluster: dev-cluster
    user: dev-user
  name: prod
users:
- name: dev-user
  user:
    token: abc
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewClient_MissingKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", filepath.Join(t.TempDir(), "nope"))

	_, err := NewClient("")
	if got := classifiedType(t, err); got != domain.ErrNoKubeconfig {
		t.Errorf("Type = %v, want ErrNoKubeconfig", got)
	}
}

func TestNewClient_MalformedKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t, "{not yaml: ["))

	_, err := NewClient("")
	if got := classifiedType(t, err); got != domain.ErrBadKubeconfig {
		t.Errorf("Type = %v, want ErrBadKubeconfig", got)
	}
}

func TestNewClient_NoCurrentContext(t *testing.T) {
	cfg := strings.Replace(testKubeconfig, "current-context: dev\n", "", 1)
	t.Setenv("KUBECONFIG", writeKubeconfig(t, cfg))

	_, err := NewClient("")
	if got := classifiedType(t, err); got != domain.ErrNoContext {
		t.Errorf("Type = %v, want ErrNoContext", got)
	}
}

func TestNewClient_ReadsContextMetadata(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t, testKubeconfig))

	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.GetContext() != "dev" {
		t.Errorf("GetContext() = %q, want %q", c.GetContext(), "dev")
	}
	if c.GetServerURL() != "https://dev.example.com:6443" {
		t.Errorf("GetServerURL() = %q", c.GetServerURL())
	}
	if c.DefaultNamespace() != "team-a" {
		t.Errorf("DefaultNamespace() = %q, want %q", c.DefaultNamespace(), "team-a")
	}
	contexts, err := c.ListContexts()
	if err != nil {
		t.Fatalf("ListContexts() error = %v", err)
	}
	if !reflect.DeepEqual(contexts, []string{"dev", "prod"}) {
		t.Errorf("ListContexts() = %v, want [dev prod]", contexts)
	}
	if c.shell != "/bin/sh" {
		t.Errorf("shell = %q, want default /bin/sh", c.shell)
	}
}

func TestSwitchContext(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t, testKubeconfig))

	c, err := NewClient("/bin/bash")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := c.SwitchContext("prod"); err != nil {
		t.Fatalf("SwitchContext() error = %v", err)
	}
	if c.GetContext() != "prod" {
		t.Errorf("GetContext() = %q, want %q", c.GetContext(), "prod")
	}
	// The prod context has no namespace bound.
	if c.DefaultNamespace() != "default" {
		t.Errorf("DefaultNamespace() = %q, want %q", c.DefaultNamespace(), "default")
	}
	if c.shell != "/bin/bash" {
		t.Errorf("shell = %q, should survive the switch", c.shell)
	}
}

func TestSwitchContext_UnknownContextKeepsConnection(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t, testKubeconfig))

	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	err = c.SwitchContext("missing")
	if got := classifiedType(t, err); got != domain.ErrBadKubeconfig {
		t.Errorf("Type = %v, want ErrBadKubeconfig", got)
	}
	if c.GetContext() != "dev" {
		t.Errorf("GetContext() = %q, the old connection should remain", c.GetContext())
	}
}

func TestReconnect_KeepsActiveContext(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t, testKubeconfig))

	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := c.SwitchContext("prod"); err != nil {
		t.Fatalf("SwitchContext() error = %v", err)
	}
	if err := c.Reconnect(); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	// Reconnect reloads from disk but must not fall back to the
	// kubeconfig's current-context.
	if c.GetContext() != "prod" {
		t.Errorf("GetContext() = %q, want %q", c.GetContext(), "prod")
	}
}
