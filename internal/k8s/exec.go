package k8s

import (
	"context"
	"io"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"

	"github.com/crn4/kr/internal/domain"
)

// ExecShell runs an interactive shell in the container over SPDY with a
// TTY attached. It blocks until the remote process exits, the transport
// fails, or ctx is cancelled. stderr is merged into stdout by the TTY.
func (c *Client) ExecShell(ctx context.Context, namespace, pod, container string, stdin io.Reader, stdout io.Writer, resize domain.ShellSizeQueue) error {
	opts := &corev1.PodExecOptions{
		Command: []string{c.shell},
		Stdin:   true,
		Stdout:  true,
		TTY:     true,
	}
	if container != "" {
		opts.Container = container
	}

	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(opts, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.config, "POST", req.URL())
	if err != nil {
		return classifyError(err, c.serverURL)
	}

	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:             stdin,
		Stdout:            stdout,
		Tty:               true,
		TerminalSizeQueue: &remoteSizeQueue{inner: resize},
	})
	if err != nil {
		return classifyError(err, c.serverURL)
	}
	return nil
}

// remoteSizeQueue adapts the session's resize queue to the transport's
// interface. A nil from either side ends the resize loop.
type remoteSizeQueue struct {
	inner domain.ShellSizeQueue
}

func (q *remoteSizeQueue) Next() *remotecommand.TerminalSize {
	size := q.inner.Next()
	if size == nil {
		return nil
	}
	return &remotecommand.TerminalSize{Width: size.Width, Height: size.Height}
}
