package kubectl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/crn4/kr/internal/domain"
)

// LookPathFunc allows overriding exec.LookPath for testing.
var LookPathFunc = exec.LookPath

// captureTimeout bounds non-interactive kubectl invocations such as
// describe. Interactive ones (edit, pass-through) own the terminal and
// run without a deadline.
const captureTimeout = 10 * time.Second

// Runner shells out to the kubectl binary for the operations the client
// delegates to the real CLI instead of the API server: describe, edit
// and the raw pass-through mode. Every invocation pins --context so the
// external tool acts on the cluster the client is connected to, not on
// whatever the kubeconfig file currently points at.
type Runner struct {
	contextName string
}

func NewRunner(contextName string) *Runner {
	return &Runner{contextName: contextName}
}

// SetContext repoints subsequent invocations after an in-app context
// switch.
func (r *Runner) SetContext(contextName string) {
	r.contextName = contextName
}

func (r *Runner) binary() (string, error) {
	path, err := LookPathFunc("kubectl")
	if err != nil {
		return "", &domain.APIError{
			Type:    domain.ErrValidation,
			Message: "kubectl not found in PATH",
			Err:     err,
		}
	}
	return path, nil
}

func (r *Runner) contextArgs(args []string) []string {
	if r.contextName != "" {
		args = append(args, "--context", r.contextName)
	}
	return args
}

// Capture runs kubectl with the given arguments and returns its standard
// output and exit code. On a non-zero exit the error carries the trimmed
// stderr text, which is what kubectl uses for diagnostics.
func (r *Runner) Capture(ctx context.Context, args ...string) (string, int, error) {
	bin, err := r.binary()
	if err != nil {
		return "", -1, err
	}

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, r.contextArgs(args)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return stdout.String(), -1, fmt.Errorf("kubectl timed out after %s", captureTimeout)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return stdout.String(), exitCode(runErr), errors.New(msg)
	}
	return stdout.String(), 0, nil
}

// Describe fetches `kubectl describe` output for one resource.
func (r *Runner) Describe(ctx context.Context, kind domain.Kind, namespace, name string) (string, error) {
	args := []string{"describe", kindArg(kind), name, "-n", namespace}
	out, _, err := r.Capture(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("describe failed: %w", err)
	}
	return out, nil
}

// EditCmd builds the `kubectl edit` invocation for one resource. The
// command inherits the terminal, so the caller must suspend the UI while
// it runs.
func (r *Runner) EditCmd(kind domain.Kind, namespace, name string) (*exec.Cmd, error) {
	bin, err := r.binary()
	if err != nil {
		return nil, err
	}
	args := []string{"edit", kindArg(kind), name, "-n", namespace}
	return exec.Command(bin, r.contextArgs(args)...), nil
}

// Run executes kubectl with the caller's stdio attached and returns the
// exit code, for the pass-through mode. The arguments go through
// verbatim, no context pinning.
func Run(args []string) int {
	bin, err := LookPathFunc("kubectl")
	if err != nil {
		fmt.Fprintln(os.Stderr, "kubectl not found in PATH")
		return 127
	}

	cmd := exec.Command(bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if code := exitCode(err); code >= 0 {
			return code
		}
		fmt.Fprintf(os.Stderr, "kubectl: %v\n", err)
		return 1
	}
	return 0
}

// exitCode extracts the process exit code, or -1 when the error is not
// an exit status at all (binary missing, signal, setup failure).
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func kindArg(kind domain.Kind) string {
	return strings.ToLower(string(kind))
}
