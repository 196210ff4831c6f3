// Package cmd is the CLI surface: `kr` alone starts the interactive view,
// `kr <args...>` hands the arguments straight to kubectl and exits with
// its exit code.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crn4/kr/internal/config"
	"github.com/crn4/kr/internal/k8s"
	"github.com/crn4/kr/internal/kubectl"
	"github.com/crn4/kr/internal/logging"
	"github.com/crn4/kr/internal/session"
	"github.com/crn4/kr/internal/tui"
	"github.com/crn4/kr/internal/watch"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "kr [kubectl-args...]",
	Short:         "Interactive Kubernetes resource viewer",
	Long:          "kr keeps a live view of pods, deployments, secrets and events.\nWith arguments it behaves as a kubectl pass-through.",
	Version:       version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			logging.SetupStderr(slog.LevelWarn)
			os.Exit(kubectl.Run(args))
		}
		return runTUI(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	state := config.LoadState()

	// The TUI owns the terminal, so logs go to a file.
	level := logging.ParseLevel(os.Getenv("KR_LOG_LEVEL"))
	if dir, dirErr := config.Dir(); dirErr == nil {
		if closeLog, logErr := logging.SetupFile(filepath.Join(dir, "kr.log"), level); logErr == nil {
			defer closeLog()
		}
	}

	// The only fatal path: no usable kubeconfig or context.
	client, err := k8s.NewClient(cfg.Exec.Shell)
	if err != nil {
		return fmt.Errorf("connecting to cluster: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	watches := watch.NewManager(client, cfg.Watch.BackoffBase, cfg.Watch.BackoffMax)
	sessions := session.NewManager(ctx, client)
	runner := kubectl.NewRunner(client.GetContext())

	m := tui.NewModel(client, watches, sessions, runner, cfg, state)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Teardown flush; a failed write here is reported but already moot.
	if err := state.Save(); err != nil {
		slog.Warn("saving namespace history failed", "error", err)
	}
	return nil
}
