// Package main is the entry point for the armusicd daemon.
// armusicd owns music playback, the queue and radio policy, lyric sync and playlists,
// and serves clients over a Unix socket and an optional HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// Version is set at build time via ldflags
var Version = "dev"

const stopTimeout = 15 * time.Second

// Options holds the command-line options
type Options struct {
	SocketPath string
	ConfigDir  string
	Verbose    bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:     "armusicd",
		Short:   "Music playback and queue daemon",
		Version: Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&opts.SocketPath, "socket", "", "IPC socket path (default: /tmp/armusicd-<uid>.sock)")
	cmd.Flags().StringVar(&opts.ConfigDir, "config", "", "Configuration directory (default: ~/.config/armusicd)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	return cmd
}

// resolve fills in defaults for unset options
func (o *Options) resolve() error {
	if o.ConfigDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to find config directory: %w", err)
		}
		o.ConfigDir = filepath.Join(dir, "armusicd")
	}
	if o.SocketPath == "" {
		o.SocketPath = fmt.Sprintf("/tmp/armusicd-%d.sock", os.Getuid())
	}
	return nil
}

func run(parent context.Context, opts Options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := fx.New(AppOptions(opts))

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop cleanly: %w", err)
	}
	return nil
}
