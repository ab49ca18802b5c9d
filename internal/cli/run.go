package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexjbarnes/outline-sync/internal/syncer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the transfer loop until interrupted",
		Long: `Run a transfer pass every SYNC_INTERVAL and, when WATCH_CHANGES is set,
shortly after files change on either side. Passes are skipped while remote
sync is off. Losing the remote container while sync is on switches it off.`,
		RunE: withApp(runDaemon),
	}
}

func runDaemon(cmd *cobra.Command, _ []string, a *app) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a.logger.Info("outline-sync starting",
		slog.String("version", Version),
		slog.String("local_dir", a.cfg.LocalDir),
		slog.String("remote_dir", a.cfg.RemoteDir),
		slog.Duration("interval", a.cfg.SyncInterval),
		slog.Bool("watch", a.cfg.WatchChanges),
	)

	g, gctx := errgroup.WithContext(ctx)

	var changes <-chan struct{}

	if a.cfg.WatchChanges {
		watcher := syncer.NewWatcher(a.logger, a.cfg.WatchDebounce)
		changes = watcher.Changes()

		dirs := []string{a.cfg.LocalDir}
		if a.cfg.RemoteDir != "" {
			dirs = append(dirs, a.cfg.RemoteDir)
		}

		g.Go(func() error {
			return watcher.Watch(gctx, dirs...)
		})
	}

	g.Go(func() error {
		return a.syncer.Run(gctx, a.cfg.SyncInterval, changes)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		a.logger.Info("outline-sync stopped")
		return nil
	}

	return err
}
