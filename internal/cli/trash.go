package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/models"
	"github.com/alexjbarnes/outline-sync/internal/trash"
	"github.com/spf13/cobra"
)

type trashFlags struct {
	Root        string
	StopOnError bool
}

// NewTrashCommand creates the trash command group. Trash operations act on
// the local copy; the transfer loop carries them to the remote side.
func NewTrashCommand() *cobra.Command {
	flags := &trashFlags{}

	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Delete, recover and purge documents and attachments",
	}

	cmd.PersistentFlags().StringVarP(&flags.Root, "root", "r", "documents", "storage root: documents, attachments or kv")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List items in the trash",
		Args:  cobra.NoArgs,
		RunE: withTrash(flags, false, func(cmd *cobra.Command, _ []string, m *trash.Manager) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			entries, err := m.List(ctx)
			if err != nil {
				return err
			}

			for _, e := range entries {
				at := "-"
				if !e.TrashedAt.IsZero() {
					at = e.TrashedAt.Local().Format(time.DateTime)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %-19s %s\n", e.Name, at, e.Path)
			}

			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <path>",
		Short: "Move an item to the trash, or purge it if it is already there",
		Args:  cobra.ExactArgs(1),
		RunE: withTrash(flags, true, func(cmd *cobra.Command, args []string, m *trash.Manager) error {
			p, err := m.Remove(args[0])
			if err != nil {
				return err
			}

			if p == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "trashed %s -> %s\n", args[0], p)
			}

			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recover <path>",
		Short: "Restore a trashed item",
		Args:  cobra.ExactArgs(1),
		RunE: withTrash(flags, true, func(cmd *cobra.Command, args []string, m *trash.Manager) error {
			p, err := m.Recover(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recovered %s\n", p)

			return nil
		}),
	})

	purge := &cobra.Command{
		Use:   "purge <path>...",
		Short: "Permanently delete trashed items, one at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: withTrash(flags, true, func(cmd *cobra.Command, args []string, m *trash.Manager) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if errs := m.PurgeAll(ctx, args, flags.StopOnError); len(errs) > 0 {
				return errors.Join(errs...)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d item(s)\n", len(args))

			return nil
		}),
	}
	purge.Flags().BoolVar(&flags.StopOnError, "stop-on-error", false, "stop at the first failure")
	cmd.AddCommand(purge)

	cmd.AddCommand(&cobra.Command{
		Use:   "empty",
		Short: "Permanently delete everything in the trash",
		Args:  cobra.NoArgs,
		RunE: withTrash(flags, true, func(cmd *cobra.Command, _ []string, m *trash.Manager) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			return m.Empty(ctx)
		}),
	})

	return cmd
}

// withTrash builds the trash manager for the selected root. While remote
// sync is on, commands that recover or purge also need the remote copy,
// otherwise the next transfer pass would undo them.
func withTrash(flags *trashFlags, needPeer bool, fn func(cmd *cobra.Command, args []string, m *trash.Manager) error) func(*cobra.Command, []string) error {
	return withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		root, err := models.ParseStorageRoot(flags.Root)
		if err != nil {
			return err
		}

		store, err := a.resolver.Store(ctx, root, models.LocationLocal)
		if err != nil {
			return err
		}

		var opts []trash.Option

		if needPeer {
			status, err := a.engine.Status()
			if err != nil {
				return err
			}

			if status == models.StatusOn {
				remote, err := a.resolver.Store(ctx, root, models.LocationRemote)
				if err != nil {
					return fmt.Errorf("remote copy needed while sync is on: %w", err)
				}

				opts = append(opts, trash.WithPeer(remote))
			}
		}

		return fn(cmd, args, trash.NewManager(store, a.logger, opts...))
	})
}
