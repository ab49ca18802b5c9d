package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexjbarnes/outline-sync/internal/diff"
	apperrors "github.com/alexjbarnes/outline-sync/internal/errors"
	"github.com/alexjbarnes/outline-sync/internal/models"
	"github.com/spf13/cobra"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [root]",
		Short: "Show pending transfers without changing anything",
		Long: `List the files that the next transfer pass would push, pull or move to
the trash. With no argument every root is shown; root is one of documents,
attachments or kv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runPlan),
	}
}

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a single transfer pass",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if err := requireOn(a); err != nil {
				return err
			}

			res, err := a.syncer.SyncOnce(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d, pulled %d, trashed %d\n", res.Pushed, res.Pulled, res.Trashed)

			return err
		}),
	}
}

func requireOn(a *app) error {
	status, err := a.engine.Status()
	if err != nil {
		return err
	}

	if status != models.StatusOn {
		return fmt.Errorf("status is %s: %w", status, apperrors.ErrSyncDisabled)
	}

	return nil
}

func rootsFromArgs(args []string) ([]models.StorageRoot, error) {
	if len(args) == 0 {
		return models.AllRoots, nil
	}

	root, err := models.ParseStorageRoot(args[0])
	if err != nil {
		return nil, err
	}

	return []models.StorageRoot{root}, nil
}

func runPlan(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	roots, err := rootsFromArgs(args)
	if err != nil {
		return err
	}

	if err := requireOn(a); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	for _, root := range roots {
		plan, err := a.syncer.Plan(ctx, root)
		if err != nil {
			return fmt.Errorf("planning %s: %w", root, err)
		}

		printPlan(out, root, plan)
	}

	return nil
}

func printPlan(out io.Writer, root models.StorageRoot, plan diff.Plan) {
	if plan.Empty() {
		fmt.Fprintf(out, "%s: up to date\n", root)
		return
	}

	fmt.Fprintf(out, "%s:\n", root)

	for _, p := range plan.Push {
		fmt.Fprintf(out, "  push          %s\n", p)
	}

	for _, p := range plan.Pull {
		fmt.Fprintf(out, "  pull          %s\n", p)
	}

	for _, p := range plan.TrashRemote {
		fmt.Fprintf(out, "  trash remote  %s\n", p)
	}

	for _, p := range plan.TrashLocal {
		fmt.Fprintf(out, "  trash local   %s\n", p)
	}
}
