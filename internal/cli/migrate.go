package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewEnableCommand creates the enable command
func NewEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Move the library into the remote container and turn remote sync on",
		Long: `Move Documents, Attachments and KeyValueStore into the remote container.
Any copy already in the container is replaced, not merged. If a folder
fails to move the status stays unchanged and the command can be re-run.`,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return migrateCommand(cmd, a, true)
		}),
	}
}

// NewDisableCommand creates the disable command
func NewDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Move the library back to local storage and turn remote sync off",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return migrateCommand(cmd, a, false)
		}),
	}
}

func migrateCommand(cmd *cobra.Command, a *app, enable bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	if enable {
		err = a.engine.EnableRemote(ctx)
	} else {
		err = a.engine.DisableRemote(ctx)
	}

	if err != nil {
		return err
	}

	status, err := a.engine.Status()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", status)

	return nil
}
