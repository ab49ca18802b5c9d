package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	LogLevel string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.LogLevel,
		"log-level",
		"",
		"log level: debug, info, warn, error (overrides LOG_LEVEL)",
	)
}

// NewRootCommand builds the outline-sync command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "outline-sync",
		Short: "Move and mirror outline documents between local and remote storage",
		Long: `outline-sync keeps the Documents, Attachments and KeyValueStore folders
of an outline library in step with a remote container (a mounted cloud
drive). Enabling remote sync moves the library into the container, disabling
it moves the library back, and the run loop mirrors changes in between.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewEnableCommand())
	rootCmd.AddCommand(NewDisableCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewTrashCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
