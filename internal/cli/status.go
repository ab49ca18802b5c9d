package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type statusFlags struct {
	Output string
}

// statusReport is the machine-readable form of the status command.
type statusReport struct {
	Status    string        `yaml:"status"`
	Local     string        `yaml:"local"`
	Remote    string        `yaml:"remote,omitempty"`
	Available bool          `yaml:"available"`
	LastRun   *lastRunEntry `yaml:"last_run,omitempty"`
}

type lastRunEntry struct {
	RunID     string    `yaml:"run_id"`
	Direction string    `yaml:"direction"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
	Error     string    `yaml:"error,omitempty"`
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync status and remote availability",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return runStatus(cmd, a, flags)
		}),
	}

	cmd.Flags().StringVarP(&flags.Output, "output", "o", "text", "output format: text or yaml")

	return cmd
}

func runStatus(cmd *cobra.Command, a *app, flags *statusFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Look up the container first: losing the account changes the status.
	_, containerErr := a.resolver.Container(ctx)

	status, err := a.engine.Status()
	if err != nil {
		return err
	}

	report := statusReport{
		Status:    status.String(),
		Local:     a.cfg.LocalDir,
		Remote:    a.cfg.RemoteDir,
		Available: containerErr == nil,
	}

	rec, err := a.state.LastMigration()
	if err != nil {
		return err
	}

	if rec != nil {
		report.LastRun = &lastRunEntry{
			RunID:     rec.RunID,
			Direction: rec.Direction,
			Started:   rec.Started,
			Finished:  rec.Finished,
			Error:     rec.Error,
		}
	}

	switch flags.Output {
	case "text", "":
		printStatus(cmd.OutOrStdout(), report)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)

		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", flags.Output)
	}
}

func printStatus(out io.Writer, r statusReport) {
	remote := r.Remote
	if remote == "" {
		remote = "(not configured)"
	}

	available := "no"
	if r.Available {
		available = "yes"
	}

	fmt.Fprintf(out, "Status:     %s\n", r.Status)
	fmt.Fprintf(out, "Local:      %s\n", r.Local)
	fmt.Fprintf(out, "Remote:     %s\n", remote)
	fmt.Fprintf(out, "Available:  %s\n", available)

	if r.LastRun != nil {
		outcome := "ok"
		if r.LastRun.Error != "" {
			outcome = "failed: " + r.LastRun.Error
		}

		fmt.Fprintf(out, "Last run:   %s at %s (%s)\n", r.LastRun.Direction, r.LastRun.Finished.Format(time.RFC3339), outcome)
	}
}
