// Package cli wires the outline-sync components into cobra commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/alexjbarnes/outline-sync/internal/config"
	"github.com/alexjbarnes/outline-sync/internal/docstore"
	"github.com/alexjbarnes/outline-sync/internal/events"
	"github.com/alexjbarnes/outline-sync/internal/location"
	"github.com/alexjbarnes/outline-sync/internal/logging"
	"github.com/alexjbarnes/outline-sync/internal/migrate"
	"github.com/alexjbarnes/outline-sync/internal/state"
	"github.com/alexjbarnes/outline-sync/internal/syncer"
	"github.com/spf13/cobra"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	state    *state.State
	bus      *events.Bus
	resolver *location.Resolver
	engine   *migrate.Engine
	syncer   *syncer.Syncer
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if globalFlags.LogLevel != "" {
		cfg.LogLevel = globalFlags.LogLevel
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	var st *state.State
	if cfg.StateDB != "" {
		st, err = state.LoadAt(cfg.StateDB)
	} else {
		st, err = state.Load()
	}

	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	bus := events.NewBus()
	bus.Subscribe(events.LogSink{Logger: logger}.Emit)

	resolver := location.NewResolver(cfg.LocalDir, location.DirLocator{Dir: cfg.RemoteDir}, bus, logger)
	engine := migrate.NewEngine(st, resolver, docstore.FS{}, bus, logger,
		migrate.WithTimeout(cfg.MigrationTimeout),
		migrate.WithHistory(st),
	)

	bus.Subscribe(func(e events.Event) {
		ev, ok := e.(events.AccountAvailabilityChanged)
		if !ok {
			return
		}

		if err := engine.HandleAccountAvailability(ev.Available); err != nil {
			logger.Warn("handling account availability", slog.String("error", err.Error()))
		}
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		state:    st,
		bus:      bus,
		resolver: resolver,
		engine:   engine,
		syncer:   syncer.New(st, resolver, bus, logger),
	}, nil
}

func (a *app) Close() error {
	return a.state.Close()
}

// withApp adapts a command body that needs the app into a cobra RunE.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}
