package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"greptui/internal/config"
	"greptui/internal/domain"
	"greptui/internal/eventbus"
	"greptui/internal/git"
	"greptui/internal/history"
	"greptui/internal/logging"
	"greptui/internal/ui"
	"greptui/internal/ui/coordinator"
	"greptui/internal/ui/input/keymap"
	"greptui/internal/ui/services/search"
)

// initialQuery combines the configured default flags with the command line.
// An engine flag given on the command line replaces the configured engine.
// dash is the number of arguments before "--", or -1 when there was none.
func initialQuery(base domain.Flags, set []domain.Flag, pattern *string, args []string, dash int) (domain.Query, error) {
	q := domain.Query{Flags: base}

	var engine domain.Flag
	for _, f := range set {
		if !f.IsEngine() {
			continue
		}
		if engine != 0 {
			return domain.Query{}, fmt.Errorf("--%s and --%s cannot be combined", engine, f)
		}
		engine = f
	}
	if engine != 0 {
		for _, f := range domain.EngineFlags {
			q.Flags = q.Flags.Without(f)
		}
	}
	for _, f := range set {
		q.Flags = q.Flags.With(f)
	}

	switch {
	case pattern != nil:
		q.Pattern = *pattern
		q.Paths = args
	case dash == 0:
		q.Paths = args
	case len(args) > 0:
		q.Pattern = args[0]
		q.Paths = args[1:]
	}
	if len(q.Paths) == 0 {
		q.Paths = nil
	}
	return q, nil
}

func checkTerminal() error {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return domain.NewStartupError(nil, "%s is not a terminal", f.Name())
		}
	}
	return nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	bus := eventbus.New()
	defer bus.Close()

	cfg, err := config.NewConfigServiceWithBus(bus, opts.configPath).Load()
	if err != nil {
		return domain.NewStartupError(err, "%v", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	closer, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Interactive: true})
	if err != nil {
		return domain.NewStartupError(err, "%v", err)
	}
	defer closer.Close()
	log := logging.NewLogger("main")

	var pattern *string
	if cmd.Flags().Changed("regexp") {
		pattern = &opts.pattern
	}
	initial, err := initialQuery(cfg.Search.DefaultFlags(), opts.set(), pattern, args, cmd.ArgsLenAtDash())
	if err != nil {
		return err
	}
	initial.AndPattern = opts.andPattern
	initial.NotPattern = opts.notPattern

	keys := keymap.Default()
	keymap.ApplyOverrides(&keys, cfg.Keys)
	for _, name := range keymap.UnknownOverrides(cfg.Keys) {
		log.WithField("action", name).Warn("unknown action in [keys]")
	}

	if err := checkTerminal(); err != nil {
		return err
	}
	if !initial.Flags.Has(domain.NoIndex) {
		if err := git.CheckRepository(cmd.Context(), &git.RealExecutor{}, cfg.Search.GitBinary, ""); err != nil {
			return err
		}
	}

	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			log.WithError(ev.Err).Warn(ev.Message)
		}
	})

	grepper := git.NewGrepper(
		git.WithBinary(cfg.Search.GitBinary),
		git.WithMaxResults(cfg.Search.MaxResults),
	)
	coordOpts := []coordinator.Option{
		coordinator.WithBus(bus),
		coordinator.WithLegend(cfg.UISettings.ShowLegend),
	}
	var recorder *history.Recorder
	if cfg.History.Enabled {
		store := history.NewStore(cfg.History.File, cfg.History.Limit)
		entries, err := store.Load()
		if err != nil {
			log.WithError(err).Warn("ignoring search history")
			entries = nil
		}
		recorder = history.NewRecorder(store, bus, entries)
		coordOpts = append(coordOpts, coordinator.WithHistory(history.Queries(entries), cfg.History.Limit))
	}

	runner := search.NewService(grepper.Grep, bus)
	// stop searching and drain the bus before the recorder unsubscribes so
	// the last completion is recorded
	defer func() {
		runner.Close()
		bus.Close()
		if recorder != nil {
			recorder.Close()
		}
	}()

	coord := coordinator.NewCoordinator(runner, initial, coordOpts...)
	model := ui.NewModel(coord, runner, ui.Options{
		Keys:           keys,
		PreviewContext: cfg.UISettings.PreviewContext,
	})
	if initial.Pattern != "" {
		model.Commit()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	log.WithField("command", git.CommandLine(initial)).Info("starting")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run UI: %w", err)
	}

	if q, ok := model.LastCommitted(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), git.CommandLine(q))
	}
	return nil
}
