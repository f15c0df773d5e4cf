// notibus is the per-session notification receiver. It listens for
// notification signals on the message bus and shows the ones addressed to
// the current user on the desktop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/llehouerou/notibus/internal/bus"
	"github.com/llehouerou/notibus/internal/config"
	"github.com/llehouerou/notibus/internal/errmsg"
	"github.com/llehouerou/notibus/internal/history"
	"github.com/llehouerou/notibus/internal/identity"
	"github.com/llehouerou/notibus/internal/notify"
	"github.com/llehouerou/notibus/internal/receiver"
)

type options struct {
	configPath string
	busName    string
	history    int
	debug      bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "notibus: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options

	flagSet := pflag.NewFlagSet("notibus", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "read configuration from this file only")
	flagSet.StringVar(&opts.busName, "bus", "", `bus to listen on: "system" or "session" (default from config: system)`)
	flagSet.IntVar(&opts.history, "history", 0, "print the last N delivery records and exit")
	flagSet.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpConfigLoad, opts.configPath, err))
	}
	if opts.busName != "" {
		cfg.Bus = opts.busName
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.history > 0 {
		return showHistory(cfg, opts.history)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return listen(ctx, cfg, logger)
}

func listen(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	kind, err := bus.ParseKind(cfg.Bus)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	id, err := identity.Resolve(identity.OSProvider{}, cfg.AdminGroups)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpIdentityResolve, err))
	}
	logger.Info("notibus started",
		"user", id.User,
		"groups", id.Groups,
		"admin", id.IsAdmin,
		"bus", kind,
	)

	conn, err := bus.Connect(kind)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpBusConnect, err))
	}
	defer conn.Close()

	listenerOpts := receiver.Options{Logger: logger}
	if cfg.HistoryEnabled() {
		store, err := openHistory(cfg)
		if err != nil {
			// The log is optional; keep receiving without it.
			logger.Warn(errmsg.Format(errmsg.OpHistoryOpen, err))
		} else {
			defer store.Close()
			listenerOpts.Recorder = store
		}
	}

	sink := notify.New(notify.Options{AppName: cfg.AppName, DesktopEntry: cfg.DesktopEntry})
	listener := receiver.New(id, sink, listenerOpts)

	if err := listener.Serve(ctx, conn); err != nil {
		return errors.New(errmsg.Format(errmsg.OpListen, err))
	}
	return nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(path, cfg.History.MaxEntries)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `notibus - desktop notification receiver

Listens for notifications published with notibus-send and displays the ones
addressed to the current user. Runs until interrupted.

Usage:
  notibus [flags]

Flags:
%s`, flagSet.FlagUsages())
}
