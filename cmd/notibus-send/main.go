// notibus-send publishes a desktop notification to every notibus receiver
// on the message bus. Receivers decide for themselves whether they are
// addressed.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/llehouerou/notibus/internal/bus"
	"github.com/llehouerou/notibus/internal/config"
	"github.com/llehouerou/notibus/internal/errmsg"
	"github.com/llehouerou/notibus/internal/notification"
	"github.com/llehouerou/notibus/internal/recipients"
	"github.com/llehouerou/notibus/internal/sender"
	"github.com/llehouerou/notibus/internal/ui/styles"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "notibus-send: %v\n", err)
		}
		os.Exit(1)
	}
}

// errReported means the failure was already printed.
var errReported = errors.New("reported")

func run(args []string, stdout, stderr io.Writer) error {
	a, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, errHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpConfigLoad, a.configPath, err))
	}
	a.applyDefaults(cfg)

	kind, err := bus.ParseKind(a.busName)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s := styles.T().S()

	pub, closeBus, err := sender.Dial(kind, logger)
	if err != nil {
		fmt.Fprintln(stderr, s.Error.Render("✗ "+errmsg.Format(errmsg.OpBusConnect, err)))
		return errReported
	}
	defer closeBus()

	if _, err := publish(pub, a); err != nil {
		fmt.Fprintln(stderr, s.Error.Render("✗ "+errmsg.FormatWith(errmsg.OpSend, a.title, err)))
		return errReported
	}

	fmt.Fprintf(stdout, "%s %s\n", s.Success.Render("✓ Notification sent:"), s.Title.Render(a.title))
	fmt.Fprintf(stdout, "  %s %s\n", s.Muted.Render("Recipients:"), a.scope.String())
	return nil
}

// publish dispatches to the Publisher wrapper matching the selected scope.
func publish(p *sender.Publisher, a *sendArgs) (sender.ID, error) {
	opts := []notification.Option{
		notification.WithUrgency(a.urgency),
		notification.WithIcon(a.icon),
		notification.WithTimeout(a.timeout),
	}

	switch a.scope.Type {
	case recipients.TypeAdminsOnly:
		return p.PublishToAdmins(a.title, a.body, opts...)
	case recipients.TypeUsers:
		return p.PublishToUsers(a.scope.List, a.title, a.body, opts...)
	case recipients.TypeGroups:
		return p.PublishToGroups(a.scope.List, a.title, a.body, opts...)
	default:
		return p.PublishToEveryone(a.title, a.body, opts...)
	}
}
