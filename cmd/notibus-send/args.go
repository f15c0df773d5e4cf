package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/llehouerou/notibus/internal/config"
	"github.com/llehouerou/notibus/internal/notification"
	"github.com/llehouerou/notibus/internal/recipients"
)

// errHelp is returned by parseArgs after printing usage.
var errHelp = errors.New("help requested")

type sendArgs struct {
	title string
	body  string
	scope recipients.Recipients

	urgency    string
	icon       string
	timeout    int32
	urgencySet bool
	iconSet    bool
	timeoutSet bool

	busName    string
	configPath string
	debug      bool
}

func parseArgs(args []string, stderr io.Writer) (*sendArgs, error) {
	var (
		a          sendArgs
		everyone   bool
		adminsOnly bool
		users      string
		groups     string
	)

	flagSet := pflag.NewFlagSet("notibus-send", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&everyone, "everyone", false, "send to everyone (default)")
	flagSet.BoolVar(&adminsOnly, "admins-only", false, "send to admin users only")
	flagSet.StringVar(&users, "users", "", "comma-separated list of users")
	flagSet.StringVar(&groups, "groups", "", "comma-separated list of groups")
	flagSet.StringVar(&a.urgency, "urgency", "", "urgency: low, normal or critical (default normal)")
	flagSet.StringVar(&a.icon, "icon", "", "icon name or path (default dialog-information)")
	flagSet.Int32Var(&a.timeout, "timeout", 0, "timeout in milliseconds, 0 = no timeout (default 5000)")
	flagSet.StringVar(&a.busName, "bus", "", `bus to publish on: "system" or "session"`)
	flagSet.StringVar(&a.configPath, "config", "", "read configuration from this file only")
	flagSet.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil, errHelp
		}
		return nil, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil, errHelp
	}

	positional := flagSet.Args()
	if len(positional) != 2 {
		return nil, fmt.Errorf("expected TITLE and BODY, got %d arguments", len(positional))
	}
	a.title, a.body = positional[0], positional[1]

	selected := 0
	for _, name := range []string{"everyone", "admins-only", "users", "groups"} {
		if flagSet.Changed(name) {
			selected++
		}
	}
	if selected > 1 {
		return nil, errors.New("--everyone, --admins-only, --users and --groups are mutually exclusive")
	}

	switch {
	case adminsOnly:
		a.scope = recipients.AdminsOnly()
	case flagSet.Changed("users"):
		a.scope = recipients.Users(splitList(users))
	case flagSet.Changed("groups"):
		a.scope = recipients.Groups(splitList(groups))
	default:
		a.scope = recipients.Everyone()
	}

	a.urgencySet = flagSet.Changed("urgency")
	a.iconSet = flagSet.Changed("icon")
	a.timeoutSet = flagSet.Changed("timeout")

	if a.urgencySet {
		if err := checkUrgency(a.urgency); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// applyDefaults fills unset flags from configuration.
func (a *sendArgs) applyDefaults(cfg *config.Config) {
	if !a.urgencySet {
		a.urgency = cfg.Send.Urgency
	}
	if !a.iconSet {
		a.icon = cfg.Send.Icon
	}
	if !a.timeoutSet {
		a.timeout = cfg.SendTimeout()
	}
	if a.busName == "" {
		a.busName = cfg.Bus
	}
}

func checkUrgency(u string) error {
	if string(notification.ParseUrgency(u)) != u {
		return fmt.Errorf("invalid urgency %q (choose from low, normal, critical)", u)
	}
	return nil
}

// splitList splits a comma-separated flag value, trimming spaces and
// dropping empty items.
func splitList(csv string) []string {
	var out []string
	for _, item := range strings.Split(csv, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `notibus-send - publish a desktop notification

Usage:
  notibus-send TITLE BODY [flags]

Examples:
  notibus-send "Hello" "World"
  notibus-send "Warning" "Low disk space" --urgency critical --icon dialog-warning
  notibus-send "Admin Alert" "System maintenance" --admins-only
  notibus-send "Team Msg" "Meeting at 3pm" --users alice,bob,charlie
  notibus-send "Dev Alert" "Build failed" --groups developers,devops

Flags:
%s`, flagSet.FlagUsages())
}
