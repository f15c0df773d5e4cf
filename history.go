package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/llehouerou/notibus/internal/config"
	"github.com/llehouerou/notibus/internal/errmsg"
	"github.com/llehouerou/notibus/internal/history"
	"github.com/llehouerou/notibus/internal/recipients"
	"github.com/llehouerou/notibus/internal/ui/styles"
)

const timeLayout = "2006-01-02 15:04:05"

func showHistory(cfg *config.Config, limit int) error {
	store, err := openHistory(cfg)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpHistoryOpen, err))
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpHistoryRead, err))
	}
	writeHistory(os.Stdout, entries)
	return nil
}

// writeHistory prints entries oldest first so the newest ends up next to
// the prompt.
func writeHistory(w io.Writer, entries []history.Entry) {
	s := styles.T().S()

	if len(entries) == 0 {
		fmt.Fprintln(w, s.Muted.Render("no notifications recorded"))
		return
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := fmt.Sprintf("%s  %s",
			s.Muted.Render(e.ReceivedAt.Format(timeLayout)),
			s.Outcome(e.Outcome).Render(fmt.Sprintf("%-9s", e.Outcome)),
		)
		if e.Title != "" || e.Urgency != "" {
			line += fmt.Sprintf("  %s %s %s",
				s.Urgency(e.Urgency).Render("["+e.Urgency+"]"),
				s.Title.Render(e.Title),
				s.Muted.Render("("+recipients.Decode(e.Recipients).String()+")"),
			)
		}
		if e.Error != "" {
			line += "  " + s.Error.Render(e.Error)
		}
		fmt.Fprintln(w, line)
	}
}
