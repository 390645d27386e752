package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"taskflow/pkg/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func watchCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print session changes made by other processes",
		Long: `Follows the shared session (TASKFLOW_REDIS_URL must be set) and prints
every sign-in and sign-out made by other processes until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.RedisURL == "" {
				return errors.New("watch needs a shared session, set TASKFLOW_REDIS_URL")
			}

			out := cmd.OutOrStdout()
			unsubscribe := a.store.Subscribe(func(ev session.Event) {
				if ev.Remote {
					printEvent(out, ev)
				}
			})
			defer unsubscribe()

			fmt.Fprintf(out, "Watching session %q, press Ctrl+C to stop.\n", a.cfg.Namespace)
			if err := a.store.Watch(cmd.Context()); err != nil && !errors.Is(err, cmd.Context().Err()) {
				return err
			}
			return nil
		},
	}
}

func printEvent(w io.Writer, ev session.Event) {
	stamp := time.Now().Format("15:04:05")
	switch {
	case ev.Deleted:
		color.New(color.FgYellow).Fprintf(w, "%s  - %s\n", stamp, ev.Key)
	case ev.Key == session.MarkerKey:
		color.New(color.FgGreen).Fprintf(w, "%s  + signed in\n", stamp)
	default:
		color.New(color.FgCyan).Fprintf(w, "%s  ~ %s updated\n", stamp, ev.Key)
	}
}
