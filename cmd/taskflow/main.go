package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskflow/pkg/version"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var baseURL string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow command line client",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (overrides TASKFLOW_API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print request logs")

	open := func() (*app, error) {
		return newApp(baseURL, verbose)
	}

	rootCmd.AddCommand(loginCmd(open))
	rootCmd.AddCommand(oauthCmd(open))
	rootCmd.AddCommand(logoutCmd(open))
	rootCmd.AddCommand(whoamiCmd(open))
	rootCmd.AddCommand(listCmd(open))
	rootCmd.AddCommand(watchCmd(open))
	return rootCmd
}
