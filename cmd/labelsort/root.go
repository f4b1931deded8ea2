package main

import (
	"github.com/spf13/cobra"

	logpkg "github.com/local/labelsorter/internal/logger"
)

func newRootCmd() *cobra.Command {
	var (
		level  string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:           "labelsort",
		Short:         "Group shipping-label PDFs by product",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logpkg.Init(logpkg.Options{Level: level, Pretty: pretty, Console: cmd.ErrOrStderr()})
		},
		PersistentPostRun: func(*cobra.Command, []string) { logpkg.Close() },
	}
	cmd.PersistentFlags().StringVar(&level, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "human readable logs")

	cmd.AddCommand(newSortCmd())
	return cmd
}
