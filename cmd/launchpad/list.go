package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/a2y-d5l/launchpad/library"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the programs in the library and their queues",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg := library.DefaultConfig()
	cfg.Root = libraryRoot
	cfg.Watch = false
	cfg.Transcript = false
	cfg.Logger = newLogger(cmd.ErrOrStderr(), slog.LevelWarn)

	lib, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	out := cmd.OutOrStdout()
	programs := lib.Programs()
	if len(programs) == 0 {
		fmt.Fprintf(out, "No programs in %s\n", lib.Root())
		return nil
	}

	for i, p := range programs {
		fmt.Fprintf(out, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(out, "   directory: %s\n", p.WorkingDirectory)
		if p.Fetch != nil {
			fmt.Fprintf(out, "   fetch:     %s\n", p.Fetch)
		}
		for _, q := range p.CommandQueues {
			fmt.Fprintf(out, "   %s:\n", q.Name)
			for _, c := range q.Commands {
				fmt.Fprintf(out, "     - %s\n", c)
			}
		}
	}
	return nil
}
