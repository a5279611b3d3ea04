package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobsearch/internal/activeid"
	"github.com/jonathan/jobsearch/internal/view"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func parseJobID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", arg)
	}
	return id, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	printer := view.NewPrinter(cmd.OutOrStdout())
	a := s.app

	a.Navigate(activeid.FragmentFor(id))
	result := a.ActiveItem(ctx)
	if result.State.IsError {
		printer.PrintToasts(a.Toaster().Active())
		return fmt.Errorf("failed to load job %d: %w", id, result.State.Err)
	}

	printer.PrintJobDetail(result.Item(), result.State.IsLoading, a.Bookmarks().Contains(id))
	return nil
}
