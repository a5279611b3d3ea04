package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobsearch/internal/view"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List or toggle bookmarked jobs",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every bookmarked job",
	Args:  cobra.NoArgs,
	RunE:  runBookmarksList,
}

var bookmarksToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Add or remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarksToggle,
}

func init() {
	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksToggleCmd)
	rootCmd.AddCommand(bookmarksCmd)
}

func runBookmarksList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	printer := view.NewPrinter(cmd.OutOrStdout())
	got := s.app.BookmarkedItems(ctx)
	printer.PrintBookmarks(got.Items, got.IsLoading)
	printer.PrintToasts(s.app.Toaster().Active())
	return nil
}

//nolint:errcheck // terminal output
func runBookmarksToggle(cmd *cobra.Command, args []string) error {
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

	on, err := s.app.ToggleBookmark(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to toggle bookmark: %w", err)
	}
	if on {
		fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked #%d\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark #%d\n", id)
	}
	return nil
}
