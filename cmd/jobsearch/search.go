package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobsearch/internal/types"
	"github.com/jonathan/jobsearch/internal/view"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search job listings",
	Long:  "Fetches listings matching the text and prints one page, sorted by relevance or recency.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchSort string
	searchPage int
)

func init() {
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", string(types.SortRelevant), "Sort order: relevant or recent")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "Page to show")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	sortBy, err := types.ParseSortBy(searchSort)
	if err != nil {
		return err
	}
	if searchPage < 1 {
		return fmt.Errorf("page must be at least 1, got %d", searchPage)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	printer := view.NewPrinter(cmd.OutOrStdout())
	a := s.app

	result := a.Search(ctx, args[0])
	if result.State.IsError {
		printer.PrintToasts(a.Toaster().Active())
		return fmt.Errorf("search failed: %w", result.State.Err)
	}

	a.SetSortBy(sortBy)
	for a.Jobs().CurrentPage() < searchPage {
		if !a.ChangePage(types.PageNext) {
			return fmt.Errorf("page %d is out of range (%d pages)", searchPage, a.Jobs().PageCount())
		}
	}

	printer.PrintJobList(args[0], a.Jobs().Snapshot(), a.Bookmarks().Contains)
	return nil
}
