package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobsearch/internal/app"
	"github.com/jonathan/jobsearch/internal/types"
	"github.com/jonathan/jobsearch/internal/view"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search session",
	Long: `Reads one line at a time from stdin.

  <text>                  replace the search text (searched once typing settles)
  #<id>                   select a job
  :next, :prev            change page
  :sort relevant|recent   change sort order
  :bm <id>                toggle a bookmark
  :bookmarks              list bookmarked jobs
  :quit                   exit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// syncWriter serializes writes from the render loop, toasts, and command replies.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type browser struct {
	app     *app.App
	printer *view.Printer
	out     io.Writer
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	out := &syncWriter{w: cmd.OutOrStdout()}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, out, true)
	if err != nil {
		return err
	}
	defer s.Close()

	b := &browser{app: s.app, printer: view.NewPrinter(out), out: out}

	var wg sync.WaitGroup
	runErr := make(chan error, 1)
	wg.Add(2)
	go func() {
		defer wg.Done()
		runErr <- s.app.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		b.render(ctx)
	}()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if !b.handle(ctx, scanner.Text()) {
			break
		}
	}

	cancel()
	wg.Wait()
	if err := <-runErr; err != nil {
		return err
	}
	return scanner.Err()
}

// render redraws whatever Run reports as changed.
func (b *browser) render(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.app.Updates():
			switch ev.Kind {
			case app.EventResults:
				b.printList()
			case app.EventActiveItem:
				b.printActive(ctx)
			}
		}
	}
}

func (b *browser) printList() {
	_, settled := b.app.SearchText()
	b.printer.PrintJobList(settled, b.app.Jobs().Snapshot(), b.app.Bookmarks().Contains)
}

func (b *browser) printActive(ctx context.Context) {
	result := b.app.ActiveItem(ctx)
	if !result.Selected {
		return
	}
	b.printer.PrintJobDetail(result.Item(), result.State.IsLoading, b.app.Bookmarks().Contains(result.ID))
}

// handle processes one input line and reports whether the session continues.
//
//nolint:errcheck // terminal output
func (b *browser) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "#"):
		b.app.Navigate(trimmed)
	case !strings.HasPrefix(trimmed, ":"):
		b.app.Type(line)
	default:
		fields := strings.Fields(trimmed)
		switch fields[0] {
		case ":quit", ":q":
			return false
		case ":next":
			b.page(types.PageNext)
		case ":prev":
			b.page(types.PagePrevious)
		case ":sort":
			if len(fields) != 2 {
				fmt.Fprintln(b.out, "usage: :sort relevant|recent")
				break
			}
			sortBy, err := types.ParseSortBy(fields[1])
			if err != nil {
				fmt.Fprintln(b.out, err)
				break
			}
			b.app.SetSortBy(sortBy)
			b.printList()
		case ":bm":
			if len(fields) != 2 {
				fmt.Fprintln(b.out, "usage: :bm <id>")
				break
			}
			id, err := parseJobID(fields[1])
			if err != nil {
				fmt.Fprintln(b.out, err)
				break
			}
			on, err := b.app.ToggleBookmark(ctx, id)
			if err != nil {
				break
			}
			if on {
				fmt.Fprintf(b.out, "Bookmarked #%d\n", id)
			} else {
				fmt.Fprintf(b.out, "Removed bookmark #%d\n", id)
			}
		case ":bookmarks":
			got := b.app.BookmarkedItems(ctx)
			b.printer.PrintBookmarks(got.Items, got.IsLoading)
		default:
			fmt.Fprintf(b.out, "unknown command %q\n", fields[0])
		}
	}
	return true
}

func (b *browser) page(direction types.PageDirection) {
	if !b.app.ChangePage(direction) {
		fmt.Fprintln(b.out, "no page in that direction")
		return
	}
	b.printList()
}
