// Package view renders job-search state for a terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobsearch/internal/joblist"
	"github.com/jonathan/jobsearch/internal/notify"
	"github.com/jonathan/jobsearch/internal/types"
)

const (
	// boxWidth is the width of every box, borders included
	boxWidth = 60
	// maxListItems caps detail lists such as qualifications
	maxListItems = 5
)

// Printer writes boxed, human-readable output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a titled box. Long lines are truncated by rune.
//
//nolint:errcheck // terminal output; nothing to do on failure
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintJobList prints the current page of results with its pagination controls.
func (p *Printer) PrintJobList(searchText string, snap joblist.Snapshot, bookmarked func(int) bool) {
	var sb strings.Builder

	switch {
	case searchText == "":
		sb.WriteString("Type to search for jobs.")
	case !snap.Loaded:
		sb.WriteString("Loading...")
	case snap.TotalJobs == 0:
		sb.WriteString("No jobs found.")
	default:
		sb.WriteString(fmt.Sprintf("%d results, sorted by %s\n\n", snap.TotalJobs, snap.SortBy))
		for _, item := range snap.Items {
			mark := " "
			if bookmarked != nil && bookmarked(item.ID) {
				mark = "★"
			}
			sb.WriteString(fmt.Sprintf("%s %-4s %s\n", mark, item.BadgeLetters, item.Title))
			sb.WriteString(fmt.Sprintf("       %s · %dd ago · #%d\n", item.Company, item.DaysAgo, item.ID))
		}
		sb.WriteString("\n")
		sb.WriteString(paginationLine(snap))
	}

	p.printBox(fmt.Sprintf("SEARCH: %s", searchText), sb.String())
}

func paginationLine(snap joblist.Snapshot) string {
	var parts []string
	if snap.HasPrevious {
		parts = append(parts, fmt.Sprintf("← :prev (page %d)", snap.CurrentPage-1))
	}
	if snap.HasNext {
		parts = append(parts, fmt.Sprintf(":next (page %d) →", snap.CurrentPage+1))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Page %d", snap.CurrentPage)
	}
	return strings.Join(parts, "   ")
}

// PrintJobDetail prints a single job. A nil item with loading set prints a placeholder.
func (p *Printer) PrintJobDetail(item *types.JobItem, loading, bookmarked bool) {
	if item == nil {
		if loading {
			p.printBox("JOB", "Loading...")
		}
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", item.Company))
	if item.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", item.Location))
	}
	if item.Duration != "" {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", item.Duration))
	}
	if item.Salary != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", item.Salary))
	}
	sb.WriteString(fmt.Sprintf("Posted:   %dd ago\n", item.DaysAgo))
	if bookmarked {
		sb.WriteString("Bookmarked ★\n")
	}

	if item.Description != "" {
		text, err := DescriptionText(item.Description)
		if err != nil {
			text = item.Description
		}
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	writeList(&sb, "Qualifications", item.Qualifications)
	writeList(&sb, "Reviews", item.Reviews)

	p.printBox(fmt.Sprintf("#%d %s", item.ID, item.Title), strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", heading))
	count := min(len(items), maxListItems)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxListItems {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxListItems))
	}
}

// PrintBookmarks prints the bookmarked jobs that could be loaded.
func (p *Printer) PrintBookmarks(items []types.JobItem, loading bool) {
	var sb strings.Builder
	switch {
	case len(items) == 0 && loading:
		sb.WriteString("Loading...")
	case len(items) == 0:
		sb.WriteString("No bookmarks yet.")
	default:
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("#%-5d %s (%s)\n", item.ID, item.Title, item.Company))
		}
	}
	p.printBox("BOOKMARKS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintToasts prints the visible notifications, one per line.
//
//nolint:errcheck // terminal output
func (p *Printer) PrintToasts(toasts []notify.Toast) {
	for _, t := range toasts {
		prefix := "!"
		if t.Level == notify.LevelInfo {
			prefix = "i"
		}
		fmt.Fprintf(p.out, "[%s] %s\n", prefix, t.Message)
	}
}
