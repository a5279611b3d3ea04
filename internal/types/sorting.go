//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// SortBy selects the ordering of a result list.
type SortBy string

const (
	// SortRelevant orders by descending relevance score.
	SortRelevant SortBy = "relevant"
	// SortRecent orders by ascending age in days.
	SortRecent SortBy = "recent"
)

// ParseSortBy converts user input into a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case SortRelevant, SortRecent:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want %q or %q)", s, SortRelevant, SortRecent)
	}
}

// PageDirection is a single-step pagination move.
type PageDirection string

const (
	// PageNext moves one page forward.
	PageNext PageDirection = "next"
	// PagePrevious moves one page back.
	PagePrevious PageDirection = "previous"
)
