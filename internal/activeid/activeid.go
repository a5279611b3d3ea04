// Package activeid tracks which job is selected, driven only by navigation to a fragment like "#123".
package activeid

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Change is delivered to subscribers on every navigation.
type Change struct {
	ID    int
	Valid bool
}

// Parse extracts a job id from a fragment. It accepts "#123", "123", or a
// full URL whose fragment is the id. Empty, non-numeric, zero, or negative
// fragments mean no selection.
func Parse(fragment string) (int, bool) {
	s := strings.TrimSpace(fragment)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Fragment
		}
	}
	s = strings.TrimPrefix(s, "#")

	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Tracker mirrors the current fragment. Only Init and Navigate change it.
type Tracker struct {
	mu       sync.RWMutex
	fragment string
	id       int
	valid    bool
	subs     []chan Change
}

// New creates a tracker with no selection.
func New() *Tracker {
	return &Tracker{}
}

// Init performs the startup read of the fragment.
func (t *Tracker) Init(fragment string) {
	t.Navigate(fragment)
}

// Navigate handles a fragment change and notifies subscribers.
func (t *Tracker) Navigate(fragment string) {
	id, ok := Parse(fragment)

	t.mu.Lock()
	t.fragment = fragment
	t.id, t.valid = id, ok
	subs := t.subs
	t.mu.Unlock()

	change := Change{ID: id, Valid: ok}
	for _, ch := range subs {
		// Subscribers see the latest change; an unread older one is replaced.
		select {
		case ch <- change:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- change:
			default:
			}
		}
	}
}

// Current returns the selected id, if any.
func (t *Tracker) Current() (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id, t.valid
}

// Fragment returns the raw fragment last navigated to.
func (t *Tracker) Fragment() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fragment
}

// Subscribe returns a channel receiving navigation changes.
func (t *Tracker) Subscribe() <-chan Change {
	ch := make(chan Change, 1)
	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()
	return ch
}

// FragmentFor renders the fragment that selects id.
func FragmentFor(id int) string {
	return "#" + strconv.Itoa(id)
}
