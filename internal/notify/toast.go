// Package notify surfaces failures to the user as short-lived notifications.
package notify

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 4 * time.Second

// Level distinguishes error toasts from informational ones.
type Level string

// Toast levels
const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Toast is one transient notification.
type Toast struct {
	ID        uuid.UUID
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Toaster keeps toasts until they expire. Showing a toast never blocks.
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	out    io.Writer
	now    func() time.Time
}

// ToasterOption configures a Toaster.
type ToasterOption func(*Toaster)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) ToasterOption {
	return func(t *Toaster) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithWriter echoes every toast to w as it is shown.
func WithWriter(w io.Writer) ToasterOption {
	return func(t *Toaster) { t.out = w }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) ToasterOption {
	return func(t *Toaster) { t.now = now }
}

// NewToaster creates an empty toaster.
func NewToaster(opts ...ToasterOption) *Toaster {
	t := &Toaster{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Error shows an error toast.
func (t *Toaster) Error(message string) Toast {
	return t.show(LevelError, message)
}

// Info shows an informational toast.
func (t *Toaster) Info(message string) Toast {
	return t.show(LevelInfo, message)
}

func (t *Toaster) show(level Level, message string) Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	toast := Toast{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}
	t.toasts = append(t.pruneLocked(now), toast)

	if t.out != nil {
		//nolint:errcheck // best-effort echo to the terminal
		fmt.Fprintf(t.out, "[%s] %s\n", level, message)
	}
	return toast
}

// Active returns the toasts that have not expired, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = t.pruneLocked(t.now())
	return slices.Clone(t.toasts)
}

// Dismiss removes a toast before it expires.
func (t *Toaster) Dismiss(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = slices.DeleteFunc(t.toasts, func(toast Toast) bool { return toast.ID == id })
}

func (t *Toaster) pruneLocked(now time.Time) []Toast {
	return slices.DeleteFunc(t.toasts, func(toast Toast) bool { return !now.Before(toast.ExpiresAt) })
}
