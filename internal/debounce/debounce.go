// Package debounce delays a stream of values until it has been quiet for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 500 * time.Millisecond

// Debouncer emits the most recent value after no new value has arrived for its delay.
// Each Set cancels any pending emission and restarts the timer.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	raw     T
	settled T
	seq     uint64
	out     chan T
	stopped bool
}

// New creates a debouncer. A non-positive delay uses DefaultDelay.
// initial is both the raw and settled value until the first Set.
func New[T any](delay time.Duration, initial T) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay:   delay,
		raw:     initial,
		settled: initial,
		out:     make(chan T, 1),
	}
}

// Set records a new raw value and restarts the quiet period.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.raw = v
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// fire settles the value recorded by Set number seq, unless a later Set superseded it.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.raw
	d.settled = v
	d.mu.Unlock()

	// Keep only the newest settled value if the reader is behind.
	select {
	case d.out <- v:
	default:
		select {
		case <-d.out:
		default:
		}
		select {
		case d.out <- v:
		default:
		}
	}
}

// C delivers settled values.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Raw returns the latest value passed to Set.
func (d *Debouncer[T]) Raw() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Settled returns the last value that survived the quiet period.
func (d *Debouncer[T]) Settled() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Flush settles the current raw value immediately, cancelling any pending timer.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

// Stop cancels any pending emission. Later calls to Set are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
