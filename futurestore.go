// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import "sort"

// FutureStore buffers events keyed by a release time that may be out of
// order relative to arrival order, and only forwards them downstream once
// the logical clock reaches (or passes) their release time. This is what
// lets a stimulus file enqueue "pin goes HIGH at t=500" before the
// simulator has reached t=500, regardless of what order the stimuli were
// read in.
//
// The only ordering guarantee it enforces is the release watermark: an
// event may not be scheduled to release before the last time already
// released.
type FutureStore[V any] struct {
	chain[V]
	pending  []Event[V]
	released Time
}

// NewFutureStore returns an empty FutureStore.
func NewFutureStore[V any]() *FutureStore[V] {
	return &FutureStore[V]{}
}

// OnEvent schedules v for release at time t. It does not forward
// immediately: release happens on a later OnTimeAdvance that reaches t.
func (f *FutureStore[V]) OnEvent(t Time, v V) error {
	if t < f.released {
		return newError(CausalityViolation, "future event scheduled before the release watermark")
	}
	// Insertion sort from the back: pending is almost always appended in
	// increasing t, so scanning from the tail is the fast path for the
	// common case and still correct for the rare out-of-order insert.
	i := len(f.pending)
	for i > 0 && f.pending[i-1].Time > t {
		i--
	}
	f.pending = append(f.pending, Event[V]{})
	copy(f.pending[i+1:], f.pending[i:])
	f.pending[i] = Event[V]{Time: t, Value: v}
	return nil
}

// OnTimeAdvance releases every pending event whose time is <= t, in
// ascending time order, then forwards the time advance itself.
func (f *FutureStore[V]) OnTimeAdvance(t Time) error {
	if err := f.checkCausality(t); err != nil {
		return err
	}
	n := sort.Search(len(f.pending), func(i int) bool { return f.pending[i].Time > t })
	for i := 0; i < n; i++ {
		e := f.pending[i]
		if err := f.forwardEvent(e.Time, e.Value); err != nil {
			return err
		}
		f.released = e.Time
	}
	f.pending = f.pending[n:]
	if err := f.forwardTimeAdvance(t); err != nil {
		return err
	}
	f.advance(t)
	return nil
}

// OnClear drops every pending event without releasing it. The release
// watermark is preserved.
func (f *FutureStore[V]) OnClear() error {
	f.pending = f.pending[:0]
	return f.forwardClear()
}

// Pending returns the number of events still awaiting release.
func (f *FutureStore[V]) Pending() int { return len(f.pending) }
