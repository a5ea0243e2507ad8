// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import (
	"math"
	"sort"
)

// TimeSeries is an append-only, causally ordered record of events. It is
// both a Consumer (so it can sit at the end of a pipeline) and the source
// of the analytics used to make assertions about a simulation run.
type TimeSeries[V any] struct {
	chain[V]
	events []Event[V]
}

// NewTimeSeries returns an empty TimeSeries.
func NewTimeSeries[V any]() *TimeSeries[V] {
	return &TimeSeries[V]{}
}

// OnEvent implements Consumer: it appends (t, v) and forwards it.
func (s *TimeSeries[V]) OnEvent(t Time, v V) error {
	if err := s.checkCausality(t); err != nil {
		return err
	}
	s.events = append(s.events, Event[V]{Time: t, Value: v})
	if err := s.forwardEvent(t, v); err != nil {
		return err
	}
	s.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer. No event is recorded.
func (s *TimeSeries[V]) OnTimeAdvance(t Time) error {
	if err := s.checkCausality(t); err != nil {
		return err
	}
	if err := s.forwardTimeAdvance(t); err != nil {
		return err
	}
	s.advance(t)
	return nil
}

// OnClear implements Consumer. last_time is preserved, recorded events are
// not.
func (s *TimeSeries[V]) OnClear() error {
	s.events = s.events[:0]
	return s.forwardClear()
}

// Len returns the number of recorded events.
func (s *TimeSeries[V]) Len() int { return len(s.events) }

// At returns the event at index i.
func (s *TimeSeries[V]) At(i int) (Event[V], error) {
	if i < 0 || i >= len(s.events) {
		return Event[V]{}, newError(IndexOutOfRange, "timeseries index out of range")
	}
	return s.events[i], nil
}

// Events returns the full recorded slice. Callers must not mutate it.
func (s *TimeSeries[V]) Events() []Event[V] { return s.events }

// Full returns the Range covering every recorded event.
func (s *TimeSeries[V]) Full() Range { return Range{Start: 0, End: len(s.events)} }

func (s *TimeSeries[V]) sliceOf(r Range) ([]Event[V], error) {
	if r.Start < 0 || r.End > len(s.events) || r.Start > r.End {
		return nil, newError(IndexOutOfRange, "range out of bounds")
	}
	if r.Len() == 0 {
		return nil, newError(EmptySequence, "empty range")
	}
	return s.events[r.Start:r.End], nil
}

// Duration returns time[end-1] - time[start] for r. An empty or single-
// element range has duration 0.
func (s *TimeSeries[V]) Duration(r Range) (Time, error) {
	es, err := s.sliceOf(r)
	if IsKind(err, EmptySequence) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return es[len(es)-1].Time - es[0].Time, nil
}

func (s *TimeSeries[V]) deltas(r Range) ([]float64, error) {
	es, err := s.sliceOf(r)
	if err != nil {
		return nil, err
	}
	if len(es) < 2 {
		return nil, nil
	}
	ds := make([]float64, 0, len(es)-1)
	for i := 1; i < len(es); i++ {
		ds = append(ds, float64(es[i].Time-es[i-1].Time))
	}
	return ds, nil
}

// DeltaMean returns the mean of consecutive inter-event time deltas in r.
func (s *TimeSeries[V]) DeltaMean(r Range) (float64, error) {
	ds, err := s.deltas(r)
	if err != nil {
		return 0, err
	}
	if len(ds) == 0 {
		return 0, nil
	}
	var sum float64
	for _, d := range ds {
		sum += d
	}
	return sum / float64(len(ds)), nil
}

// DeltaStdDev returns the population standard deviation of consecutive
// inter-event time deltas in r.
func (s *TimeSeries[V]) DeltaStdDev(r Range) (float64, error) {
	ds, err := s.deltas(r)
	if err != nil {
		return 0, err
	}
	if len(ds) == 0 {
		return 0, nil
	}
	mean, err := s.DeltaMean(r)
	if err != nil {
		return 0, err
	}
	var sq float64
	for _, d := range ds {
		diff := d - mean
		sq += diff * diff
	}
	return math.Sqrt(sq / float64(len(ds))), nil
}

// FindContiguous returns the first Range over which needle matches the
// series element-wise. If no full match exists anywhere, it returns the
// longest prefix-match Range instead (empty if nothing matches at all).
// It errors if needle is empty.
func (s *TimeSeries[V]) FindContiguous(needle []V, eq func(a, b V) bool) (Range, error) {
	if len(needle) == 0 {
		return Range{}, newError(BadInput, "find_contiguous: empty needle")
	}
	if len(s.events) == 0 {
		return Range{}, nil
	}
	var best Range
	for start := 0; start < len(s.events)-best.Len(); start++ {
		n := 0
		for n < len(needle) && start+n < len(s.events) && eq(needle[n], s.events[start+n].Value) {
			n++
		}
		if n > best.Len() {
			best = Range{Start: start, End: start + n}
		}
	}
	return best, nil
}

// FindSelected greedily projects needle's values onto s, left to right,
// skipping any haystack event that doesn't match the next outstanding
// needle value. It returns the chosen haystack indices, one per matched
// needle element in order, and whether every needle element was matched.
func (s *TimeSeries[V]) FindSelected(needle []V, eq func(a, b V) bool) ([]int, bool) {
	var indices []int
	j := 0
	for i := 0; i < len(s.events) && j < len(needle); i++ {
		if eq(s.events[i].Value, needle[j]) {
			indices = append(indices, i)
			j++
		}
	}
	return indices, j == len(needle)
}

// FindRepetition returns the longest contiguous run of back-to-back
// matches of needle (needle, needle, needle, ...), tie-broken by earliest
// start. A single, non-repeated occurrence of needle is itself a run of
// length 1 and is returned as such; the Range is empty only if needle
// does not occur at all. It errors if needle is empty.
func (s *TimeSeries[V]) FindRepetition(needle []V, eq func(a, b V) bool) (Range, error) {
	if len(needle) == 0 {
		return Range{}, newError(BadInput, "find_repetition: empty needle")
	}
	n := len(needle)
	if n > len(s.events) {
		return Range{}, nil
	}
	isStart := make([]bool, len(s.events))
	var startingPoints []int
	for start := 0; start <= len(s.events)-n; start++ {
		m := 0
		for m < n && eq(needle[m], s.events[start+m].Value) {
			m++
		}
		if m == n {
			isStart[start] = true
			startingPoints = append(startingPoints, start)
		}
	}
	var best Range
	for _, start := range startingPoints {
		l := 0
		for start+l < len(s.events) && isStart[start+l] {
			l += n
		}
		if l > best.Len() {
			best = Range{Start: start, End: start + l}
		}
	}
	return best, nil
}

// TimeRange is a half-open [Start, End) interval of logical time, used by
// CompareAgainst (which walks two series by time, not by index).
type TimeRange struct {
	Start, End Time
}

// CompareAgainst sweeps s and other over tr, accumulating the total time
// during which their "current values" (the value of the last event at or
// before a given instant, events before tr.Start included; initial for a
// series with no event at or before that instant) disagree. It is symmetric:
// a.CompareAgainst(b, tr, v, eq) == b.CompareAgainst(a, tr, v, eq).
func (s *TimeSeries[V]) CompareAgainst(other *TimeSeries[V], tr TimeRange, initial V, eq func(a, b V) bool) (Time, error) {
	if tr.End < tr.Start {
		return 0, newError(BadInput, "compare_against: range end before start")
	}
	idxA := sort.Search(len(s.events), func(i int) bool { return s.events[i].Time > tr.Start })
	idxB := sort.Search(len(other.events), func(i int) bool { return other.events[i].Time > tr.Start })
	curA, curB := initial, initial
	if idxA > 0 {
		curA = s.events[idxA-1].Value
	}
	if idxB > 0 {
		curB = other.events[idxB-1].Value
	}

	var total Time
	last := tr.Start
	for last < tr.End {
		next := tr.End
		if idxA < len(s.events) && s.events[idxA].Time < next {
			next = s.events[idxA].Time
		}
		if idxB < len(other.events) && other.events[idxB].Time < next {
			next = other.events[idxB].Time
		}
		if next > last {
			if !eq(curA, curB) {
				total += next - last
			}
			last = next
		}
		for idxA < len(s.events) && s.events[idxA].Time == last {
			curA = s.events[idxA].Value
			idxA++
		}
		for idxB < len(other.events) && other.events[idxB].Time == last {
			curB = other.events[idxB].Value
			idxB++
		}
	}
	return total, nil
}
