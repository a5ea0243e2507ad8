// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino_test

import (
	"math/rand"
	"testing"

	"github.com/db47h/moccarduino"
)

func TestTimeSeriesCausality(t *testing.T) {
	s := moccarduino.NewTimeSeries[int]()
	if err := s.OnEvent(100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.OnEvent(50, 2)
	if !moccarduino.IsKind(err, moccarduino.CausalityViolation) {
		t.Fatalf("want CausalityViolation, got %v", err)
	}
}

func TestTimeSeriesDuration(t *testing.T) {
	s := moccarduino.NewTimeSeries[int]()
	for _, t2 := range []moccarduino.Time{10, 20, 40, 80} {
		if err := s.OnEvent(t2, 0); err != nil {
			t.Fatal(err)
		}
	}
	d, err := s.Duration(s.Full())
	if err != nil {
		t.Fatal(err)
	}
	if d != 70 {
		t.Fatalf("want duration 70, got %d", d)
	}
}

func TestTimeSeriesDeltaMeanStdDev(t *testing.T) {
	s := moccarduino.NewTimeSeries[int]()
	for _, t2 := range []moccarduino.Time{0, 10, 20, 30} {
		if err := s.OnEvent(t2, 0); err != nil {
			t.Fatal(err)
		}
	}
	mean, err := s.DeltaMean(s.Full())
	if err != nil {
		t.Fatal(err)
	}
	if mean != 10 {
		t.Fatalf("want mean 10, got %v", mean)
	}
	sd, err := s.DeltaStdDev(s.Full())
	if err != nil {
		t.Fatal(err)
	}
	if sd != 0 {
		t.Fatalf("want stddev 0 for uniform deltas, got %v", sd)
	}
}

func intEq(a, b int) bool { return a == b }

func fillInts(t *testing.T, vals []int) *moccarduino.TimeSeries[int] {
	t.Helper()
	s := moccarduino.NewTimeSeries[int]()
	for i, v := range vals {
		if err := s.OnEvent(moccarduino.Time(i)*100+100, v); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestTimeSeriesFindContiguousExactMatch(t *testing.T) {
	s := fillInts(t, []int{10, 20, 30, 40, 50})
	r, err := s.FindContiguous([]int{30, 40}, intEq)
	if err != nil {
		t.Fatal(err)
	}
	if r != (moccarduino.Range{Start: 2, End: 4}) {
		t.Fatalf("want [2,4), got %v", r)
	}
}

func TestTimeSeriesFindContiguousLongestPrefix(t *testing.T) {
	s := fillInts(t, []int{10, 20, 99, 99})
	r, err := s.FindContiguous([]int{10, 20, 30}, intEq)
	if err != nil {
		t.Fatal(err)
	}
	if r != (moccarduino.Range{Start: 0, End: 2}) {
		t.Fatalf("want longest prefix match [0,2), got %v", r)
	}
}

func TestTimeSeriesFindContiguousEmptyNeedle(t *testing.T) {
	s := fillInts(t, []int{1, 2, 3})
	_, err := s.FindContiguous(nil, intEq)
	if !moccarduino.IsKind(err, moccarduino.BadInput) {
		t.Fatalf("want BadInput for empty needle, got %v", err)
	}
}

func TestTimeSeriesFindRepetitionLongestRun(t *testing.T) {
	// [LOW,HIGH] repeating three times, then twice, then three times again:
	// the longest run wins, tie-broken by earliest start if lengths tie.
	vals := []int{
		0, 1, 0, 1, 0, 1, // 3 reps starting at 0
		9,
		0, 1, 0, 1, // 2 reps starting at 7
		9,
		0, 1, 0, 1, 0, 1, // 3 reps starting at 12, same length as the first run
	}
	s := fillInts(t, vals)
	r, err := s.FindRepetition([]int{0, 1}, intEq)
	if err != nil {
		t.Fatal(err)
	}
	if r != (moccarduino.Range{Start: 0, End: 6}) {
		t.Fatalf("want earliest longest run [0,6), got %v", r)
	}
}

func TestTimeSeriesFindRepetitionNone(t *testing.T) {
	s := fillInts(t, []int{1, 2, 3, 4})
	r, err := s.FindRepetition([]int{5, 6}, intEq)
	if err != nil {
		t.Fatal(err)
	}
	if r != (moccarduino.Range{}) {
		t.Fatalf("want empty range, got %v", r)
	}
}

func TestTimeSeriesFindRepetitionEmptyNeedle(t *testing.T) {
	s := fillInts(t, []int{1, 2, 3})
	_, err := s.FindRepetition(nil, intEq)
	if !moccarduino.IsKind(err, moccarduino.BadInput) {
		t.Fatalf("want BadInput for empty needle, got %v", err)
	}
}

// TestTimeSeriesFindSelected reproduces the original judge's
// findSelectedSubsequence fixtures (haystack/needle/expected indices).
func TestTimeSeriesFindSelected(t *testing.T) {
	cases := []struct {
		haystack, needle []int
		want             []int
		fullyConsumed    bool
	}{
		{[]int{10, 20, 30}, []int{10, 20, 30}, []int{0, 1, 2}, true},
		{[]int{10, 20, 30, 40, 50, 60, 70}, []int{20, 50, 60}, []int{1, 4, 5}, true},
		{[]int{10, 20, 30}, []int{30, 40, 50}, []int{2}, false},
		{[]int{10, 20, 30}, []int{40, 50, 60}, nil, false},
		{[]int{10, 0, 10, 20, 20, 30, 31, 30, 40, 70, 40}, []int{10, 20, 30, 40}, []int{0, 3, 5, 8}, true},
	}
	for i, c := range cases {
		s := fillInts(t, c.haystack)
		got, consumed := s.FindSelected(c.needle, intEq)
		if consumed != c.fullyConsumed {
			t.Fatalf("case %d: consumed = %v, want %v", i, consumed, c.fullyConsumed)
		}
		if len(got) != len(c.want) {
			t.Fatalf("case %d: want indices %v, got %v", i, c.want, got)
		}
		for j := range got {
			if got[j] != c.want[j] {
				t.Fatalf("case %d: want indices %v, got %v", i, c.want, got)
			}
		}
	}
}

func TestTimeSeriesCompareAgainstSymmetric(t *testing.T) {
	a := moccarduino.NewTimeSeries[int]()
	b := moccarduino.NewTimeSeries[int]()
	for _, tv := range []struct {
		t moccarduino.Time
		v int
	}{{100, 1}, {300, 0}, {500, 1}, {800, 0}} {
		if err := a.OnEvent(tv.t, tv.v); err != nil {
			t.Fatal(err)
		}
	}
	for _, tv := range []struct {
		t moccarduino.Time
		v int
	}{{150, 1}, {350, 0}, {550, 1}, {850, 0}} {
		if err := b.OnEvent(tv.t, tv.v); err != nil {
			t.Fatal(err)
		}
	}
	eq := func(x, y int) bool { return x == y }
	tr := moccarduino.TimeRange{Start: 0, End: 1000}
	ab, err := a.CompareAgainst(b, tr, 0, eq)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := b.CompareAgainst(a, tr, 0, eq)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("compare_against is not symmetric: %d vs %d", ab, ba)
	}
	if ab != 200 {
		t.Fatalf("want disagreement time 200, got %d", ab)
	}
}

func TestTimeSeriesCompareAgainstIdentical(t *testing.T) {
	a := moccarduino.NewTimeSeries[int]()
	b := moccarduino.NewTimeSeries[int]()
	for _, tv := range []struct {
		t moccarduino.Time
		v int
	}{{100, 1}, {300, 0}} {
		if err := a.OnEvent(tv.t, tv.v); err != nil {
			t.Fatal(err)
		}
		if err := b.OnEvent(tv.t, tv.v); err != nil {
			t.Fatal(err)
		}
	}
	eq := func(x, y int) bool { return x == y }
	d, err := a.CompareAgainst(b, moccarduino.TimeRange{Start: 0, End: 1000}, 0, eq)
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Fatalf("identical series must compare equal, got disagreement %d", d)
	}
}

func TestTimeSeriesClearPreservesWatermark(t *testing.T) {
	s := moccarduino.NewTimeSeries[int]()
	if err := s.OnEvent(100, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.OnClear(); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("want empty after clear, got %d", s.Len())
	}
	err := s.OnEvent(50, 2)
	if !moccarduino.IsKind(err, moccarduino.CausalityViolation) {
		t.Fatalf("want CausalityViolation after clear (watermark preserved), got %v", err)
	}
}

// TestTimeSeriesCompareAgainstRandomSymmetric runs CompareAgainst both ways
// over a batch of randomly generated series pairs, checking the symmetry
// invariant holds beyond the handful of literal cases above.
func TestTimeSeriesCompareAgainstRandomSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	eq := func(x, y bool) bool { return x == y }
	for trial := 0; trial < 50; trial++ {
		a := moccarduino.NewTimeSeries[bool]()
		b := moccarduino.NewTimeSeries[bool]()
		var at, bt moccarduino.Time
		for i := 0; i < 10; i++ {
			at += moccarduino.Time(rng.Intn(50) + 1)
			if err := a.OnEvent(at, rng.Intn(2) == 1); err != nil {
				t.Fatal(err)
			}
			bt += moccarduino.Time(rng.Intn(50) + 1)
			if err := b.OnEvent(bt, rng.Intn(2) == 1); err != nil {
				t.Fatal(err)
			}
		}
		tr := moccarduino.TimeRange{Start: 0, End: 1000}
		ab, err := a.CompareAgainst(b, tr, false, eq)
		if err != nil {
			t.Fatal(err)
		}
		ba, err := b.CompareAgainst(a, tr, false, eq)
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Fatalf("trial %d: compare_against not symmetric: %d vs %d", trial, ab, ba)
		}
	}
}
