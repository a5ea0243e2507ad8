// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package report writes the simulation log as CSV: one column per enabled
// logger channel, rows at the union of every channel's event timestamps,
// cells left empty when that channel did not change at that timestamp.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/db47h/moccarduino"
)

// Channel is a single named logger column: an ordered set of (time, text)
// cells, already formatted for CSV output.
type Channel struct {
	Name   string
	Events []moccarduino.Event[string]
}

// BoolChannel builds a Channel from a boolean TimeSeries, encoding each
// value as "0"/"1".
func BoolChannel(name string, s *moccarduino.TimeSeries[bool]) Channel {
	evs := s.Events()
	out := make([]moccarduino.Event[string], len(evs))
	for i, e := range evs {
		v := "0"
		if e.Value {
			v = "1"
		}
		out[i] = moccarduino.Event[string]{Time: e.Time, Value: v}
	}
	return Channel{Name: name, Events: out}
}

// LedsChannel builds a Channel from the leds bitmap TimeSeries, encoding
// each snapshot as a single hex digit (bit 0 = LED 1, 1 = OFF, matching the
// active-low convention).
func LedsChannel(name string, s *moccarduino.TimeSeries[*moccarduino.BitArray]) (Channel, error) {
	evs := s.Events()
	out := make([]moccarduino.Event[string], len(evs))
	for i, e := range evs {
		v, err := moccarduino.GetBits[uint8](e.Value, 0, e.Value.Len())
		if err != nil {
			return Channel{}, err
		}
		out[i] = moccarduino.Event[string]{Time: e.Time, Value: fmt.Sprintf("%x", v)}
	}
	return Channel{Name: name, Events: out}, nil
}

// SevenSegChannel builds a Channel from the 7-segment bitmap TimeSeries,
// encoding each snapshot as a hex byte sequence, one byte per digit,
// leftmost digit first, active-low.
func SevenSegChannel(name string, s *moccarduino.TimeSeries[*moccarduino.BitArray], digits int) (Channel, error) {
	evs := s.Events()
	out := make([]moccarduino.Event[string], len(evs))
	for i, e := range evs {
		buf := make([]byte, 0, digits*2)
		for d := 0; d < digits; d++ {
			b, err := moccarduino.GetBits[uint8](e.Value, d*8, 8)
			if err != nil {
				return Channel{}, err
			}
			buf = append(buf, []byte(fmt.Sprintf("%02x", b))...)
		}
		out[i] = moccarduino.Event[string]{Time: e.Time, Value: string(buf)}
	}
	return Channel{Name: name, Events: out}, nil
}

// SerialChannel builds a Channel from a string-payload TimeSeries; values
// are CSV-quoted by the underlying writer when they contain the delimiter,
// quotes, or newlines.
func SerialChannel(name string, s *moccarduino.TimeSeries[string]) Channel {
	evs := s.Events()
	out := make([]moccarduino.Event[string], len(evs))
	copy(out, evs)
	return Channel{Name: name, Events: out}
}

type cursor struct {
	ch   Channel
	idx  int
	next moccarduino.Time
	done bool
}

func newCursor(ch Channel) *cursor {
	c := &cursor{ch: ch}
	c.refresh()
	return c
}

func (c *cursor) refresh() {
	if c.idx >= len(c.ch.Events) {
		c.done = true
		return
	}
	c.next = c.ch.Events[c.idx].Time
}

// Write renders channels as CSV to w: a "timestamp" column followed by one
// column per channel, in the given order, with rows at the union of every
// channel's timestamps.
func Write(w io.Writer, channels []Channel) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(channels)+1)
	header = append(header, "timestamp")
	cursors := make([]*cursor, len(channels))
	for i, ch := range channels {
		header = append(header, ch.Name)
		cursors[i] = newCursor(ch)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for {
		ts, ok := minTimestamp(cursors)
		if !ok {
			break
		}
		row := make([]string, len(cursors)+1)
		row[0] = fmt.Sprintf("%d", ts)
		for i, c := range cursors {
			if !c.done && c.next == ts {
				row[i+1] = c.ch.Events[c.idx].Value
				c.idx++
				c.refresh()
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func minTimestamp(cursors []*cursor) (moccarduino.Time, bool) {
	var min moccarduino.Time
	found := false
	for _, c := range cursors {
		if c.done {
			continue
		}
		if !found || c.next < min {
			min = c.next
			found = true
		}
	}
	return min, found
}
