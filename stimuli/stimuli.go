// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package stimuli loads and replays stimulus files: whitespace-delimited
// lines driving button presses and serial-rx injections against a running
// Simulator.
package stimuli

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/db47h/moccarduino"
)

// Kind distinguishes the two stimulus actions a line can carry.
type Kind int

const (
	// ButtonEdge is a button down/up transition (action '1'..'3').
	ButtonEdge Kind = iota
	// SerialPayload is a byte string injected into the rx buffer (action 'S').
	SerialPayload
)

// Event is one parsed stimulus line.
type Event struct {
	Time   moccarduino.Time
	Kind   Kind
	Button int    // 1-3, only meaningful for ButtonEdge
	Down   bool   // true = pressed ('d'), only meaningful for ButtonEdge
	Data   string // serial payload, only meaningful for SerialPayload
}

// File is a fully parsed stimulus file: the ordered events plus the
// declared simulation end time (the lone-timestamp line).
type File struct {
	Events  []Event
	EndTime moccarduino.Time
}

// Load parses r per the stimulus file grammar (§6): lines of
// "<timestamp> <action> <state>", or a lone timestamp marking the
// simulation's end time. Timestamps must be non-decreasing; violations and
// unknown action codes fail with moccarduino.BadInput.
func Load(r io.Reader) (*File, error) {
	f := &File{}
	sc := bufio.NewScanner(r)
	var last moccarduino.Time
	haveEnd := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ev, end, err := parseLine(line)
		if err != nil {
			return nil, badInput(lineNo, err.Error())
		}
		if ev.Time < last {
			return nil, badInput(lineNo, "timestamp out of order")
		}
		last = ev.Time
		if end {
			f.EndTime = ev.Time
			haveEnd = true
			continue
		}
		f.Events = append(f.Events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !haveEnd {
		return nil, badInput(lineNo, "missing simulation end time line")
	}
	return f, nil
}

func badInput(line int, msg string) error {
	return moccarduino.NewBadInputError(
		strconv.Itoa(line) + ": " + msg,
	)
}

// parseLine parses a single stimulus line. end is true for a lone-timestamp
// end-of-simulation marker.
func parseLine(line string) (ev Event, end bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, false, errMsg("empty line")
	}
	t, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Event{}, false, errMsg("invalid timestamp")
	}
	ts := moccarduino.Time(t)
	if len(fields) == 1 {
		return Event{Time: ts}, true, nil
	}
	if len(fields) < 2 {
		return Event{}, false, errMsg("missing action")
	}
	action := fields[1]
	switch action {
	case "1", "2", "3":
		btn, _ := strconv.Atoi(action)
		if len(fields) < 3 {
			return Event{}, false, errMsg("missing button state")
		}
		var down bool
		switch fields[2] {
		case "d":
			down = true
		case "u":
			down = false
		default:
			return Event{}, false, errMsg("invalid button state")
		}
		return Event{Time: ts, Kind: ButtonEdge, Button: btn, Down: down}, false, nil
	case "S":
		idx := strings.Index(line, "S")
		payload := strings.TrimRight(line[idx+1:], " \t")
		payload = strings.TrimPrefix(payload, " ")
		return Event{Time: ts, Kind: SerialPayload, Data: payload}, false, nil
	default:
		return Event{}, false, errMsg("unknown action code")
	}
}

type stringError string

func (e stringError) Error() string { return string(e) }

func errMsg(s string) error { return stringError(s) }

// Drive replays f's events onto sim: button edges drive the physical pin at
// buttonPins[event.Button-1] LOW on press ('d') and HIGH on release ('u')
// (the reference hardware's buttons are active-low), serial payloads are
// enqueued as-is. Events must not lie in sim's past; Load already guarantees
// non-decreasing timestamps, so this only fails if Drive is called after
// the simulation clock has passed an event's time.
func Drive(sim *moccarduino.Simulator, f *File, buttonPins [3]int) error {
	now := sim.Now()
	for _, ev := range f.Events {
		if ev.Time < now {
			return moccarduino.NewBadInputError("stimulus event scheduled in the past")
		}
		delay := ev.Time - now
		switch ev.Kind {
		case ButtonEdge:
			v := moccarduino.PinHigh
			if ev.Down {
				v = moccarduino.PinLow
			}
			if err := sim.EnqueuePinChange(buttonPins[ev.Button-1], v, delay); err != nil {
				return err
			}
		case SerialPayload:
			if err := sim.EnqueueSerial(ev.Data, delay); err != nil {
				return err
			}
		}
	}
	return nil
}
