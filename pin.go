// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

// PinValue is the three-valued logic level carried by a pin: LOW, HIGH, or
// Undefined (the sentinel before any mode/value has ever been observed).
type PinValue int

const (
	// PinUndefinedValue is the sentinel value of a pin that has never been
	// written or driven.
	PinUndefinedValue PinValue = -1
	// PinLow is a digital LOW (0V) level.
	PinLow PinValue = 0
	// PinHigh is a digital HIGH level.
	PinHigh PinValue = 1
)

func (v PinValue) String() string {
	switch v {
	case PinLow:
		return "LOW"
	case PinHigh:
		return "HIGH"
	default:
		return "UNDEFINED"
	}
}

// PinState is the event value type carried on a pin's event stream: which
// pin it is, and what value it took on. Carrying the pin identity lets
// several pins feed a single downstream consumer (LedBank, SerialSeg)
// without losing track of which pin produced which event.
type PinState struct {
	Pin   int
	Value PinValue
}

// Wiring is the physical direction a pin was registered with; it never
// changes after registration.
type Wiring int

const (
	// WiringUndefined pins accept either INPUT or OUTPUT mode.
	WiringUndefined Wiring = iota
	WiringInput
	WiringOutput
)

// Mode is the software direction set by pin_mode. It starts Undefined and
// may be set exactly once to a mode compatible with the pin's Wiring.
type Mode int

const (
	ModeUndefined Mode = iota
	ModeInput
	ModeOutput
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "INPUT"
	case ModeOutput:
		return "OUTPUT"
	default:
		return "UNDEFINED"
	}
}

// Pin is a single emulated microcontroller pin.
type Pin struct {
	id      int
	wiring  Wiring
	mode    Mode
	current PinValue
	series  *TimeSeries[PinState]
}

// NewPin returns a Pin with the given numeric id and fixed wiring, mode
// Undefined and value Undefined.
func NewPin(id int, wiring Wiring) *Pin {
	return &Pin{id: id, wiring: wiring, current: PinUndefinedValue, series: NewTimeSeries[PinState]()}
}

// ID returns the pin's numeric identity.
func (p *Pin) ID() int { return p.id }

// Wiring returns the pin's fixed physical direction.
func (p *Pin) Wiring() Wiring { return p.wiring }

// Mode returns the pin's current software direction.
func (p *Pin) Mode() Mode { return p.mode }

// Value returns the pin's current level.
func (p *Pin) Value() PinValue { return p.current }

// Series returns the pin's recorded event history.
func (p *Pin) Series() *TimeSeries[PinState] { return p.series }

// SetMode transitions the pin's mode per the UNDEFINED -> INPUT|OUTPUT
// state machine (§4.4). Re-setting to the same mode is a no-op; any other
// transition is a PinModeConflict. Wiring incompatible with the requested
// mode is a PinWiringConflict. On the first transition to INPUT, the
// pin's value initializes to HIGH (pull-up default).
func (p *Pin) SetMode(m Mode) error {
	if m != ModeInput && m != ModeOutput {
		return newError(PinModeInvalid, "invalid pin mode")
	}
	switch p.mode {
	case ModeUndefined:
		if m == ModeInput && p.wiring == WiringOutput {
			return newError(PinWiringConflict, "pin wired OUTPUT cannot be set to INPUT")
		}
		if m == ModeOutput && p.wiring == WiringInput {
			return newError(PinWiringConflict, "pin wired INPUT cannot be set to OUTPUT")
		}
		p.mode = m
		if m == ModeInput {
			p.current = PinHigh
		}
	case ModeInput, ModeOutput:
		if m != p.mode {
			return newError(PinModeConflict, "pin mode cannot change once set")
		}
	}
	return nil
}

// Write sets an OUTPUT pin's level at time t and records the transition
// downstream.
func (p *Pin) Write(t Time, v PinValue) error {
	if p.mode != ModeOutput {
		return newError(PinModeConflict, "digitalWrite on a pin not in OUTPUT mode")
	}
	p.current = v
	return p.series.OnEvent(t, PinState{Pin: p.id, Value: v})
}

// Drive sets an INPUT pin's externally-asserted level at time t (what a
// stimulus or wiring peer asserts onto it) and records the transition.
func (p *Pin) Drive(t Time, v PinValue) error {
	if p.mode != ModeInput {
		return newError(PinModeConflict, "external drive on a pin not in INPUT mode")
	}
	p.current = v
	return p.series.OnEvent(t, PinState{Pin: p.id, Value: v})
}

// Read returns the pin's current level. Reading an UNDEFINED or OUTPUT-mode
// pin is an error.
func (p *Pin) Read() (PinValue, error) {
	if p.mode != ModeInput {
		return PinUndefinedValue, newError(PinModeInvalid, "digitalRead on a pin not in INPUT mode")
	}
	return p.current, nil
}

// Reset restores the pin to its post-registration state: mode Undefined,
// value Undefined, history cleared. Wiring is unaffected (it is fixed at
// registration).
func (p *Pin) Reset() error {
	p.mode = ModeUndefined
	p.current = PinUndefinedValue
	return p.series.OnClear()
}
