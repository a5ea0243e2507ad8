// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import (
	"go.uber.org/zap"
)

// BitOrder selects which end of a byte shift_out/shift_in starts from.
type BitOrder int

const (
	LSBFirst BitOrder = iota
	MSBFirst
)

// Delays groups the three clock advances the emulator charges for pin
// operations. Zero means "use the default".
type Delays struct {
	Read    Time
	Write   Time
	SetMode Time
}

const (
	defaultReadDelay    Time = 20
	defaultWriteDelay   Time = 20
	defaultSetModeDelay Time = 100
)

// apiNames lists every gate-able call name (§6).
var apiNames = []string{
	"pin_mode", "digital_write", "digital_read", "analog_read",
	"analog_reference", "analog_write", "millis", "micros",
	"delay", "delay_microseconds", "pulse_in", "pulse_in_long",
	"shift_out", "shift_in", "tone", "no_tone", "serial",
}

var emulatorAcquired bool

// Emulator is the logical-clock authority and pin state machine: the
// single surface user code calls into. It is a process-wide singleton; a
// second acquisition fails with AlreadyInitialized.
type Emulator struct {
	clock Time

	pins     map[int]*Pin
	pinOrder []int

	inputs     map[int]Consumer[PinState]
	inputOrder []int

	serialRx []byte

	gates map[string]bool
	delays Delays

	log *zap.Logger
}

// NewEmulator acquires the process-wide Emulator singleton. delays with
// zero fields fall back to the documented defaults. log may be nil, in
// which case a no-op logger is used.
func NewEmulator(delays Delays, log *zap.Logger) (*Emulator, error) {
	if emulatorAcquired {
		return nil, newError(AlreadyInitialized, "an Emulator instance already exists in this process")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if delays.Read == 0 {
		delays.Read = defaultReadDelay
	}
	if delays.Write == 0 {
		delays.Write = defaultWriteDelay
	}
	if delays.SetMode == 0 {
		delays.SetMode = defaultSetModeDelay
	}
	gates := make(map[string]bool, len(apiNames))
	for _, n := range apiNames {
		gates[n] = true
	}
	emulatorAcquired = true
	return &Emulator{
		pins:   make(map[int]*Pin),
		inputs: make(map[int]Consumer[PinState]),
		gates:  gates,
		delays: delays,
		log:    log,
	}, nil
}

// ReleaseEmulator frees the process-wide acquisition slot, allowing a
// subsequent NewEmulator call to succeed. A normal single-run process
// never needs to call this; it exists for test harnesses and any caller
// that legitimately runs several independent simulations back to back in
// the same process.
func ReleaseEmulator() { emulatorAcquired = false }

// Now returns the current logical clock value.
func (e *Emulator) Now() Time { return e.clock }

// SetAPIEnabled toggles a gate by name (§6). Unknown names are ignored,
// matching a forward-compatible config surface.
func (e *Emulator) SetAPIEnabled(name string, enabled bool) {
	if _, ok := e.gates[name]; ok {
		e.gates[name] = enabled
		e.log.Debug("api gate changed", zap.String("api", name), zap.Bool("enabled", enabled))
	}
}

func (e *Emulator) checkGate(name string) error {
	if enabled, ok := e.gates[name]; ok && !enabled {
		return newError(ApiDisabled, "api call disabled: "+name)
	}
	return nil
}

// RegisterPin creates a pin with the given fixed wiring. Re-registering an
// existing id is PinDuplicated.
func (e *Emulator) RegisterPin(id int, wiring Wiring) (*Pin, error) {
	if _, ok := e.pins[id]; ok {
		return nil, newError(PinDuplicated, "pin already registered")
	}
	p := NewPin(id, wiring)
	e.pins[id] = p
	e.pinOrder = append(e.pinOrder, id)
	e.log.Debug("pin registered", zap.Int("pin", id))
	return p, nil
}

// Pin returns the registered pin with the given id, or an error.
func (e *Emulator) Pin(id int) (*Pin, error) {
	p, ok := e.pins[id]
	if !ok {
		return nil, newError(PinUndefined, "pin not registered")
	}
	return p, nil
}

// RegisterPinInput wires producer as the input-side FutureStore for pin id:
// advance_clock_by will call producer.OnTimeAdvance on every tick, forcing
// release of due future events into the pin. producer is expected to
// already forward onto the pin's input sink (see Pin.InputSink).
// Re-registering replaces the previous producer for that id.
func (e *Emulator) RegisterPinInput(id int, producer Consumer[PinState]) {
	if _, ok := e.inputs[id]; !ok {
		e.inputOrder = append(e.inputOrder, id)
	}
	e.inputs[id] = producer
}

// InputSink returns a Consumer adapter that drives pin id's value from
// upstream producer events.
func (p *Pin) InputSink() Consumer[PinState] { return &pinInputSink{pin: p} }

type pinInputSink struct{ pin *Pin }

func (s *pinInputSink) OnEvent(t Time, v PinState) error { return s.pin.Drive(t, v.Value) }
func (s *pinInputSink) OnTimeAdvance(Time) error         { return nil }
func (s *pinInputSink) OnClear() error                   { return nil }

// AdvanceClockBy is the single mutator of the clock (§4.4): it increments
// now, then ticks every registered input producer (releasing due future
// events into their pins), then ticks every pin (so attached output-side
// consumers observe the time advance).
func (e *Emulator) AdvanceClockBy(dt Time) error {
	next := e.clock + dt
	if next < e.clock {
		return newError(InvariantViolation, "clock advance overflowed")
	}
	e.clock = next
	for _, id := range e.inputOrder {
		if err := e.inputs[id].OnTimeAdvance(e.clock); err != nil {
			return err
		}
	}
	for _, id := range e.pinOrder {
		if err := e.pins[id].series.OnTimeAdvance(e.clock); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) writePin(id int, v PinValue) error {
	p, err := e.Pin(id)
	if err != nil {
		return err
	}
	if err := p.Write(e.clock, v); err != nil {
		return err
	}
	return e.AdvanceClockBy(e.delays.Write)
}

func (e *Emulator) readPin(id int) (PinValue, error) {
	p, err := e.Pin(id)
	if err != nil {
		return PinUndefinedValue, err
	}
	v, err := p.Read()
	if err != nil {
		return PinUndefinedValue, err
	}
	if err := e.AdvanceClockBy(e.delays.Read); err != nil {
		return PinUndefinedValue, err
	}
	return v, nil
}

// PinMode implements pin_mode (§4.4).
func (e *Emulator) PinMode(id int, mode Mode) error {
	if err := e.checkGate("pin_mode"); err != nil {
		return err
	}
	p, err := e.Pin(id)
	if err != nil {
		return err
	}
	if err := p.SetMode(mode); err != nil {
		return err
	}
	return e.AdvanceClockBy(e.delays.SetMode)
}

// DigitalWrite implements digital_write.
func (e *Emulator) DigitalWrite(id int, v PinValue) error {
	if err := e.checkGate("digital_write"); err != nil {
		return err
	}
	return e.writePin(id, v)
}

// DigitalRead implements digital_read.
func (e *Emulator) DigitalRead(id int) (PinValue, error) {
	if err := e.checkGate("digital_read"); err != nil {
		return PinUndefinedValue, err
	}
	return e.readPin(id)
}

// AnalogRead implements analog_read: current_value * 1023.
func (e *Emulator) AnalogRead(id int) (int, error) {
	if err := e.checkGate("analog_read"); err != nil {
		return 0, err
	}
	v, err := e.readPin(id)
	if err != nil {
		return 0, err
	}
	if v == PinHigh {
		return 1023, nil
	}
	return 0, nil
}

// AnalogReference is defined by the API surface but not modeled.
func (e *Emulator) AnalogReference(string) error { return e.unimplemented("analog_reference") }

// AnalogWrite is defined by the API surface but not modeled.
func (e *Emulator) AnalogWrite(int, int) error { return e.unimplemented("analog_write") }

// PulseIn is defined by the API surface but not modeled.
func (e *Emulator) PulseIn(int, PinValue, Time) (Time, error) {
	if err := e.unimplemented("pulse_in"); err != nil {
		return 0, err
	}
	return 0, nil
}

// PulseInLong is defined by the API surface but not modeled.
func (e *Emulator) PulseInLong(int, PinValue, Time) (Time, error) {
	if err := e.unimplemented("pulse_in_long"); err != nil {
		return 0, err
	}
	return 0, nil
}

// Tone is defined by the API surface but not modeled.
func (e *Emulator) Tone(int, int) error { return e.unimplemented("tone") }

// NoTone is defined by the API surface but not modeled.
func (e *Emulator) NoTone(int) error { return e.unimplemented("no_tone") }

func (e *Emulator) unimplemented(name string) error {
	if err := e.checkGate(name); err != nil {
		return err
	}
	return newError(NotImplemented, name+" is not modeled by this simulator")
}

func bitOf(b byte, i int, order BitOrder) bool {
	if order == MSBFirst {
		return b&(1<<uint(7-i)) != 0
	}
	return b&(1<<uint(i)) != 0
}

// ShiftOut implements shift_out: eight digital_write-equivalent pairs of
// data-then-clock (HIGH then LOW), MSB-first or LSB-first.
func (e *Emulator) ShiftOut(dataPin, clockPin int, order BitOrder, b byte) error {
	if err := e.checkGate("shift_out"); err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		v := PinLow
		if bitOf(b, i, order) {
			v = PinHigh
		}
		if err := e.writePin(dataPin, v); err != nil {
			return err
		}
		if err := e.writePin(clockPin, PinHigh); err != nil {
			return err
		}
		if err := e.writePin(clockPin, PinLow); err != nil {
			return err
		}
	}
	return nil
}

// ShiftIn implements shift_in: eight clock edges, reading data on each.
func (e *Emulator) ShiftIn(dataPin, clockPin int, order BitOrder) (byte, error) {
	if err := e.checkGate("shift_in"); err != nil {
		return 0, err
	}
	var out byte
	for i := 0; i < 8; i++ {
		v, err := e.readPin(dataPin)
		if err != nil {
			return 0, err
		}
		if v == PinHigh {
			if order == MSBFirst {
				out |= 1 << uint(7-i)
			} else {
				out |= 1 << uint(i)
			}
		}
		if err := e.writePin(clockPin, PinHigh); err != nil {
			return 0, err
		}
		if err := e.writePin(clockPin, PinLow); err != nil {
			return 0, err
		}
	}
	return out, nil
}

// Millis implements millis(): the clock in milliseconds. It does not
// advance the clock.
func (e *Emulator) Millis() (Time, error) {
	if err := e.checkGate("millis"); err != nil {
		return 0, err
	}
	return e.clock / 1000, nil
}

// Micros implements micros(): the clock in microseconds.
func (e *Emulator) Micros() (Time, error) {
	if err := e.checkGate("micros"); err != nil {
		return 0, err
	}
	return e.clock, nil
}

// Delay implements delay(ms): advances the clock by ms milliseconds.
func (e *Emulator) Delay(ms Time) error {
	if err := e.checkGate("delay"); err != nil {
		return err
	}
	return e.AdvanceClockBy(ms * 1000)
}

// DelayMicroseconds implements delay_microseconds(us).
func (e *Emulator) DelayMicroseconds(us Time) error {
	if err := e.checkGate("delay_microseconds"); err != nil {
		return err
	}
	return e.AdvanceClockBy(us)
}

// SerialAvailable returns the number of unread bytes in the rx buffer.
func (e *Emulator) SerialAvailable() (int, error) {
	if err := e.checkGate("serial"); err != nil {
		return 0, err
	}
	return len(e.serialRx), nil
}

// SerialPeek returns the next byte without consuming it.
func (e *Emulator) SerialPeek() (byte, error) {
	if err := e.checkGate("serial"); err != nil {
		return 0, err
	}
	if len(e.serialRx) == 0 {
		return 0, newError(EmptySequence, "serial rx buffer is empty")
	}
	return e.serialRx[0], nil
}

// SerialRead consumes and returns the next byte.
func (e *Emulator) SerialRead() (byte, error) {
	if err := e.checkGate("serial"); err != nil {
		return 0, err
	}
	if len(e.serialRx) == 0 {
		return 0, newError(EmptySequence, "serial rx buffer is empty")
	}
	b := e.serialRx[0]
	e.serialRx = e.serialRx[1:]
	return b, nil
}

// PushSerial appends raw bytes to the rx buffer. It is used by the
// Simulator when draining the serial-rx injection queue; it is not gated
// since it models the hardware UART filling its own buffer, not user code
// calling an API.
func (e *Emulator) PushSerial(data []byte) {
	e.serialRx = append(e.serialRx, data...)
}
