// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Program is the user-code interface the harness drives: Setup runs once,
// Loop runs repeatedly. Both receive the Emulator and return nothing beyond
// error, the Go rendering of "no return value, aborts the run on failure".
type Program interface {
	Setup(e *Emulator) error
	Loop(e *Emulator) error
}

const (
	defaultSetupPostDelay Time = 1
	defaultLoopDelay      Time = 100
)

type serialInjection struct {
	t    Time
	data string
}

// Simulator is the scheduler/controller (C5): it owns the per-input-pin
// FutureStores, the serial-rx injection queue, and drives Program's
// Setup/Loop entry points against the Emulator's logical clock.
type Simulator struct {
	emu     *Emulator
	program Program

	inputStores map[int]*FutureStore[PinState]

	serialQueue []serialInjection

	runID uuid.UUID
	log   *zap.Logger
}

// NewSimulator builds a Simulator bound to emu and program. A fresh run
// identifier is minted for correlating log lines across a run.
func NewSimulator(emu *Emulator, program Program, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Simulator{
		emu:         emu,
		program:     program,
		inputStores: make(map[int]*FutureStore[PinState]),
		runID:       id,
		log:         log.With(zap.String("run_id", id.String())),
	}
}

// RunID returns this simulation run's identifier.
func (s *Simulator) RunID() uuid.UUID { return s.runID }

// Now returns the emulator's current logical clock value.
func (s *Simulator) Now() Time { return s.emu.Now() }

func (s *Simulator) storeFor(pin int) (*FutureStore[PinState], error) {
	if st, ok := s.inputStores[pin]; ok {
		return st, nil
	}
	p, err := s.emu.Pin(pin)
	if err != nil {
		return nil, err
	}
	st := NewFutureStore[PinState]()
	if err := st.Attach(p.InputSink()); err != nil {
		return nil, err
	}
	s.inputStores[pin] = st
	s.emu.RegisterPinInput(pin, st)
	return st, nil
}

// EnqueuePinChange schedules pin to take on value v, delay microseconds
// from now. The backing FutureStore is created and attached to the pin on
// first use.
func (s *Simulator) EnqueuePinChange(pin int, v PinValue, delay Time) error {
	st, err := s.storeFor(pin)
	if err != nil {
		return err
	}
	t := s.emu.Now() + delay
	return st.OnEvent(t, PinState{Pin: pin, Value: v})
}

// EnqueueSerial appends a serial-rx injection, delay microseconds from now.
// Injection times must be monotonic across calls.
func (s *Simulator) EnqueueSerial(data string, delay Time) error {
	t := s.emu.Now() + delay
	if n := len(s.serialQueue); n > 0 && t < s.serialQueue[n-1].t {
		return newError(BadInput, "serial injections must be enqueued in non-decreasing time order")
	}
	s.serialQueue = append(s.serialQueue, serialInjection{t: t, data: data})
	return nil
}

// drainSerial appends every queued injection whose time has arrived to the
// emulator's byte buffer, in order, and drops them from the queue.
func (s *Simulator) drainSerial() {
	now := s.emu.Now()
	n := sort.Search(len(s.serialQueue), func(i int) bool { return s.serialQueue[i].t > now })
	for i := 0; i < n; i++ {
		s.emu.PushSerial([]byte(s.serialQueue[i].data))
	}
	s.serialQueue = s.serialQueue[n:]
}

// RunSetup calls the program's Setup, then advances the clock by
// postDelay (default 1 microsecond).
func (s *Simulator) RunSetup(postDelay Time) error {
	if postDelay == 0 {
		postDelay = defaultSetupPostDelay
	}
	s.log.Debug("running setup")
	if err := s.program.Setup(s.emu); err != nil {
		return err
	}
	if err := s.emu.AdvanceClockBy(postDelay); err != nil {
		return err
	}
	s.drainSerial()
	return nil
}

// RunLoop calls the program's Loop once, then advances the clock by
// postDelay (default the configured loop delay, 100 microseconds).
func (s *Simulator) RunLoop(postDelay Time) error {
	if postDelay == 0 {
		postDelay = defaultLoopDelay
	}
	if err := s.program.Loop(s.emu); err != nil {
		return err
	}
	if err := s.emu.AdvanceClockBy(postDelay); err != nil {
		return err
	}
	s.drainSerial()
	return nil
}

// RunLoopsFor repeats RunLoop until the clock has advanced by period
// (measured from the call's start time) or predicate returns false.
// predicate may be nil, meaning "run unconditionally".
func (s *Simulator) RunLoopsFor(period, postDelay Time, predicate func(now Time) bool) error {
	start := s.emu.Now()
	for s.emu.Now()-start < period {
		if predicate != nil && !predicate(s.emu.Now()) {
			return nil
		}
		if err := s.RunLoop(postDelay); err != nil {
			return err
		}
	}
	return nil
}

// RunNLoops is the bounded-count variant of RunLoopsFor.
func (s *Simulator) RunNLoops(count int, postDelay Time, predicate func(now Time) bool) error {
	for i := 0; i < count; i++ {
		if predicate != nil && !predicate(s.emu.Now()) {
			return nil
		}
		if err := s.RunLoop(postDelay); err != nil {
			return err
		}
	}
	return nil
}
