// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino_test

import (
	"testing"

	"github.com/db47h/moccarduino"
)

type blinkProgram struct {
	pin int
}

func (b *blinkProgram) Setup(e *moccarduino.Emulator) error {
	return e.PinMode(b.pin, moccarduino.ModeOutput)
}

func (b *blinkProgram) Loop(e *moccarduino.Emulator) error {
	if err := e.DigitalWrite(b.pin, moccarduino.PinHigh); err != nil {
		return err
	}
	if err := e.Delay(1000); err != nil {
		return err
	}
	if err := e.DigitalWrite(b.pin, moccarduino.PinLow); err != nil {
		return err
	}
	return e.Delay(1000)
}

func TestSimulatorBlink(t *testing.T) {
	moccarduino.ReleaseEmulator()
	t.Cleanup(moccarduino.ReleaseEmulator)

	emu, err := moccarduino.NewEmulator(moccarduino.Delays{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := emu.RegisterPin(13, moccarduino.WiringOutput); err != nil {
		t.Fatal(err)
	}
	pin13, err := emu.Pin(13)
	if err != nil {
		t.Fatal(err)
	}
	leds := moccarduino.NewTimeSeries[moccarduino.PinState]()
	if err := pin13.Series().Attach(leds); err != nil {
		t.Fatal(err)
	}

	prog := &blinkProgram{pin: 13}
	sim := moccarduino.NewSimulator(emu, prog, nil)
	if err := sim.RunSetup(0); err != nil {
		t.Fatal(err)
	}
	if err := sim.RunNLoops(10, 0, nil); err != nil {
		t.Fatal(err)
	}

	if leds.Len() != 20 {
		t.Fatalf("want 20 transitions over 10 blink cycles, got %d", leds.Len())
	}
	mean, err := leds.DeltaMean(leds.Full())
	if err != nil {
		t.Fatal(err)
	}
	if mean < 1000000 || mean > 1000040 {
		t.Fatalf("want mean delta near 1ms delay plus write overhead, got %v", mean)
	}
}

func TestSimulatorSerialMonotonic(t *testing.T) {
	moccarduino.ReleaseEmulator()
	t.Cleanup(moccarduino.ReleaseEmulator)

	emu, err := moccarduino.NewEmulator(moccarduino.Delays{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sim := moccarduino.NewSimulator(emu, &blinkProgram{pin: 13}, nil)
	if err := sim.EnqueueSerial("a", 100); err != nil {
		t.Fatal(err)
	}
	if err := sim.EnqueueSerial("b", 50); err == nil {
		t.Fatal("want error for out-of-order serial injection")
	}
}

func TestSimulatorEnqueuePinChange(t *testing.T) {
	moccarduino.ReleaseEmulator()
	t.Cleanup(moccarduino.ReleaseEmulator)

	emu, err := moccarduino.NewEmulator(moccarduino.Delays{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := emu.RegisterPin(2, moccarduino.WiringInput); err != nil {
		t.Fatal(err)
	}
	if _, err := emu.Pin(2); err != nil {
		t.Fatal(err)
	}
	if err := emu.PinMode(2, moccarduino.ModeInput); err != nil {
		t.Fatal(err)
	}

	sim := moccarduino.NewSimulator(emu, &blinkProgram{pin: 13}, nil)
	if err := sim.EnqueuePinChange(2, moccarduino.PinHigh, 500); err != nil {
		t.Fatal(err)
	}
	if err := emu.AdvanceClockBy(500); err != nil {
		t.Fatal(err)
	}
	v, err := emu.DigitalRead(2)
	if err != nil {
		t.Fatal(err)
	}
	if v != moccarduino.PinHigh {
		t.Fatalf("want pin 2 HIGH after scheduled change, got %v", v)
	}
}
