// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino_test

import (
	"testing"

	"github.com/db47h/moccarduino"
)

func TestPinModeTransitions(t *testing.T) {
	p := moccarduino.NewPin(13, moccarduino.WiringUndefined)
	if err := p.SetMode(moccarduino.ModeOutput); err != nil {
		t.Fatal(err)
	}
	if err := p.SetMode(moccarduino.ModeInput); !moccarduino.IsKind(err, moccarduino.PinModeConflict) {
		t.Fatalf("want PinModeConflict switching OUTPUT->INPUT, got %v", err)
	}
}

func TestPinWiringConflict(t *testing.T) {
	p := moccarduino.NewPin(2, moccarduino.WiringInput)
	if err := p.SetMode(moccarduino.ModeOutput); !moccarduino.IsKind(err, moccarduino.PinWiringConflict) {
		t.Fatalf("want PinWiringConflict, got %v", err)
	}
}

func TestPinPullupDefault(t *testing.T) {
	p := moccarduino.NewPin(2, moccarduino.WiringUndefined)
	if err := p.SetMode(moccarduino.ModeInput); err != nil {
		t.Fatal(err)
	}
	if p.Value() != moccarduino.PinHigh {
		t.Fatalf("want pull-up default HIGH, got %v", p.Value())
	}
}

func TestPinReadWriteModeErrors(t *testing.T) {
	p := moccarduino.NewPin(3, moccarduino.WiringUndefined)
	if _, err := p.Read(); !moccarduino.IsKind(err, moccarduino.PinModeInvalid) {
		t.Fatalf("want PinModeInvalid reading an undefined pin, got %v", err)
	}
	if err := p.Write(0, moccarduino.PinHigh); !moccarduino.IsKind(err, moccarduino.PinModeConflict) {
		t.Fatalf("want PinModeConflict writing an undefined pin, got %v", err)
	}
}
