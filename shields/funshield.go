// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package shields holds fixed pin-role presets for known shield boards, and
// the pin-token resolver shared by them and by user-supplied wiring.
package shields

import (
	"strconv"

	"github.com/pkg/errors"
)

// AnalogPinBase is the physical pin id of analog pin A0 on an Arduino
// Uno-class board; Ai resolves to AnalogPinBase+i.
const AnalogPinBase = 14

// ResolvePin converts a wiring pin token ("13", "A0", ...) into its physical
// pin id.
func ResolvePin(token string) (int, error) {
	if len(token) > 1 && (token[0] == 'A' || token[0] == 'a') {
		n, err := strconv.Atoi(token[1:])
		if err != nil {
			return 0, errors.Errorf("shields: invalid analog pin token %q", token)
		}
		return AnalogPinBase + n, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, errors.Errorf("shields: invalid pin token %q", token)
	}
	return n, nil
}

// Funshield is the fixed pin layout of the Velleman/funshield add-on board:
// a latch/clock/data-driven 4-digit 7-segment display, four discrete LEDs,
// three push buttons and a trimmer potentiometer, as wired by the reference
// firmware (funshield.h). Feed this to wiring.ParseAll to get a flat
// role -> pin-token mapping, then ResolvePin each value.
var Funshield = map[string]string{
	"latch":        "4",
	"clock":        "7",
	"data":         "8",
	"beep":         "3",
	"led[0..3]":    "13,12,11,10",
	"button[0..2]": "A1,A2,A3",
	"trimmer":      "A0",
}
