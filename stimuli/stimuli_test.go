// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package stimuli_test

import (
	"strings"
	"testing"

	"github.com/db47h/moccarduino"
	"github.com/db47h/moccarduino/stimuli"
)

func TestLoadParsesButtonsAndSerial(t *testing.T) {
	input := `
100 1 d
200 1 u
300 S hello world
1000
`
	f, err := stimuli.Load(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Events) != 3 {
		t.Fatalf("want 3 events, got %d", len(f.Events))
	}
	if f.EndTime != 1000 {
		t.Fatalf("want end time 1000, got %d", f.EndTime)
	}
	if f.Events[0].Kind != stimuli.ButtonEdge || f.Events[0].Button != 1 || !f.Events[0].Down {
		t.Fatalf("unexpected first event: %+v", f.Events[0])
	}
	if f.Events[2].Kind != stimuli.SerialPayload || f.Events[2].Data != "hello world" {
		t.Fatalf("unexpected serial event: %+v", f.Events[2])
	}
}

func TestLoadRejectsOutOfOrder(t *testing.T) {
	input := "200 1 d\n100 1 u\n1000\n"
	if _, err := stimuli.Load(strings.NewReader(input)); err == nil {
		t.Fatal("want error for out-of-order timestamps")
	} else if !moccarduino.IsKind(err, moccarduino.BadInput) {
		t.Fatalf("want BadInput, got %v", err)
	}
}

func TestLoadRejectsUnknownAction(t *testing.T) {
	input := "100 Z d\n1000\n"
	if _, err := stimuli.Load(strings.NewReader(input)); err == nil {
		t.Fatal("want error for unknown action")
	}
}

func TestLoadRequiresEndTime(t *testing.T) {
	input := "100 1 d\n"
	if _, err := stimuli.Load(strings.NewReader(input)); err == nil {
		t.Fatal("want error for missing end-time line")
	}
}
