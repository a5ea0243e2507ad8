// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package report_test

import (
	"strings"
	"testing"

	"github.com/db47h/moccarduino"
	"github.com/db47h/moccarduino/report"
)

func TestWriteUnionOfTimestamps(t *testing.T) {
	b1 := moccarduino.NewTimeSeries[bool]()
	_ = b1.OnEvent(100, true)
	_ = b1.OnEvent(300, false)

	leds := moccarduino.NewTimeSeries[*moccarduino.BitArray]()
	bm := moccarduino.NewBitArray(4)
	_ = bm.SetBit(0, true)
	_ = leds.OnEvent(200, bm.Clone())

	ledsChan, err := report.LedsChannel("leds", leds)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := report.Write(&sb, []report.Channel{
		report.BoolChannel("b1", b1),
		ledsChan,
	}); err != nil {
		t.Fatal(err)
	}

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "timestamp,b1,leds" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("want header + 3 rows, got %d lines: %q", len(lines), out)
	}
	if lines[1] != "100,1," {
		t.Fatalf("unexpected row 1: %q", lines[1])
	}
	if lines[2] != "200,,1" {
		t.Fatalf("unexpected row 2: %q", lines[2])
	}
	if lines[3] != "300,0," {
		t.Fatalf("unexpected row 3: %q", lines[3])
	}
}
