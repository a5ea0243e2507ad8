// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino_test

import (
	"testing"

	"github.com/db47h/moccarduino"
)

// TestDemultiplexerBasic reproduces scenario 2 from the end-to-end
// scenarios: alternating nibbles fed at window=20/threshold=2 must
// collapse to exactly two downstream events.
func TestDemultiplexerBasic(t *testing.T) {
	fs := moccarduino.NewFutureStore[*moccarduino.BitArray]()
	demux := moccarduino.NewDemultiplexer(4, 20, 2)
	sink := moccarduino.NewTimeSeries[*moccarduino.BitArray]()
	if err := fs.Attach(demux); err != nil {
		t.Fatal(err)
	}
	if err := demux.Attach(sink); err != nil {
		t.Fatal(err)
	}

	bits := func(pattern int) *moccarduino.BitArray {
		b := moccarduino.NewBitArray(4)
		for i := 0; i < 4; i++ {
			_ = b.SetBit(i, pattern&(1<<uint(i)) != 0)
		}
		return b
	}

	var tm moccarduino.Time
	for tm = 0; tm < 1000; tm += 2 {
		if err := fs.OnEvent(tm, bits(0b0010)); err != nil {
			t.Fatal(err)
		}
		if err := fs.OnEvent(tm+1, bits(0b0100)); err != nil {
			t.Fatal(err)
		}
	}
	for ; tm < 2000; tm += 2 {
		if err := fs.OnEvent(tm, bits(0b0001)); err != nil {
			t.Fatal(err)
		}
		if err := fs.OnEvent(tm+1, bits(0b1000)); err != nil {
			t.Fatal(err)
		}
	}
	if err := fs.OnTimeAdvance(2000); err != nil {
		t.Fatal(err)
	}

	if sink.Len() != 2 {
		t.Fatalf("want exactly 2 downstream events, got %d", sink.Len())
	}
	e0, _ := sink.At(0)
	e1, _ := sink.At(1)
	if e0.Time >= 22 {
		t.Fatalf("want first event before t=22, got t=%d", e0.Time)
	}
	if v, _ := e0.Value.GetBit(1); !v {
		t.Fatalf("want bit1 set in first event")
	}
	if v, _ := e0.Value.GetBit(2); !v {
		t.Fatalf("want bit2 set in first event")
	}
	if e1.Time <= 1000 || e1.Time >= 1022 {
		t.Fatalf("want second event in (1000,1022), got t=%d", e1.Time)
	}
}

func TestDemultiplexerIdempotentOnStableInput(t *testing.T) {
	demux := moccarduino.NewDemultiplexer(1, 10, 3)
	sink := moccarduino.NewTimeSeries[*moccarduino.BitArray]()
	if err := demux.Attach(sink); err != nil {
		t.Fatal(err)
	}
	on := moccarduino.NewBitArray(1)
	_ = on.SetBit(0, true)
	if err := demux.OnEvent(0, on); err != nil {
		t.Fatal(err)
	}
	if err := demux.OnTimeAdvance(10); err != nil {
		t.Fatal(err)
	}
	if sink.Len() != 1 {
		t.Fatalf("want exactly 1 emitted event for stable input, got %d", sink.Len())
	}
	got, _ := sink.At(0)
	if v, _ := got.Value.GetBit(0); !v {
		t.Fatal("want emitted state to equal stable input")
	}
}
