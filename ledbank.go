// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

// LedBank is a forked consumer that watches a set of pins and assembles
// their combined state into a single bitmap, emitted on its sprout
// whenever it changes. It is the entry point of a multiplexed-LED
// pipeline: LedBank -> Demultiplexer -> Aggregator -> TimeSeries.
type LedBank struct {
	forkedChain[PinState, *BitArray]

	pinToIndex map[int]int
	state      *BitArray
}

// NewLedBank returns a LedBank mapping each physical pin id to a bit index
// in an nbits-wide bitmap.
func NewLedBank(pinToIndex map[int]int, nbits int) *LedBank {
	m := make(map[int]int, len(pinToIndex))
	for k, v := range pinToIndex {
		m[k] = v
	}
	return &LedBank{pinToIndex: m, state: NewBitArray(nbits)}
}

// OnEvent implements Consumer. Pin ids not present in the mapping are
// ignored (the event still causality-advances this consumer but produces
// no bitmap change).
func (l *LedBank) OnEvent(t Time, v PinState) error {
	if err := l.checkCausality(t); err != nil {
		return err
	}
	if idx, ok := l.pinToIndex[v.Pin]; ok {
		bit := v.Value == PinHigh
		cur, _ := l.state.GetBit(idx)
		if cur != bit {
			_ = l.state.SetBit(idx, bit)
			if l.sprout != nil {
				if err := l.sprout.OnEvent(t, l.state.Clone()); err != nil {
					return err
				}
			}
		}
	} else if err := l.forwardSproutTimeAdvance(t); err != nil {
		return err
	}
	if err := l.forwardEvent(t, v); err != nil {
		return err
	}
	l.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer, propagating the tick to both the next
// consumer and the sprout.
func (l *LedBank) OnTimeAdvance(t Time) error {
	if err := l.checkCausality(t); err != nil {
		return err
	}
	if err := l.forwardTimeAdvance(t); err != nil {
		return err
	}
	if err := l.forwardSproutTimeAdvance(t); err != nil {
		return err
	}
	l.advance(t)
	return nil
}

// OnClear implements Consumer: the tracked bitmap resets to all-clear.
func (l *LedBank) OnClear() error {
	l.state.Clear()
	if err := l.forwardClear(); err != nil {
		return err
	}
	return l.forwardSproutClear()
}
