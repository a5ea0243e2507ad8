// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

// Aggregator suppresses transient "hiccups": repeated events inside a
// single window that all settle back to the last emitted value collapse
// to nothing, so only a genuine change survives. It is meant to sit right
// after a Demultiplexer, with a window much larger than the
// demultiplexer's.
type Aggregator struct {
	chain[*BitArray]

	window      Time
	windowClose Time
	hasWindow   bool

	lastInputState   *BitArray
	lastEmittedState *BitArray
}

// NewAggregator returns an Aggregator over nbits-wide snapshots with the
// given window.
func NewAggregator(nbits int, window Time) *Aggregator {
	return &Aggregator{
		window:           window,
		lastInputState:   NewBitArray(nbits),
		lastEmittedState: NewBitArray(nbits),
	}
}

func (a *Aggregator) processTo(now Time) error {
	if !a.hasWindow || now < a.windowClose {
		return nil
	}
	if !a.lastInputState.Equals(a.lastEmittedState) {
		a.lastEmittedState = a.lastInputState
		if err := a.forwardEvent(a.windowClose, a.lastEmittedState); err != nil {
			return err
		}
	} else if err := a.forwardTimeAdvance(a.windowClose); err != nil {
		return err
	}
	a.hasWindow = false
	return nil
}

// OnEvent implements Consumer: it closes any window already due, then
// records v as the current input and opens a fresh window ending at
// t+window.
func (a *Aggregator) OnEvent(t Time, v *BitArray) error {
	if err := a.checkCausality(t); err != nil {
		return err
	}
	if err := a.processTo(t); err != nil {
		return err
	}
	a.lastInputState = v
	a.windowClose = t + a.window
	a.hasWindow = true
	a.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer.
func (a *Aggregator) OnTimeAdvance(t Time) error {
	if err := a.checkCausality(t); err != nil {
		return err
	}
	if err := a.processTo(t); err != nil {
		return err
	}
	if err := a.forwardTimeAdvance(t); err != nil {
		return err
	}
	a.advance(t)
	return nil
}

// OnClear implements Consumer: drops the open window and emitted-state
// memory. last_time is preserved.
func (a *Aggregator) OnClear() error {
	a.hasWindow = false
	a.lastEmittedState = NewBitArray(a.lastEmittedState.Len())
	return a.forwardClear()
}
