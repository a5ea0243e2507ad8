// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

// Demultiplexer reconstructs a stable logical state from a rapidly
// multiplexed bit pattern (a display or LED bank cycled bit-by-bit much
// faster than a human eye can follow) by accumulating, per bit, how long
// it stayed ON inside a fixed window, then comparing that on-time against
// a threshold once the window closes.
type Demultiplexer struct {
	chain[*BitArray]

	window    Time
	threshold Time
	nbits     int

	windowStart   Time
	lastProcessed Time
	activeTime    []Time

	lastInputState   *BitArray
	lastEmittedState *BitArray
}

// NewDemultiplexer returns a Demultiplexer over nbits-wide snapshots, with
// the given window and on-time threshold. threshold must be in
// (0, window].
func NewDemultiplexer(nbits int, window, threshold Time) *Demultiplexer {
	return &Demultiplexer{
		window:           window,
		threshold:        threshold,
		nbits:            nbits,
		activeTime:       make([]Time, nbits),
		lastInputState:   NewBitArray(nbits),
		lastEmittedState: NewBitArray(nbits),
	}
}

func (d *Demultiplexer) accumulate(dt Time) {
	if dt == 0 {
		return
	}
	for i := 0; i < d.nbits; i++ {
		if on, _ := d.lastInputState.GetBit(i); on {
			d.activeTime[i] += dt
		}
	}
}

// processTo accumulates on-time up to now and closes every window boundary
// crossed, emitting or ticking downstream as each window closes.
func (d *Demultiplexer) processTo(now Time) error {
	for {
		windowClose := d.windowStart + d.window
		if now < windowClose {
			d.accumulate(now - d.lastProcessed)
			d.lastProcessed = now
			return nil
		}
		d.accumulate(windowClose - d.lastProcessed)
		d.lastProcessed = windowClose

		demuxed := NewBitArray(d.nbits)
		for i := 0; i < d.nbits; i++ {
			if d.activeTime[i] >= d.threshold {
				_ = demuxed.SetBit(i, true)
			}
			d.activeTime[i] = 0
		}

		if !demuxed.Equals(d.lastEmittedState) {
			d.lastEmittedState = demuxed
			if err := d.forwardEvent(windowClose, demuxed); err != nil {
				return err
			}
			d.windowStart += d.window
			continue
		}
		if err := d.forwardTimeAdvance(windowClose); err != nil {
			return err
		}
		// The window is consumed whether or not the input still differs
		// from the demuxed state; when input, emitted and demuxed state all
		// agree, the following windows close without emitting until a new
		// input event perturbs the accumulators.
		d.windowStart += d.window
	}
}

// OnEvent implements Consumer.
func (d *Demultiplexer) OnEvent(t Time, v *BitArray) error {
	if err := d.checkCausality(t); err != nil {
		return err
	}
	if err := d.processTo(t); err != nil {
		return err
	}
	d.lastInputState = v
	d.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer.
func (d *Demultiplexer) OnTimeAdvance(t Time) error {
	if err := d.checkCausality(t); err != nil {
		return err
	}
	if err := d.processTo(t); err != nil {
		return err
	}
	d.advance(t)
	return nil
}

// OnClear implements Consumer: resets accumulators, window_start and the
// emitted-state memory. last_time is preserved, per the consumer-wide
// rule, and window bookkeeping resumes from it.
func (d *Demultiplexer) OnClear() error {
	for i := range d.activeTime {
		d.activeTime[i] = 0
	}
	d.windowStart = d.lastTime
	d.lastProcessed = d.lastTime
	d.lastEmittedState = NewBitArray(d.nbits)
	return d.forwardClear()
}
