// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import (
	"math"
	"strings"
)

// InvalidNumber is the sentinel returned by Led7SegInterpreter.AsInteger
// when the digits cannot be parsed as a number.
const InvalidNumber = math.MinInt32

// Active-low glyph constants (§4.9): a bit of 0 lights the corresponding
// segment or dot. Bit 7 is always the decimal dot.
const (
	glyphEmpty byte = 0b11111111
	glyphDash  byte = 0b10111111
	dotMask    byte = 0b01111111
)

// digitGlyphs holds the active-low segment pattern for digits 0-9 (bit 7
// is always 1: no digit glyph lights the dot on its own).
var digitGlyphs = [10]byte{
	0xC0, 0xF9, 0xA4, 0xB0, 0x99,
	0x92, 0x82, 0xF8, 0x80, 0x90,
}

// letterGlyphs holds the active-low segment pattern for letters a-z, in
// the same common hobbyist 7-segment font family as digitGlyphs. Several
// letters have no natural 7-segment shape and are given a plausible
// approximation.
var letterGlyphs = [26]byte{
	0x88, 0x83, 0xC6, 0xA1, 0x86, 0x8E, 0xC2, 0x89, 0xF9, 0xF1,
	0x8A, 0xC7, 0xC8, 0xAB, 0xA3, 0x8C, 0x98, 0xAF, 0x92, 0x87,
	0xC1, 0xE3, 0x81, 0x89, 0x91, 0xA4,
}

func lookupDigit(raw byte) (int, bool) {
	for i, g := range digitGlyphs {
		if g == raw {
			return i, true
		}
	}
	return 0, false
}

func lookupLetter(raw byte) (int, bool) {
	for i, g := range letterGlyphs {
		if g == raw {
			return i, true
		}
	}
	return 0, false
}

// GlyphForChar returns the active-low segment byte for a digit ('0'-'9')
// or letter ('a'-'z', 'A'-'Z'), the complement of CharAt. ok is false for
// any other rune, in which case the blank glyph is returned.
func GlyphForChar(ch rune) (byte, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return digitGlyphs[ch-'0'], true
	case ch >= 'a' && ch <= 'z':
		return letterGlyphs[ch-'a'], true
	case ch >= 'A' && ch <= 'Z':
		return letterGlyphs[ch-'A'], true
	default:
		return glyphEmpty, false
	}
}

func allOnesBitArray(bits int) *BitArray {
	b := NewBitArray(bits)
	for i := 0; i < bits; i++ {
		_ = b.SetBit(i, true)
	}
	return b
}

// SerialSegDisplay is a forked consumer decoding a 3-pin (data, clock,
// latch) serial shift-register feed into a per-digit segment bitmap,
// emitted on its sprout whenever the decoded bitmap changes. It models a
// multiplexed 7-segment display driven by a pair of 74HC595-style shift
// registers.
type SerialSegDisplay struct {
	forkedChain[PinState, *BitArray]

	dataPin, clockPin, latchPin int
	digits                      int

	reg       *ShiftRegister
	lastData  bool
	lastClock PinValue
	lastLatch PinValue

	state *BitArray
}

// NewSerialSegDisplay returns a SerialSegDisplay watching the given data,
// clock and latch pin ids, decoding into a digits-wide bitmap.
func NewSerialSegDisplay(dataPin, clockPin, latchPin, digits int) *SerialSegDisplay {
	return &SerialSegDisplay{
		dataPin: dataPin, clockPin: clockPin, latchPin: latchPin, digits: digits,
		reg:       NewShiftRegister(16),
		lastClock: PinLow, lastLatch: PinLow,
		state: allOnesBitArray(digits * 8),
	}
}

func (d *SerialSegDisplay) buildState() (*BitArray, error) {
	high, err := GetWord[uint8](d.reg, 0)
	if err != nil {
		return nil, err
	}
	low, err := GetWord[uint8](d.reg, 1)
	if err != nil {
		return nil, err
	}
	bm := allOnesBitArray(d.digits * 8)
	for digit := 0; digit < d.digits; digit++ {
		if low&(1<<uint(digit)) != 0 {
			if err := SetBits[uint8](bm, digit*8, 8, high); err != nil {
				return nil, err
			}
		}
	}
	return bm, nil
}

// OnEvent implements Consumer.
func (d *SerialSegDisplay) OnEvent(t Time, v PinState) error {
	if err := d.checkCausality(t); err != nil {
		return err
	}
	switch v.Pin {
	case d.dataPin:
		d.lastData = v.Value == PinHigh
	case d.clockPin:
		if d.lastClock == PinHigh && v.Value == PinLow {
			d.reg.Push(d.lastData)
		}
		d.lastClock = v.Value
	case d.latchPin:
		if d.lastLatch == PinLow && v.Value == PinHigh {
			next, err := d.buildState()
			if err != nil {
				return err
			}
			if !next.Equals(d.state) {
				d.state = next
				if d.sprout != nil {
					if err := d.sprout.OnEvent(t, d.state.Clone()); err != nil {
						return err
					}
				}
			}
		}
		d.lastLatch = v.Value
	}
	if err := d.forwardEvent(t, v); err != nil {
		return err
	}
	d.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer.
func (d *SerialSegDisplay) OnTimeAdvance(t Time) error {
	if err := d.checkCausality(t); err != nil {
		return err
	}
	if err := d.forwardTimeAdvance(t); err != nil {
		return err
	}
	if err := d.forwardSproutTimeAdvance(t); err != nil {
		return err
	}
	d.advance(t)
	return nil
}

// OnClear implements Consumer.
func (d *SerialSegDisplay) OnClear() error {
	d.reg.Clear()
	d.state = allOnesBitArray(d.digits * 8)
	if err := d.forwardClear(); err != nil {
		return err
	}
	return d.forwardSproutClear()
}

// Led7SegInterpreter is a read-only decoder over a digits*8-bit bitmap
// snapshot (as produced by SerialSegDisplay), turning segment patterns
// back into digits, letters and numbers.
type Led7SegInterpreter struct {
	state  *BitArray
	digits int
}

// NewLed7SegInterpreter wraps state for decoding as a digits-digit display.
func NewLed7SegInterpreter(state *BitArray, digits int) *Led7SegInterpreter {
	return &Led7SegInterpreter{state: state, digits: digits}
}

// RawByte returns the raw segment byte for digit d. If maskDot is true,
// the dot bit is forced off (1) so dot state never affects comparisons.
func (i *Led7SegInterpreter) RawByte(d int, maskDot bool) (byte, error) {
	v, err := GetBits[uint8](i.state, d*8, 8)
	if err != nil {
		return 0, err
	}
	if maskDot {
		v |= 0x80
	}
	return v, nil
}

// HasDot reports whether digit d's decimal dot is lit.
func (i *Led7SegInterpreter) HasDot(d int) (bool, error) {
	v, err := i.RawByte(d, false)
	if err != nil {
		return false, err
	}
	return v&0x80 == 0, nil
}

// AmbiguousDot reports whether two or more digits have their dot lit
// simultaneously.
func (i *Led7SegInterpreter) AmbiguousDot() (bool, error) {
	count := 0
	for d := 0; d < i.digits; d++ {
		has, err := i.HasDot(d)
		if err != nil {
			return false, err
		}
		if has {
			count++
		}
	}
	return count >= 2, nil
}

// DotPosition returns the index of the first lit dot, or -1 if none.
func (i *Led7SegInterpreter) DotPosition() (int, error) {
	for d := 0; d < i.digits; d++ {
		has, err := i.HasDot(d)
		if err != nil {
			return -1, err
		}
		if has {
			return d, nil
		}
	}
	return -1, nil
}

// DigitAt returns the numeral shown at digit d, if any. A blank digit is
// reported as digit 0 when treatBlankAsZero is true.
func (i *Led7SegInterpreter) DigitAt(d int, treatBlankAsZero bool) (int, bool, error) {
	raw, err := i.RawByte(d, true)
	if err != nil {
		return 0, false, err
	}
	if v, ok := lookupDigit(raw); ok {
		return v, true, nil
	}
	if raw == glyphEmpty && treatBlankAsZero {
		return 0, true, nil
	}
	return 0, false, nil
}

// CharAt returns the character shown at digit d: a digit, a letter, space
// for blank or '-' for a dash. preferDigit breaks ties between glyphs
// shared by a digit and a letter in favor of the digit.
func (i *Led7SegInterpreter) CharAt(d int, preferDigit bool) (rune, bool, error) {
	raw, err := i.RawByte(d, true)
	if err != nil {
		return 0, false, err
	}
	switch raw {
	case glyphEmpty:
		return ' ', true, nil
	case glyphDash:
		return '-', true, nil
	}
	if preferDigit {
		if v, ok := lookupDigit(raw); ok {
			return rune('0' + v), true, nil
		}
		if v, ok := lookupLetter(raw); ok {
			return rune('a' + v), true, nil
		}
	} else {
		if v, ok := lookupLetter(raw); ok {
			return rune('a' + v), true, nil
		}
		if v, ok := lookupDigit(raw); ok {
			return rune('0' + v), true, nil
		}
	}
	return 0, false, nil
}

// AsText renders every digit via CharAt, substituting fallback for
// anything undecodable.
func (i *Led7SegInterpreter) AsText(fallback rune) (string, error) {
	var sb strings.Builder
	for d := 0; d < i.digits; d++ {
		ch, ok, err := i.CharAt(d, true)
		if err != nil {
			return "", err
		}
		if !ok {
			ch = fallback
		}
		sb.WriteRune(ch)
	}
	return sb.String(), nil
}

// AsInteger parses the leftmost non-blank run of digits (optionally
// preceded by a dash) into an integer. Any non-digit gap inside the run
// yields InvalidNumber.
func (i *Led7SegInterpreter) AsInteger() (int, error) {
	d := 0
	for d < i.digits {
		raw, err := i.RawByte(d, true)
		if err != nil {
			return InvalidNumber, err
		}
		if raw != glyphEmpty {
			break
		}
		d++
	}
	if d >= i.digits {
		return InvalidNumber, nil
	}
	neg := false
	if raw, err := i.RawByte(d, true); err != nil {
		return InvalidNumber, err
	} else if raw == glyphDash {
		neg = true
		d++
	}
	val := 0
	found := false
	for d < i.digits {
		raw, err := i.RawByte(d, true)
		if err != nil {
			return InvalidNumber, err
		}
		v, ok := lookupDigit(raw)
		if !ok {
			break
		}
		val = val*10 + v
		found = true
		d++
	}
	if !found {
		return InvalidNumber, nil
	}
	for ; d < i.digits; d++ {
		raw, err := i.RawByte(d, true)
		if err != nil {
			return InvalidNumber, err
		}
		if raw != glyphEmpty {
			return InvalidNumber, nil
		}
	}
	if neg {
		val = -val
	}
	return val, nil
}
