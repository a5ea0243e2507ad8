// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import "golang.org/x/exp/constraints"

// ShiftRegister is a fixed-width bit queue modeling a 74HC595-style serial
// shift register: each Push shifts every bit one position and returns the
// bit pushed out the far end.
type ShiftRegister struct {
	width int
	bits  []bool
}

// NewShiftRegister returns a ShiftRegister of the given bit width, all
// bits clear.
func NewShiftRegister(width int) *ShiftRegister {
	return &ShiftRegister{width: width, bits: make([]bool, width)}
}

// Width returns the register's bit width.
func (r *ShiftRegister) Width() int { return r.width }

// Push shifts bit in at index 0 and returns the bit that falls off the
// far end.
func (r *ShiftRegister) Push(bit bool) bool {
	if r.width == 0 {
		return bit
	}
	carry := r.bits[r.width-1]
	copy(r.bits[1:], r.bits[:r.width-1])
	r.bits[0] = bit
	return carry
}

// Bit returns the bit at index i, 0 being the most recently pushed.
func (r *ShiftRegister) Bit(i int) (bool, error) {
	if i < 0 || i >= r.width {
		return false, newError(IndexOutOfRange, "shift register index out of range")
	}
	return r.bits[i], nil
}

// Clear resets every bit to false.
func (r *ShiftRegister) Clear() {
	for i := range r.bits {
		r.bits[i] = false
	}
}

// GetWord reads a word-aligned, little-endian group of bits out of r: the
// bits at [idx*size, idx*size+size) where size is the bit width of U.
// Go disallows type parameters on methods, so this is a free function.
func GetWord[U constraints.Unsigned](r *ShiftRegister, idx int) (U, error) {
	var z U
	size := wordBits(z)
	start := idx * size
	if start < 0 || start+size > r.width {
		return 0, newError(IndexOutOfRange, "shift register word out of range")
	}
	var out U
	for i := 0; i < size; i++ {
		if r.bits[start+i] {
			out |= U(1) << uint(i)
		}
	}
	return out, nil
}

func wordBits[U constraints.Unsigned](v U) int {
	switch any(v).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}
