// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

// Frame is one encoded message: the field values that went in, the packed
// payload and the rendered pulse durations
type Frame struct {
	Protocol string
	Layout   []FieldSpec
	Values   Values
	LRC      uint8
	Payload  uint32
	Bits     int
	Pulses   []uint32
}

// Bit returns payload bit i counted from the most significant bit (0)
func (f Frame) Bit(i int) uint8 {
	return uint8(f.Payload >> uint(f.Bits-1-i) & 1)
}
