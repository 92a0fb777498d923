// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package powerfunctions encodes LEGO Power Functions style IR commands into
// pulse sequences ready for an IR LED.
//
// Four command formats are supported: Single Output (one output, PWM or
// discrete actions), Combo PWM (both outputs, PWM speeds), Combo Direct (both
// outputs, discrete states) and Extended (brake, increment/decrement, address
// toggling). Every encoder produces 36 durations in microseconds, starting
// with a mark and ending with a space.
//
// Encoders are not safe for concurrent use. Toggle and address bits live in
// the encoder and advance on every qualifying Encode call.
package powerfunctions

// Carrier configuration shared by all four protocols
const (
	CarrierFrequency = 38_000 // Hz
	DutyCycle        = 33     // percent
)

// Timing in carrier periods (one unit is 1e6/38000 µs, about 26.3158 µs)
const (
	bitMarkUnits   = 6
	zeroSpaceUnits = 10
	oneSpaceUnits  = 21
	burstMarkUnits = 6
	burstGapUnits  = 39
)

// Rendered durations in microseconds
const (
	MarkMicros      = 157  // 6 units
	ZeroSpaceMicros = 263  // 10 units
	OneSpaceMicros  = 552  // 21 units
	FrameGapMicros  = 1026 // 39 units
)

// Frame geometry
const (
	PayloadBits = 16
	LRCBits     = 4
	FrameLength = 2 + PayloadBits*2 + 2 // lead burst + bit pairs + trail burst
)

// Field names used in the waveform layouts
const (
	FieldToggle   = "T"
	FieldEscape   = "E"
	FieldChannel  = "C"
	FieldAddress  = "a"
	FieldMode     = "M"
	FieldOutput   = "O"
	FieldData     = "D"
	FieldFunction = "F"
	FieldOutputA  = "A"
	FieldOutputB  = "B"
	FieldLRC      = "L"
)
