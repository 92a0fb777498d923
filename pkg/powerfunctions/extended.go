// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

// ExtendedWaveform describes T:1 E:1 C:2 a:1 M:3 F:4 L:4.
// Combo Direct shares this layout under its own name.
func ExtendedWaveform(name string) WaveformDef {
	return powerFunctionsDef(name, []FieldSpec{
		Field(FieldToggle, 1),
		Field(FieldEscape, 1),
		Field(FieldChannel, 2),
		Field(FieldAddress, 1),
		Field(FieldMode, 3),
		Field(FieldFunction, 4),
	}, ExtendedLRC)
}

// Mode field values of the Extended layout
const (
	extendedModeExtended    = 0b000
	extendedModeComboDirect = 0b001
)

// encodeExtendedFrame packs one frame of the Extended layout. Escape is always 0.
func encodeExtendedFrame(w *Waveform, channel Channel, toggle, address, mode, function uint8) (Frame, error) {
	return w.Build(Values{
		FieldToggle:   toggle,
		FieldEscape:   0,
		FieldChannel:  uint8(channel),
		FieldAddress:  address,
		FieldMode:     mode,
		FieldFunction: function,
	})
}

// ExtendedEncoder encodes Extended commands. The toggle bit flips after every
// frame; the address bit flips after ToggleAddress only.
type ExtendedEncoder struct {
	waveform *Waveform
	toggle   uint8
	address  uint8
}

// NewExtendedEncoder creates an encoder with toggle and address cleared
func NewExtendedEncoder() (*ExtendedEncoder, error) {
	w, err := NewWaveform(ExtendedWaveform("extended"))
	if err != nil {
		return nil, err
	}
	return &ExtendedEncoder{waveform: w}, nil
}

// Toggle returns the toggle bit the next frame will carry
func (e *ExtendedEncoder) Toggle() uint8 {
	return e.toggle
}

// Address returns the address bit the next frame will carry
func (e *ExtendedEncoder) Address() uint8 {
	return e.address
}

// Encode returns the pulse sequence for cmd on the given channel
func (e *ExtendedEncoder) Encode(channel Channel, cmd ExtendedCommand) ([]uint32, error) {
	frame, err := e.EncodeFrame(channel, cmd)
	if err != nil {
		return nil, err
	}
	return frame.Pulses, nil
}

// EncodeFrame is Encode returning the full frame
func (e *ExtendedEncoder) EncodeFrame(channel Channel, cmd ExtendedCommand) (Frame, error) {
	if !cmd.Valid() {
		return Frame{}, protocolErrorf("encode", "extended: undefined command")
	}

	frame, err := encodeExtendedFrame(e.waveform, channel, e.toggle, e.address, extendedModeExtended, cmd.code)
	if err != nil {
		return Frame{}, err
	}

	e.toggle ^= 1
	if cmd.code == codeToggleAddress {
		e.address = 1 - e.address
	}
	return frame, nil
}
