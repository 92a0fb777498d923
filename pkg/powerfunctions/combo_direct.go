// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import "fmt"

// ComboDirectCommand sets the discrete state of both outputs at once
type ComboDirectCommand struct {
	Red  DirectState // output A
	Blue DirectState // output B
}

func (c ComboDirectCommand) String() string {
	return fmt.Sprintf("red=%s blue=%s", c.Red, c.Blue)
}

// ComboDirectEncoder encodes Combo Direct commands on the Extended layout
// with T=0, E=0, a=0 and M=1. It holds no state.
type ComboDirectEncoder struct {
	waveform *Waveform
}

// NewComboDirectEncoder creates a Combo Direct encoder
func NewComboDirectEncoder() (*ComboDirectEncoder, error) {
	w, err := NewWaveform(ExtendedWaveform("combo_direct"))
	if err != nil {
		return nil, err
	}
	return &ComboDirectEncoder{waveform: w}, nil
}

// Encode returns the pulse sequence for cmd on the given channel
func (e *ComboDirectEncoder) Encode(channel Channel, cmd ComboDirectCommand) ([]uint32, error) {
	frame, err := e.EncodeFrame(channel, cmd)
	if err != nil {
		return nil, err
	}
	return frame.Pulses, nil
}

// EncodeFrame is Encode returning the full frame. Red occupies the low two
// data bits and Blue the high two.
func (e *ComboDirectEncoder) EncodeFrame(channel Channel, cmd ComboDirectCommand) (Frame, error) {
	if cmd.Red > Brake || cmd.Blue > Brake {
		return Frame{}, protocolErrorf("encode", "combo_direct: invalid state %d/%d", cmd.Red, cmd.Blue)
	}
	data := uint8(cmd.Blue)<<2 | uint8(cmd.Red)
	return encodeExtendedFrame(e.waveform, channel, 0, 0, extendedModeComboDirect, data)
}
