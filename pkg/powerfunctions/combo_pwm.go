// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import "fmt"

// ComboPWMCommand sets the PWM speed of both outputs at once
type ComboPWMCommand struct {
	SpeedRed  int // output A, -7..8
	SpeedBlue int // output B, -7..8
}

func (c ComboPWMCommand) String() string {
	return fmt.Sprintf("red=%d blue=%d", c.SpeedRed, c.SpeedBlue)
}

// ComboPWMWaveform describes a:1 1:1 C:2 B:4 A:4 L:4
func ComboPWMWaveform() WaveformDef {
	return powerFunctionsDef("combo_pwm", []FieldSpec{
		Field(FieldAddress, 1),
		Literal(1, 1),
		Field(FieldChannel, 2),
		Field(FieldOutputB, 4),
		Field(FieldOutputA, 4),
	}, ComboPWMLRC)
}

// ComboPWMEncoder encodes Combo PWM commands. It holds no state.
type ComboPWMEncoder struct {
	waveform *Waveform
}

// NewComboPWMEncoder creates a Combo PWM encoder
func NewComboPWMEncoder() (*ComboPWMEncoder, error) {
	w, err := NewWaveform(ComboPWMWaveform())
	if err != nil {
		return nil, err
	}
	return &ComboPWMEncoder{waveform: w}, nil
}

// Encode returns the pulse sequence for cmd on the given channel
func (e *ComboPWMEncoder) Encode(channel Channel, cmd ComboPWMCommand) ([]uint32, error) {
	frame, err := e.EncodeFrame(channel, cmd)
	if err != nil {
		return nil, err
	}
	return frame.Pulses, nil
}

// EncodeFrame is Encode returning the full frame
func (e *ComboPWMEncoder) EncodeFrame(channel Channel, cmd ComboPWMCommand) (Frame, error) {
	return e.waveform.Build(Values{
		FieldAddress: 0,
		FieldChannel: uint8(channel),
		FieldOutputB: QuantizeSpeed(cmd.SpeedBlue),
		FieldOutputA: QuantizeSpeed(cmd.SpeedRed),
	})
}
