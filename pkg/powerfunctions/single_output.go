// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import "fmt"

// Single Output mode values
const (
	singleOutputModePWM      = 0
	singleOutputModeDiscrete = 1
)

// SingleOutputCommand is either a PWM speed or a discrete action for one output.
// Build it with PWM or Discrete.
type SingleOutputCommand struct {
	discrete bool
	speed    int
	action   SingleOutputDiscrete
}

// PWM returns a command setting the output speed (-7..7, 0 float, 8 brake then float).
// Out-of-range speeds are clamped by QuantizeSpeed.
func PWM(speed int) SingleOutputCommand {
	return SingleOutputCommand{speed: speed}
}

// Discrete returns a command triggering a discrete action
func Discrete(action SingleOutputDiscrete) SingleOutputCommand {
	return SingleOutputCommand{discrete: true, action: action}
}

// IsPWM reports whether the command is a PWM speed
func (c SingleOutputCommand) IsPWM() bool {
	return !c.discrete
}

// Speed returns the requested speed of a PWM command
func (c SingleOutputCommand) Speed() int {
	return c.speed
}

// Action returns the action of a discrete command
func (c SingleOutputCommand) Action() SingleOutputDiscrete {
	return c.action
}

func (c SingleOutputCommand) String() string {
	if c.discrete {
		return "discrete " + c.action.String()
	}
	return fmt.Sprintf("pwm %d", c.speed)
}

// SingleOutputWaveform describes T:1 0:1 C:2 a:1 1:1 M:1 O:1 D:4 L:4
func SingleOutputWaveform() WaveformDef {
	return powerFunctionsDef("single_output", []FieldSpec{
		Field(FieldToggle, 1),
		Literal(0, 1),
		Field(FieldChannel, 2),
		Field(FieldAddress, 1),
		Literal(1, 1),
		Field(FieldMode, 1),
		Field(FieldOutput, 1),
		Field(FieldData, 4),
	}, SingleOutputLRC)
}

// SingleOutputEncoder encodes Single Output commands. The toggle bit flips
// after every PWM command; discrete commands leave it alone.
type SingleOutputEncoder struct {
	waveform *Waveform
	toggle   uint8
}

// NewSingleOutputEncoder creates an encoder with the toggle bit cleared
func NewSingleOutputEncoder() (*SingleOutputEncoder, error) {
	w, err := NewWaveform(SingleOutputWaveform())
	if err != nil {
		return nil, err
	}
	return &SingleOutputEncoder{waveform: w}, nil
}

// Toggle returns the toggle bit the next frame will carry
func (e *SingleOutputEncoder) Toggle() uint8 {
	return e.toggle
}

// Encode returns the pulse sequence for cmd on the given channel and output
func (e *SingleOutputEncoder) Encode(channel Channel, output Output, cmd SingleOutputCommand) ([]uint32, error) {
	frame, err := e.EncodeFrame(channel, output, cmd)
	if err != nil {
		return nil, err
	}
	return frame.Pulses, nil
}

// EncodeFrame is Encode returning the full frame
func (e *SingleOutputEncoder) EncodeFrame(channel Channel, output Output, cmd SingleOutputCommand) (Frame, error) {
	mode := uint8(singleOutputModePWM)
	data := QuantizeSpeed(cmd.speed)
	if cmd.discrete {
		mode = singleOutputModeDiscrete
		data = uint8(cmd.action)
	}

	frame, err := e.waveform.Build(Values{
		FieldToggle:  e.toggle,
		FieldChannel: uint8(channel),
		FieldAddress: 0,
		FieldMode:    mode,
		FieldOutput:  uint8(output),
		FieldData:    data,
	})
	if err != nil {
		return Frame{}, err
	}

	if mode == singleOutputModePWM {
		e.toggle ^= 1
	}
	return frame, nil
}
