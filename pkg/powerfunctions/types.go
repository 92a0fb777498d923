// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import (
	"fmt"
	"strings"
)

// Channel selects one of the four receiver channels
type Channel uint8

// Channel values (the 2-bit field carries 0-3)
const (
	ChannelOne Channel = iota
	ChannelTwo
	ChannelThree
	ChannelFour
)

// Number returns the 1-based channel number printed on the remote
func (c Channel) Number() int {
	return int(c) + 1
}

func (c Channel) String() string {
	if c > ChannelFour {
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
	return fmt.Sprintf("CH%d", c.Number())
}

// ChannelFromNumber maps the 1-based number printed on the remote to a Channel
func ChannelFromNumber(n int) (Channel, error) {
	if n < 1 || n > 4 {
		return 0, fmt.Errorf("channel must be between 1 and 4, got %d", n)
	}
	return Channel(n - 1), nil
}

// Output selects one of the two receiver outputs
type Output uint8

// Output values
const (
	OutputRed  Output = 0 // output A
	OutputBlue Output = 1 // output B
)

func (o Output) String() string {
	switch o {
	case OutputRed:
		return "RED"
	case OutputBlue:
		return "BLUE"
	}
	return fmt.Sprintf("Output(%d)", uint8(o))
}

// ParseOutput accepts red/a or blue/b in any case
func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(s) {
	case "red", "a":
		return OutputRed, nil
	case "blue", "b":
		return OutputBlue, nil
	}
	return 0, fmt.Errorf("unknown output %q (use red or blue)", s)
}

// DirectState is the discrete state of one output in Combo Direct mode
type DirectState uint8

// Direct state values
const (
	Float    DirectState = 0b00
	Forward  DirectState = 0b01
	Backward DirectState = 0b10
	Brake    DirectState = 0b11
)

var directStateNames = map[DirectState]string{
	Float:    "float",
	Forward:  "forward",
	Backward: "backward",
	Brake:    "brake",
}

func (s DirectState) String() string {
	if name, ok := directStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DirectState(%d)", uint8(s))
}

// ParseDirectState parses float, forward, backward or brake
func ParseDirectState(s string) (DirectState, error) {
	for state, name := range directStateNames {
		if strings.EqualFold(s, name) {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown direct state %q", s)
}

// SingleOutputDiscrete is a discrete Single Output action. All 16 codes are defined.
type SingleOutputDiscrete uint8

// Single Output discrete actions
const (
	ToggleFullForward SingleOutputDiscrete = iota
	ToggleDirection
	IncrementNumericalPWM
	DecrementNumericalPWM
	IncrementPWM
	DecrementPWM
	FullForward
	FullBackward
	ToggleFullForwardBackward
	ClearC1
	SetC1
	ToggleC1
	ClearC2
	SetC2
	ToggleC2
	ToggleFullBackward
)

var discreteNames = [...]string{
	"toggle-full-forward",
	"toggle-direction",
	"increment-numerical-pwm",
	"decrement-numerical-pwm",
	"increment-pwm",
	"decrement-pwm",
	"full-forward",
	"full-backward",
	"toggle-full-forward-backward",
	"clear-c1",
	"set-c1",
	"toggle-c1",
	"clear-c2",
	"set-c2",
	"toggle-c2",
	"toggle-full-backward",
}

func (d SingleOutputDiscrete) String() string {
	if int(d) < len(discreteNames) {
		return discreteNames[d]
	}
	return fmt.Sprintf("SingleOutputDiscrete(%d)", uint8(d))
}

// ParseSingleOutputDiscrete looks up a discrete action by its kebab-case name
func ParseSingleOutputDiscrete(s string) (SingleOutputDiscrete, error) {
	for i, name := range discreteNames {
		if strings.EqualFold(s, name) {
			return SingleOutputDiscrete(i), nil
		}
	}
	return 0, fmt.Errorf("unknown discrete command %q", s)
}

// ExtendedCommand is one of the six defined Extended functions.
//
// The function code is not exported: only the package values below are valid.
// The zero value is rejected by the encoder.
type ExtendedCommand struct {
	code uint8
	name string
}

// Extended function codes. Codes 0b0011, 0b0101 and 0b1000-0b1111 are reserved.
const (
	codeBrakeThenFloat       uint8 = 0b0000
	codeIncrementSpeed       uint8 = 0b0001
	codeDecrementSpeed       uint8 = 0b0010
	codeToggleForwardOrFloat uint8 = 0b0100
	codeToggleAddress        uint8 = 0b0110
	codeAlignToggle          uint8 = 0b0111
)

var extendedCommands = [...]ExtendedCommand{
	{code: codeBrakeThenFloat, name: "brake-then-float"},
	{code: codeIncrementSpeed, name: "increment-speed"},
	{code: codeDecrementSpeed, name: "decrement-speed"},
	{code: codeToggleForwardOrFloat, name: "toggle-forward-or-float"},
	{code: codeToggleAddress, name: "toggle-address"},
	{code: codeAlignToggle, name: "align-toggle"},
}

// Extended commands. The encoder matches them by function code.
var (
	BrakeThenFloat       = extendedCommands[0]
	IncrementSpeed       = extendedCommands[1]
	DecrementSpeed       = extendedCommands[2]
	ToggleForwardOrFloat = extendedCommands[3]
	ToggleAddress        = extendedCommands[4]
	AlignToggle          = extendedCommands[5]
)

// ExtendedCommands lists every defined Extended command in code order
func ExtendedCommands() []ExtendedCommand {
	out := make([]ExtendedCommand, len(extendedCommands))
	copy(out, extendedCommands[:])
	return out
}

// Valid reports whether c is one of the defined commands
func (c ExtendedCommand) Valid() bool {
	return c.name != ""
}

// Code returns the 4-bit function code
func (c ExtendedCommand) Code() uint8 {
	return c.code
}

func (c ExtendedCommand) String() string {
	if !c.Valid() {
		return "invalid"
	}
	return c.name
}

// ParseExtendedCommand looks up an Extended command by name
func ParseExtendedCommand(s string) (ExtendedCommand, error) {
	for _, c := range ExtendedCommands() {
		if strings.EqualFold(s, c.name) {
			return c, nil
		}
	}
	return ExtendedCommand{}, fmt.Errorf("unknown extended command %q", s)
}
