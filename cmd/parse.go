// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
)

// Short names accepted by the extended command
var extendedAliases = map[string]powerfunctions.ExtendedCommand{
	"brake":          powerfunctions.BrakeThenFloat,
	"inc":            powerfunctions.IncrementSpeed,
	"dec":            powerfunctions.DecrementSpeed,
	"toggle-forward": powerfunctions.ToggleForwardOrFloat,
	"toggle-address": powerfunctions.ToggleAddress,
	"align":          powerfunctions.AlignToggle,
}

func parseSpeed(s string) (int, error) {
	speed, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid speed %q", s)
	}
	return speed, nil
}

// parseSingleOutput accepts a PWM speed or a discrete action name
func parseSingleOutput(s string) (powerfunctions.SingleOutputCommand, error) {
	if speed, err := strconv.Atoi(s); err == nil {
		return powerfunctions.PWM(speed), nil
	}
	action, err := powerfunctions.ParseSingleOutputDiscrete(s)
	if err != nil {
		return powerfunctions.SingleOutputCommand{}, fmt.Errorf("expected a speed or a discrete command: %w", err)
	}
	return powerfunctions.Discrete(action), nil
}

func parseComboPWM(red, blue string) (powerfunctions.ComboPWMCommand, error) {
	r, err := parseSpeed(red)
	if err != nil {
		return powerfunctions.ComboPWMCommand{}, err
	}
	b, err := parseSpeed(blue)
	if err != nil {
		return powerfunctions.ComboPWMCommand{}, err
	}
	return powerfunctions.ComboPWMCommand{SpeedRed: r, SpeedBlue: b}, nil
}

func parseComboDirect(red, blue string) (powerfunctions.ComboDirectCommand, error) {
	r, err := powerfunctions.ParseDirectState(red)
	if err != nil {
		return powerfunctions.ComboDirectCommand{}, err
	}
	b, err := powerfunctions.ParseDirectState(blue)
	if err != nil {
		return powerfunctions.ComboDirectCommand{}, err
	}
	return powerfunctions.ComboDirectCommand{Red: r, Blue: b}, nil
}

func parseExtended(s string) (powerfunctions.ExtendedCommand, error) {
	if c, ok := extendedAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	return powerfunctions.ParseExtendedCommand(s)
}
