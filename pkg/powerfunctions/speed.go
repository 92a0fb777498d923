// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

// Speed limits accepted by QuantizeSpeed without clamping
const (
	SpeedMin            = -7
	SpeedMax            = 7
	SpeedBrakeThenFloat = 8
	SpeedFloat          = 0
)

// QuantizeSpeed maps a signed PWM speed to its 4-bit protocol code.
//
//	0      -> 0 (float)
//	1..7   -> 1..7 (forward steps)
//	8      -> 8 (brake then float)
//	-1..-7 -> 15..9 (backward steps)
//
// Values above 8 clamp to 7 and values below -7 clamp to -7. Braking is only
// reachable through the exact value 8.
func QuantizeSpeed(speed int) uint8 {
	switch {
	case speed == SpeedFloat || speed == SpeedBrakeThenFloat:
		return uint8(speed)
	case speed > SpeedMax:
		return SpeedMax
	case speed > 0:
		return uint8(speed)
	case speed < SpeedMin:
		return 16 + SpeedMin
	default:
		return uint8(16 + speed)
	}
}
