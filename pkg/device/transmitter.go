// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package device sends encoded IR pulse sequences to real or emulated hardware.
package device

import (
	"errors"
	"fmt"
)

// Transmitter emits one pulse sequence per call. Durations are microseconds,
// mark first. Implementations serialise concurrent calls themselves.
type Transmitter interface {
	SendPulses(pulses []uint32) error
	Close() error
}

// ErrTransmit matches every *TransmitError via errors.Is
var ErrTransmit = errors.New("transmission failed")

// ErrClosed is returned by transmitters used after Close
var ErrClosed = errors.New("transmitter closed")

// TransmitError reports a failed send together with the transmitter that failed
type TransmitError struct {
	Transmitter string
	Err         error
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("transmit via %s: %v", e.Transmitter, e.Err)
}

func (e *TransmitError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransmit) true for any TransmitError
func (e *TransmitError) Is(target error) bool {
	return target == ErrTransmit
}
