// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build !linux

package device

import "errors"

// Lirc is only available on linux
type Lirc struct{}

// OpenLirc always fails outside linux
func OpenLirc(path string, carrierHz uint32, dutyCycle uint8) (*Lirc, error) {
	return nil, errors.New("LIRC devices are only supported on linux")
}

func (l *Lirc) SendPulses(pulses []uint32) error {
	return &TransmitError{Transmitter: "lirc", Err: ErrClosed}
}

func (l *Lirc) Close() error {
	return nil
}
