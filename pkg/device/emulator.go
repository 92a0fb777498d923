// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
)

// Emulator pretends to transmit: every sequence is logged and optionally
// written to an io.Writer
type Emulator struct {
	mu     sync.Mutex
	out    io.Writer
	sent   int
	closed bool
}

// NewEmulator creates an emulator writing to out (may be nil)
func NewEmulator(out io.Writer) *Emulator {
	return &Emulator{out: out}
}

// SendPulses logs the sequence. Empty sequences are accepted.
func (e *Emulator) SendPulses(pulses []uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &TransmitError{Transmitter: "emulator", Err: ErrClosed}
	}

	e.sent++
	log.Info().Int("frame", e.sent).Int("pulses", len(pulses)).Msg("emulator: simulated send")

	if e.out != nil {
		if _, err := fmt.Fprintf(e.out, "%s\n", powerfunctions.FormatPulses(pulses)); err != nil {
			return &TransmitError{Transmitter: "emulator", Err: err}
		}
	}
	return nil
}

// Sent returns the number of sequences sent so far
func (e *Emulator) Sent() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

// Close stops the emulator
func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
