// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build linux

package device

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Lirc transmits through a kernel LIRC device (e.g. gpio-ir-tx)
type Lirc struct {
	mu   sync.Mutex
	fd   int
	path string
}

// OpenLirc opens a LIRC device and configures carrier and duty cycle when
// the driver supports it
func OpenLirc(path string, carrierHz uint32, dutyCycle uint8) (*Lirc, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open LIRC device %s: %w", path, err)
	}

	features, err := unix.IoctlGetUint32(fd, lircGetFeatures)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to query LIRC features on %s: %w", path, err)
	}
	if features&lircCanSendPulse == 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("LIRC device %s cannot send pulses", path)
	}

	if features&lircCanSetSendCarrier != 0 {
		if err := unix.IoctlSetPointerInt(fd, lircSetSendCarrier, int(carrierHz)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("failed to set carrier on %s: %w", path, err)
		}
	} else {
		log.Warn().Msgf("lirc: %s cannot set carrier, using driver default", path)
	}

	if features&lircCanSetSendDutyCycle != 0 {
		if err := unix.IoctlSetPointerInt(fd, lircSetSendDutyCycle, int(dutyCycle)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("failed to set duty cycle on %s: %w", path, err)
		}
	}

	log.Debug().Msgf("lirc: opened %s (features 0x%08X)", path, features)
	return &Lirc{fd: fd, path: path}, nil
}

// SendPulses writes one sequence to the device. The write blocks until the
// kernel has emitted it.
func (l *Lirc) SendPulses(pulses []uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd < 0 {
		return &TransmitError{Transmitter: l.path, Err: ErrClosed}
	}
	if len(pulses) == 0 {
		return nil
	}

	buf := lircBuffer(pulses)
	n, err := unix.Write(l.fd, buf)
	if err != nil {
		return &TransmitError{Transmitter: l.path, Err: err}
	}
	if n != len(buf) {
		return &TransmitError{Transmitter: l.path, Err: fmt.Errorf("short write: %d of %d bytes", n, len(buf))}
	}

	log.Debug().Msgf("lirc: sent %d durations to %s", len(buf)/4, l.path)
	return nil
}

// Close releases the device
func (l *Lirc) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd < 0 {
		return nil
	}
	err := unix.Close(l.fd)
	l.fd = -1
	return err
}
