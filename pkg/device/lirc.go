// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import "encoding/binary"

// DefaultLircDevice is the first LIRC character device
const DefaultLircDevice = "/dev/lirc0"

// LIRC ioctl requests and feature bits (linux/lirc.h)
const (
	lircGetFeatures      = 0x80046900
	lircSetSendCarrier   = 0x40046913
	lircSetSendDutyCycle = 0x40046915

	lircCanSendPulse        = 0x00000002
	lircCanSetSendCarrier   = 0x00000100
	lircCanSetSendDutyCycle = 0x00000200
)

// lircBuffer encodes pulses for a mode2 write: native-endian uint32 values.
// The kernel wants an odd count ending in a mark, so a trailing space is dropped.
func lircBuffer(pulses []uint32) []byte {
	if len(pulses)%2 == 0 && len(pulses) > 0 {
		pulses = pulses[:len(pulses)-1]
	}
	buf := make([]byte, 4*len(pulses))
	for i, p := range pulses {
		binary.NativeEndian.PutUint32(buf[4*i:], p)
	}
	return buf
}
