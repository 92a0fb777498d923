// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package irbridge

import (
	"fmt"
	"time"
)

// Decoder implements the bridge protocol packet decoder state machine
type Decoder struct {
	state      int
	buffer     []byte // unstuffed length + payload, the CRC'd section
	escapeNext bool
	length     uint8
	crc        uint16
	rawBuffer  []byte // raw bytes including framing
}

// NewDecoder creates a new protocol decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateIdle,
		buffer:    make([]byte, 0, MaxPacketSize),
		rawBuffer: make([]byte, 0, MaxPacketSize*2),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
	d.escapeNext = false
	d.length = 0
	d.crc = 0
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the accumulated raw bytes since the last packet
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed packet, or nil if the packet is incomplete.
// Returns an error if decoding fails; the decoder is then reset.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	// START always resynchronises, even mid-packet
	if b == StartByte {
		d.Reset()
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateLength
		return nil, nil
	}

	if d.state == stateIdle {
		return nil, nil
	}
	d.rawBuffer = append(d.rawBuffer, b)

	if b == EndByte {
		if d.escapeNext || d.state != stateEnd {
			state := d.state
			d.Reset()
			return nil, fmt.Errorf("unexpected END byte in state %d", state)
		}
		return d.finish()
	}

	if b == EscByte {
		if d.escapeNext {
			d.Reset()
			return nil, fmt.Errorf("double escape byte")
		}
		d.escapeNext = true
		return nil, nil
	}
	if d.escapeNext {
		b ^= EscXor
		d.escapeNext = false
	}

	switch d.state {
	case stateLength:
		if b > MaxPayloadSize {
			d.Reset()
			return nil, fmt.Errorf("invalid length: %d (max %d)", b, MaxPayloadSize)
		}
		d.length = b
		d.buffer = append(d.buffer, b)
		if b == 0 {
			d.state = stateCRC1
		} else {
			d.state = statePayload
		}

	case statePayload:
		d.buffer = append(d.buffer, b)
		if len(d.buffer)-1 >= int(d.length) {
			d.state = stateCRC1
		}

	case stateCRC1:
		d.crc = uint16(b) << 8
		d.state = stateCRC2

	case stateCRC2:
		d.crc |= uint16(b)
		d.state = stateEnd

	case stateEnd:
		d.Reset()
		return nil, fmt.Errorf("expected END byte, got 0x%02X", b)

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}

	return nil, nil
}

// Decode feeds a chunk of bytes through the decoder and returns every packet
// completed by it. Decode errors are collected and decoding continues.
func (d *Decoder) Decode(data []byte) ([]*Packet, []error) {
	var packets []*Packet
	var errs []error
	for _, b := range data {
		p, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p != nil {
			packets = append(packets, p)
		}
	}
	return packets, errs
}

func (d *Decoder) finish() (*Packet, error) {
	calculatedCRC := CalculateCRC(d.buffer)
	if d.crc != calculatedCRC {
		err := fmt.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", calculatedCRC, d.crc)
		d.Reset()
		return nil, err
	}

	payload := make([]byte, d.length)
	copy(payload, d.buffer[1:])
	packet := NewPacket(d.length, payload, d.crc)
	packet.timestamp = time.Now()

	d.Reset()
	return packet, nil
}
