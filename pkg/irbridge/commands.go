// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package irbridge

// Builder functions create Packet structs ready for encoding with the
// payload keys each message type expects.

// NewTransmit creates a TRANSMIT packet (0x10).
// Durations alternate mark and space in microseconds, starting with a mark.
func NewTransmit(seq uint32, carrierHz uint32, dutyCycle uint8, durations []uint32) *Packet {
	pulses := make([]uint32, len(durations))
	copy(pulses, durations)
	payload := map[int]interface{}{
		KeySeq:       uint64(seq),
		KeyCarrier:   uint64(carrierHz),
		KeyDutyCycle: uint64(dutyCycle),
		KeyDurations: pulses,
	}
	return NewPacketWithPayload(MsgTransmit, payload)
}

// NewPingRequest creates a PING_REQUEST packet (0x2F).
// Bridges respond with PING_RESPONSE containing uptime.
func NewPingRequest(seq uint32) *Packet {
	return NewPacketWithPayload(MsgPingRequest, map[int]interface{}{
		KeySeq: uint64(seq),
	})
}

// NewAck creates an ACK packet (0x30), sent once a TRANSMIT has been emitted
func NewAck(seq uint32) *Packet {
	return NewPacketWithPayload(MsgAck, map[int]interface{}{
		KeySeq: uint64(seq),
	})
}

// NewPingResponse creates a PING_RESPONSE packet (0x3F)
func NewPingResponse(seq uint32, uptimeMs uint64) *Packet {
	return NewPacketWithPayload(MsgPingResponse, map[int]interface{}{
		KeySeq:    uint64(seq),
		KeyUptime: uptimeMs,
	})
}

// NewError creates an ERROR packet (0xE0) rejecting the command with seq
func NewError(seq uint32, code ErrorCode, message string) *Packet {
	payload := map[int]interface{}{
		KeySeq:       uint64(seq),
		KeyErrorCode: uint64(code),
	}
	if message != "" {
		payload[KeyErrorMessage] = message
	}
	return NewPacketWithPayload(MsgError, payload)
}
