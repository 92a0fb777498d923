// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package irbridge implements the serial protocol spoken by IR blaster bridges.
//
// A bridge is a small microcontroller with an IR LED attached. The host sends
// it pulse sequences to emit and the bridge answers with acknowledgements.
// Packets are framed with START/END bytes, byte-stuffed, protected by a
// CRC-16-CCITT and carry a CBOR message [msg_type, payload_map].
package irbridge

// Protocol framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Packet size limits
const (
	MaxPayloadSize = 250
	MaxPacketSize  = 1 + MaxPayloadSize + 2 // length + payload + CRC (unstuffed)
)

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Message types - Commands (Host → Bridge) 0x10-0x2F
const (
	MsgTransmit    = 0x10
	MsgPingRequest = 0x2F
)

// Message types - Replies (Bridge → Host) 0x30-0x3F
const (
	MsgAck          = 0x30
	MsgPingResponse = 0x3F
)

// Message types - Errors (Bridge → Host) 0xE0-0xEF
const (
	MsgError = 0xE0
)

// Payload keys shared by every message
const (
	KeySeq = 0
)

// TRANSMIT payload keys
const (
	KeyCarrier   = 1
	KeyDutyCycle = 2
	KeyDurations = 3
)

// PING_RESPONSE payload keys
const (
	KeyUptime = 1
)

// ERROR payload keys
const (
	KeyErrorCode    = 1
	KeyErrorMessage = 2
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLength
	statePayload
	stateCRC1
	stateCRC2
	stateEnd
)

// ErrorCode is the reason a bridge rejected a command
type ErrorCode int

// Error code values
const (
	ErrorNone           ErrorCode = 0x00
	ErrorInvalidCmd     ErrorCode = 0x01
	ErrorBusy           ErrorCode = 0x02
	ErrorTooManyPulses  ErrorCode = 0x03
	ErrorCarrierRange   ErrorCode = 0x04
	ErrorMalformedPulse ErrorCode = 0x05
)
