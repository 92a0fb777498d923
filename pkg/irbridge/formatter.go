// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package irbridge

import (
	"fmt"
	"strings"
)

// FormatPacket formats a packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	msgType := FormatMessageType(p.Type())

	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d\n", timestamp, msgType, p.Type(), p.length)
	if err := p.ParseError(); err != nil {
		return result + fmt.Sprintf("  (unparseable payload: %v)\n", err)
	}
	return result + FormatPayloadMap(p.Type(), p.PayloadMap())
}

// FormatMessageType returns the human-readable name for a message type
func FormatMessageType(msgType uint8) string {
	switch msgType {
	case MsgTransmit:
		return "TRANSMIT"
	case MsgPingRequest:
		return "PING_REQUEST"
	case MsgAck:
		return "ACK"
	case MsgPingResponse:
		return "PING_RESPONSE"
	case MsgError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FormatPayloadMap formats the CBOR payload map based on message type
func FormatPayloadMap(msgType uint8, m map[int]interface{}) string {
	seq, _ := GetMapUint(m, KeySeq)

	switch msgType {
	case MsgTransmit:
		carrier, _ := GetMapUint(m, KeyCarrier)
		duty, _ := GetMapUint(m, KeyDutyCycle)
		durations, _ := GetMapUintSlice(m, KeyDurations)
		return fmt.Sprintf("  Seq: %d, Carrier: %.1f kHz, Duty: %d%%, Pulses: %d (%d us)\n",
			seq, float64(carrier)/1000, duty, len(durations), totalMicros(durations))

	case MsgPingRequest, MsgAck:
		return fmt.Sprintf("  Seq: %d\n", seq)

	case MsgPingResponse:
		uptime, _ := GetMapUint(m, KeyUptime)
		return fmt.Sprintf("  Seq: %d, Uptime: %s\n", seq, FormatUptime(uptime))

	case MsgError:
		code, _ := GetMapInt(m, KeyErrorCode)
		msg, hasMsg := GetMapString(m, KeyErrorMessage)
		result := fmt.Sprintf("  Seq: %d, Code: %s (%d)", seq, formatErrorCode(ErrorCode(code)), code)
		if hasMsg {
			result += fmt.Sprintf(", Message: %q", msg)
		}
		return result + "\n"
	}

	if len(m) == 0 {
		return "  (no payload)\n"
	}
	return fmt.Sprintf("  %v\n", m)
}

func totalMicros(durations []uint32) uint64 {
	var total uint64
	for _, d := range durations {
		total += uint64(d)
	}
	return total
}

func formatErrorCode(code ErrorCode) string {
	names := map[ErrorCode]string{
		ErrorNone:           "NONE",
		ErrorInvalidCmd:     "INVALID_CMD",
		ErrorBusy:           "BUSY",
		ErrorTooManyPulses:  "TOO_MANY_PULSES",
		ErrorCarrierRange:   "CARRIER_RANGE",
		ErrorMalformedPulse: "MALFORMED_PULSE",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return "UNKNOWN"
}

func (c ErrorCode) String() string {
	return formatErrorCode(c)
}

// FormatUptime formats milliseconds as e.g. "1 hour, 2 minutes, and 3 seconds"
func FormatUptime(ms uint64) string {
	seconds := ms / 1000
	if seconds == 0 {
		return fmt.Sprintf("%d ms", ms)
	}

	units := []struct {
		name string
		size uint64
	}{
		{"day", 24 * 60 * 60},
		{"hour", 60 * 60},
		{"minute", 60},
		{"second", 1},
	}

	parts := []string{}
	for _, u := range units {
		n := seconds / u.size
		seconds %= u.size
		switch {
		case n == 1:
			parts = append(parts, "1 "+u.name)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		last := parts[len(parts)-1]
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + last
	}
}
