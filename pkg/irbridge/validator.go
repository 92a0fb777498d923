// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package irbridge

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyMissingField AnomalyType = iota
	AnomalyInvalidValue
	AnomalyDecodeError
	AnomalyUnknownType
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket validates packet structure and detects anomalies
// Returns a slice of validation errors (empty if packet is valid)
func ValidatePacket(p *Packet) []ValidationError {
	if err := p.ParseError(); err != nil {
		return []ValidationError{{
			Type:    AnomalyDecodeError,
			Message: fmt.Sprintf("payload decode failed: %v", err),
		}}
	}

	errors := []ValidationError{}
	m := p.PayloadMap()

	if _, ok := p.Seq(); !ok {
		errors = append(errors, ValidationError{
			Type:    AnomalyMissingField,
			Message: fmt.Sprintf("%s without sequence number", FormatMessageType(p.Type())),
		})
	}

	switch p.Type() {
	case MsgTransmit:
		errors = append(errors, validateTransmit(m)...)
	case MsgPingResponse:
		if _, ok := GetMapUint(m, KeyUptime); !ok {
			errors = append(errors, ValidationError{
				Type:    AnomalyMissingField,
				Message: "PING_RESPONSE without uptime",
			})
		}
	case MsgError:
		if _, ok := GetMapInt(m, KeyErrorCode); !ok {
			errors = append(errors, ValidationError{
				Type:    AnomalyMissingField,
				Message: "ERROR without error code",
			})
		}
	case MsgPingRequest, MsgAck:
	default:
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownType,
			Message: fmt.Sprintf("unknown message type 0x%02X", p.Type()),
		})
	}

	return errors
}

func validateTransmit(m map[int]interface{}) []ValidationError {
	errors := []ValidationError{}

	carrier, ok := GetMapUint(m, KeyCarrier)
	if !ok || carrier == 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("invalid carrier frequency %d", carrier),
		})
	}

	duty, ok := GetMapUint(m, KeyDutyCycle)
	if !ok || duty == 0 || duty > 100 {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("invalid duty cycle %d%%", duty),
		})
	}

	durations, ok := GetMapUintSlice(m, KeyDurations)
	if !ok {
		return append(errors, ValidationError{
			Type:    AnomalyMissingField,
			Message: "TRANSMIT without durations",
		})
	}
	if len(durations)%2 != 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("odd duration count %d (mark/space pairs expected)", len(durations)),
		})
	}
	for i, d := range durations {
		if d == 0 {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidValue,
				Message: fmt.Sprintf("zero duration at index %d", i),
			})
			break
		}
	}

	return errors
}
