// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package irbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPacket(t *testing.T) {
	tests := []struct {
		name   string
		packet *Packet
		want   []string
	}{
		{"transmit", NewTransmit(3, 38000, 33, testFrame), []string{"TRANSMIT (0x10)", "Seq: 3", "38.0 kHz", "Duty: 33%", "Pulses: 36"}},
		{"ack", NewAck(8), []string{"ACK (0x30)", "Seq: 8"}},
		{"ping response", NewPingResponse(1, 3723000), []string{"PING_RESPONSE", "1 hour, 2 minutes, and 3 seconds"}},
		{"error", NewError(2, ErrorBusy, "busy"), []string{"ERROR (0xE0)", "BUSY (2)", `"busy"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatPacket(decodeAll(t, MustEncodePacket(tt.packet)))
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatMessageType_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", FormatMessageType(0x99))
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{0, "0 ms"},
		{999, "999 ms"},
		{1000, "1 second"},
		{61000, "1 minute and 1 second"},
		{120000, "2 minutes"},
		{90061000, "1 day, 1 hour, 1 minute, and 1 second"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.ms), "%d ms", tt.ms)
	}
}
