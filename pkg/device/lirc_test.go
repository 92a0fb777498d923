// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLircBuffer(t *testing.T, buf []byte) []uint32 {
	t.Helper()
	require.Zero(t, len(buf)%4)
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.NativeEndian.Uint32(buf[4*i:])
	}
	return out
}

func TestLircBuffer(t *testing.T) {
	tests := []struct {
		name   string
		pulses []uint32
		want   []uint32
	}{
		{"drops trailing space", []uint32{157, 1026, 157, 263}, []uint32{157, 1026, 157}},
		{"odd count untouched", []uint32{157, 1026, 157}, []uint32{157, 1026, 157}},
		{"single mark", []uint32{157}, []uint32{157}},
		{"empty", nil, []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeLircBuffer(t, lircBuffer(tt.pulses))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLircBuffer_DoesNotModifyInput(t *testing.T) {
	pulses := []uint32{157, 1026, 157, 263}
	_ = lircBuffer(pulses)
	assert.Equal(t, []uint32{157, 1026, 157, 263}, pulses)
}
