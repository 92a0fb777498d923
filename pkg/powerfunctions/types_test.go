// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package powerfunctions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFromNumber(t *testing.T) {
	for n := 1; n <= 4; n++ {
		ch, err := ChannelFromNumber(n)
		require.NoError(t, err)
		assert.Equal(t, n, ch.Number())
	}
	for _, n := range []int{0, 5, -1} {
		_, err := ChannelFromNumber(n)
		assert.Error(t, err, "channel %d", n)
	}
	assert.Equal(t, "CH3", ChannelThree.String())
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		in      string
		want    Output
		wantErr bool
	}{
		{"red", OutputRed, false},
		{"A", OutputRed, false},
		{"Blue", OutputBlue, false},
		{"b", OutputBlue, false},
		{"green", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseOutput(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		if assert.NoError(t, err, tt.in) {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseDirectState(t *testing.T) {
	for _, s := range []DirectState{Float, Forward, Backward, Brake} {
		got, err := ParseDirectState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseDirectState("reverse")
	assert.Error(t, err)
}

func TestParseSingleOutputDiscrete(t *testing.T) {
	for code := 0; code < 16; code++ {
		d := SingleOutputDiscrete(code)
		got, err := ParseSingleOutputDiscrete(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	assert.Equal(t, SingleOutputDiscrete(15), ToggleFullBackward)
	assert.Equal(t, SingleOutputDiscrete(9), ClearC1)
}
