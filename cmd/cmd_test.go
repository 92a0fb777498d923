// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Thermoquad/brickbeam/pkg/config"
	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/irbridge"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/Thermoquad/brickbeam/pkg/remote"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleOutput(t *testing.T) {
	tests := []struct {
		in   string
		want powerfunctions.SingleOutputCommand
	}{
		{"3", powerfunctions.PWM(3)},
		{"-7", powerfunctions.PWM(-7)},
		{"set-c1", powerfunctions.Discrete(powerfunctions.SetC1)},
		{"Toggle-Direction", powerfunctions.Discrete(powerfunctions.ToggleDirection)},
	}

	for _, tt := range tests {
		got, err := parseSingleOutput(tt.in)
		if assert.NoError(t, err, tt.in) {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}

	_, err := parseSingleOutput("warp")
	assert.Error(t, err)
}

func TestParseExtended(t *testing.T) {
	tests := map[string]powerfunctions.ExtendedCommand{
		"brake":                   powerfunctions.BrakeThenFloat,
		"inc":                     powerfunctions.IncrementSpeed,
		"dec":                     powerfunctions.DecrementSpeed,
		"toggle-forward":          powerfunctions.ToggleForwardOrFloat,
		"toggle-address":          powerfunctions.ToggleAddress,
		"align":                   powerfunctions.AlignToggle,
		"toggle-forward-or-float": powerfunctions.ToggleForwardOrFloat,
		"INC":                     powerfunctions.IncrementSpeed,
	}

	for in, want := range tests {
		got, err := parseExtended(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, got, in)
		}
	}

	_, err := parseExtended("reserved")
	assert.Error(t, err)
}

func TestParseCombo(t *testing.T) {
	pwm, err := parseComboPWM("7", "-3")
	require.NoError(t, err)
	assert.Equal(t, powerfunctions.ComboPWMCommand{SpeedRed: 7, SpeedBlue: -3}, pwm)

	direct, err := parseComboDirect("forward", "brake")
	require.NoError(t, err)
	assert.Equal(t, powerfunctions.ComboDirectCommand{Red: powerfunctions.Forward, Blue: powerfunctions.Brake}, direct)

	_, err = parseComboPWM("fast", "1")
	assert.Error(t, err)
	_, err = parseComboDirect("float", "reverse")
	assert.Error(t, err)
}

func TestEncodeFrame(t *testing.T) {
	encodeOutput = "red"

	// Combo Direct fwd/float on channel 1: 0000 0001 0001 1111
	frame, err := encodeFrame(powerfunctions.ChannelOne, "direct", []string{"forward", "float"})
	require.NoError(t, err)
	assert.Equal(t, "0000 0001 0001 1111", powerfunctions.FormatBits(frame))

	for _, tc := range []struct {
		protocol string
		args     []string
	}{
		{"single", []string{"4"}},
		{"combo", []string{"7", "-7"}},
		{"extended", []string{"align"}},
	} {
		frame, err := encodeFrame(powerfunctions.ChannelThree, tc.protocol, tc.args)
		if assert.NoError(t, err, tc.protocol) {
			assert.Len(t, frame.Pulses, powerfunctions.FrameLength, tc.protocol)
		}
	}

	_, err = encodeFrame(powerfunctions.ChannelOne, "rc5", []string{"1"})
	assert.Error(t, err, "unknown protocol")
	_, err = encodeFrame(powerfunctions.ChannelOne, "combo", []string{"1"})
	assert.Error(t, err, "combo with one speed")
}

func TestPrintFrame(t *testing.T) {
	encodeOutput = "blue"
	frame, err := encodeFrame(powerfunctions.ChannelOne, "single", []string{"0"})
	require.NoError(t, err)

	var out strings.Builder
	printFrame(&out, frame)
	for _, want := range []string{"Frame:  single_output", "Bits:", "Pulses: 36 durations", "157, 1026"} {
		assert.Contains(t, out.String(), want)
	}
}

func newTestControlModel(t *testing.T) (controlModel, *device.Emulator) {
	t.Helper()
	emulator := device.NewEmulator(nil)
	remotes, err := newRemoteSet(remote.New(emulator))
	require.NoError(t, err)
	return initialControlModel(remotes, "Emulator", powerfunctions.ChannelTwo), emulator
}

func pressKey(t *testing.T, m controlModel, msg tea.KeyMsg) (controlModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(controlModel)
	require.True(t, ok, "Update returned %T", next)
	return cm, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestControlModel_SpeedKeys(t *testing.T) {
	m, emulator := newTestControlModel(t)
	require.Equal(t, 1, m.selectedIndex())

	var cmd tea.Cmd
	for i := 0; i < 9; i++ {
		m, cmd = pressKey(t, m, runeKey('w'))
	}
	assert.Equal(t, maxSpeed, m.speeds[1].red, "red speed clamps")

	m, cmd = pressKey(t, m, runeKey('d'))
	assert.Equal(t, -1, m.speeds[1].blue)

	sent, ok := cmd().(sentMsg)
	require.True(t, ok, "speed key should produce a send")
	require.NoError(t, sent.err)
	assert.Contains(t, sent.description, "red=7 blue=-1")
	assert.Equal(t, 1, emulator.Sent())

	next, _ := m.Update(sent)
	m = next.(controlModel)
	assert.Equal(t, 1, m.sentFrames)
	assert.Len(t, m.eventLog, 1)

	m, cmd = pressKey(t, m, runeKey('b'))
	assert.Equal(t, speeds{}, m.speeds[1], "brake zeroes speeds")
	assert.Contains(t, cmd().(sentMsg).description, "red=brake blue=brake")
}

func TestControlModel_RepeatToggle(t *testing.T) {
	m, _ := newTestControlModel(t)
	require.False(t, m.remotes.bb.Repeat())

	m, _ = pressKey(t, m, runeKey('r'))
	assert.True(t, m.remotes.bb.Repeat())
	require.Len(t, m.eventLog, 1)
	assert.Equal(t, "Repeat on", m.eventLog[0].message)
}

func TestControlModel_CommandLine(t *testing.T) {
	m, emulator := newTestControlModel(t)

	m, _ = pressKey(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusCommandInput, m.focusedField)

	m.commandInput.SetValue("combo 3 -2")
	m, cmd := pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, speeds{red: 3, blue: -2}, m.speeds[1])
	assert.Empty(t, m.commandInput.Value(), "command line is cleared")

	require.NoError(t, cmd().(sentMsg).err)
	assert.Equal(t, 1, emulator.Sent())

	m.commandInput.SetValue("extended toggle-address")
	m, cmd = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, cmd().(sentMsg).err)
	assert.Equal(t, uint8(1), m.remotes.channels[1].extended.Address())

	m.commandInput.SetValue("warp 9")
	_, cmd = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Error(t, cmd().(sentMsg).err)
}

func TestControlModel_KeepAlive(t *testing.T) {
	m, emulator := newTestControlModel(t)
	m.setSpeeds(2, speeds{red: 4})

	first := m.keepAliveCmd(2)
	require.NotNil(t, first)
	assert.Nil(t, m.keepAliveCmd(2), "a second keep-alive waits for the first")

	sent := first().(sentMsg)
	require.NoError(t, sent.err)
	assert.True(t, sent.keepAlive)
	assert.Equal(t, 1, emulator.Sent())
	assert.NotNil(t, m.keepAliveCmd(2), "keep-alive is available again")
}

func TestSpeedBar(t *testing.T) {
	tests := map[int]string{
		0:  "[·······|·······]",
		3:  "[·······|███····]",
		-7: "[███████|·······]",
	}
	for speed, want := range tests {
		assert.Equal(t, want, speedBar(speed), "speed %d", speed)
	}
}

func TestLogPackets(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(irbridge.MustEncodePacket(irbridge.NewAck(3)))
	stream.Write(irbridge.MustEncodePacket(irbridge.NewPacketWithPayload(irbridge.MsgPingResponse, map[int]interface{}{
		irbridge.KeySeq: uint32(4),
	})))

	var out bytes.Buffer
	require.NoError(t, logPackets(&stream, &out))

	assert.Contains(t, out.String(), "ACK (0x")
	assert.Contains(t, out.String(), "[ANOMALY] PING_RESPONSE without uptime")
}

func TestResolveSettings_FlagsFixIncompleteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/brickbeam.toml", []byte("[transmitter]\nkind = \"serial\"\n"), 0o600))

	t.Run("file alone is rejected", func(t *testing.T) {
		_, err := resolveSettings(fs, "/brickbeam.toml", &cobra.Command{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "serial_port")
	})

	t.Run("transmitter flag", func(t *testing.T) {
		c := &cobra.Command{}
		c.Flags().StringVar(&transmitterKind, "transmitter", "", "")
		require.NoError(t, c.Flags().Set("transmitter", config.KindEmulator))

		vals, err := resolveSettings(fs, "/brickbeam.toml", c)
		require.NoError(t, err)
		assert.Equal(t, config.KindEmulator, vals.Transmitter.Kind)
	})

	t.Run("port flag", func(t *testing.T) {
		c := &cobra.Command{}
		c.Flags().StringVar(&portName, "port", "", "")
		require.NoError(t, c.Flags().Set("port", "/dev/ttyACM0"))

		vals, err := resolveSettings(fs, "/brickbeam.toml", c)
		require.NoError(t, err)
		assert.Equal(t, config.KindSerial, vals.Transmitter.Kind)
		assert.Equal(t, "/dev/ttyACM0", vals.Transmitter.SerialPort)
	})
}

func TestWriteConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/user/.config/brickbeam/config.toml"

	vals := config.Defaults()
	vals.Transmitter.Kind = config.KindSerial
	vals.Transmitter.SerialPort = "/dev/ttyUSB0"
	require.NoError(t, writeConfig(fs, path, vals, false))

	loaded, err := config.Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, vals, loaded)

	err = writeConfig(fs, path, config.Defaults(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, writeConfig(fs, path, config.Defaults(), true))
	loaded, err = config.Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), loaded)
}
