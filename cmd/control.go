// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/Thermoquad/brickbeam/pkg/remote"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for driving Power Functions receivers",
	Long: `Drive up to four Power Functions receivers from an interactive terminal UI.

Features:
  - Channel selection (CH1-CH4)
  - Red/blue speed up and down with Combo PWM, resent while non-zero
  - Brake and float both outputs with Combo Direct
  - Command line for any speed, combo, direct or extended command
  - Repeat on/off
  - Event log of sent frames

Keys: up/down select channel, w/s red speed, e/d blue speed, b brake, f float,
r repeat, Tab command line, q quit.

Works with every transmitter.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// channelRemotes holds the remotes of one channel. busy is set while a
// keep-alive frame is in flight so ticks do not pile up.
type channelRemotes struct {
	channel  powerfunctions.Channel
	red      *remote.SpeedRemote
	blue     *remote.SpeedRemote
	combo    *remote.ComboSpeedRemote
	direct   *remote.DirectRemote
	extended *remote.ExtendedRemote
	busy     atomic.Bool
}

// remoteSet is shared by the TUI model copies
type remoteSet struct {
	bb       *remote.BrickBeam
	channels [4]*channelRemotes
}

func newRemoteSet(bb *remote.BrickBeam) (*remoteSet, error) {
	set := &remoteSet{bb: bb}
	for i := range set.channels {
		ch := powerfunctions.Channel(i)
		cr := &channelRemotes{channel: ch}

		var err error
		if cr.red, err = bb.NewSpeedRemote(ch, powerfunctions.OutputRed); err != nil {
			return nil, err
		}
		if cr.blue, err = bb.NewSpeedRemote(ch, powerfunctions.OutputBlue); err != nil {
			return nil, err
		}
		if cr.combo, err = bb.NewComboSpeedRemote(ch); err != nil {
			return nil, err
		}
		if cr.direct, err = bb.NewDirectRemote(ch); err != nil {
			return nil, err
		}
		if cr.extended, err = bb.NewExtendedRemote(ch); err != nil {
			return nil, err
		}
		set.channels[i] = cr
	}
	return set, nil
}

// execute runs a command line typed in the TUI, e.g. "direct forward brake"
func (cr *channelRemotes) execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}
	args := fields[1:]

	switch fields[0] {
	case "speed", "red", "blue":
		r := cr.red
		if fields[0] == "blue" {
			r = cr.blue
		}
		if len(args) != 1 {
			return "", fmt.Errorf("usage: %s <speed>|<discrete-command>", fields[0])
		}
		command, err := parseSingleOutput(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", cr.channel, r.Output(), command), r.Send(command)

	case "combo":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: combo <red-speed> <blue-speed>")
		}
		command, err := parseComboPWM(args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s combo pwm %s", cr.channel, command), cr.combo.Send(command)

	case "direct":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: direct <red-state> <blue-state>")
		}
		command, err := parseComboDirect(args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s combo direct %s", cr.channel, command), cr.direct.Send(command)

	case "extended":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: extended <command>")
		}
		command, err := parseExtended(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s extended %s", cr.channel, command), cr.extended.Send(command)
	}

	return "", fmt.Errorf("unknown command %q (speed, red, blue, combo, direct, extended)", fields[0])
}

func runControl(cmd *cobra.Command, args []string) error {
	bb, txInfo, err := OpenBrickBeam(nil)
	if err != nil {
		return err
	}
	defer bb.Close()

	// the alt screen owns the terminal; send results go to the event log
	zerolog.SetGlobalLevel(zerolog.Disabled)

	remotes, err := newRemoteSet(bb)
	if err != nil {
		return err
	}

	channel, err := selectedChannel()
	if err != nil {
		return err
	}

	m := initialControlModel(remotes, txInfo, channel)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
