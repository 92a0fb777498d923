// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var speedOutput string

var speedCmd = &cobra.Command{
	Use:   "speed <speed>|<discrete-command>",
	Short: "Send a Single Output command to one output",
	Long: `Send a Single Output command to the red or blue output of a channel.

The argument is either a PWM speed (-7..7, 0 floats, 8 brakes) or one of the
discrete commands:

  toggle-full-forward, toggle-direction, increment-numerical-pwm,
  decrement-numerical-pwm, increment-pwm, decrement-pwm, full-forward,
  full-backward, toggle-full-forward-backward, clear-c1, set-c1, toggle-c1,
  clear-c2, set-c2, toggle-c2, toggle-full-backward

Negative speeds need "--" before them: brickbeam speed -c 2 -- -4`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeed,
}

func init() {
	rootCmd.AddCommand(speedCmd)
	speedCmd.Flags().StringVarP(&speedOutput, "output", "o", "red", "Output: red or blue")
}

func runSpeed(cmd *cobra.Command, args []string) error {
	channel, err := selectedChannel()
	if err != nil {
		return err
	}
	output, err := powerfunctions.ParseOutput(speedOutput)
	if err != nil {
		return err
	}
	command, err := parseSingleOutput(args[0])
	if err != nil {
		return err
	}

	bb, txInfo, err := OpenBrickBeam(os.Stdout)
	if err != nil {
		return err
	}
	defer bb.Close()

	r, err := bb.NewSpeedRemote(channel, output)
	if err != nil {
		return err
	}
	if err := r.Send(command); err != nil {
		return err
	}

	log.Info().Msgf("%s %s %s sent via %s", channel, output, command, txInfo)
	return nil
}
