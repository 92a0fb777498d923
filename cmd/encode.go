// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/spf13/cobra"
)

var encodeOutput string

var encodeCmd = &cobra.Command{
	Use:   "encode <protocol> <args>...",
	Short: "Print the frame and pulses of a command without sending it",
	Long: `Encode a command and print its fields, payload bits and pulse durations.
No transmitter is opened.

Protocols:
  single <speed>|<discrete-command> [--output red|blue]
  combo <red-speed> <blue-speed>
  direct <red-state> <blue-state>
  extended <command>

Example:
  brickbeam encode -c 2 combo 7 -- -3`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "red", "Output for single: red or blue")
}

func runEncode(cmd *cobra.Command, args []string) error {
	channel, err := selectedChannel()
	if err != nil {
		return err
	}

	frame, err := encodeFrame(channel, args[0], args[1:])
	if err != nil {
		return err
	}

	printFrame(cmd.OutOrStdout(), frame)
	return nil
}

// encodeFrame builds one frame with a fresh encoder, so toggle and address are 0
func encodeFrame(channel powerfunctions.Channel, protocol string, args []string) (powerfunctions.Frame, error) {
	switch protocol {
	case "single":
		if len(args) != 1 {
			return powerfunctions.Frame{}, fmt.Errorf("single takes one argument")
		}
		output, err := powerfunctions.ParseOutput(encodeOutput)
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		command, err := parseSingleOutput(args[0])
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		encoder, err := powerfunctions.NewSingleOutputEncoder()
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		return encoder.EncodeFrame(channel, output, command)

	case "combo":
		if len(args) != 2 {
			return powerfunctions.Frame{}, fmt.Errorf("combo takes two speeds")
		}
		command, err := parseComboPWM(args[0], args[1])
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		encoder, err := powerfunctions.NewComboPWMEncoder()
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		return encoder.EncodeFrame(channel, command)

	case "direct":
		if len(args) != 2 {
			return powerfunctions.Frame{}, fmt.Errorf("direct takes two states")
		}
		command, err := parseComboDirect(args[0], args[1])
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		encoder, err := powerfunctions.NewComboDirectEncoder()
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		return encoder.EncodeFrame(channel, command)

	case "extended":
		if len(args) != 1 {
			return powerfunctions.Frame{}, fmt.Errorf("extended takes one command")
		}
		command, err := parseExtended(args[0])
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		encoder, err := powerfunctions.NewExtendedEncoder()
		if err != nil {
			return powerfunctions.Frame{}, err
		}
		return encoder.EncodeFrame(channel, command)
	}

	return powerfunctions.Frame{}, fmt.Errorf("unknown protocol %q (use single, combo, direct or extended)", protocol)
}

func printFrame(w io.Writer, frame powerfunctions.Frame) {
	fmt.Fprintf(w, "Frame:  %s\n", powerfunctions.FormatFrame(frame))
	fmt.Fprintf(w, "Bits:   %s\n", powerfunctions.FormatBits(frame))
	fmt.Fprintf(w, "Pulses: %d durations\n", len(frame.Pulses))
	fmt.Fprintln(w, powerfunctions.FormatPulses(frame.Pulses))
}
