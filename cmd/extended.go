// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var extendedCmd = &cobra.Command{
	Use:   "extended <command>...",
	Short: "Send Extended commands",
	Long: `Send one or more Extended commands to a channel, in order.

Commands (short or full name):
  brake           brake-then-float
  inc             increment-speed
  dec             decrement-speed
  toggle-forward  toggle-forward-or-float
  toggle-address  toggle-address
  align           align-toggle

The address bit set by toggle-address applies to the commands after it:

  brickbeam extended toggle-address inc inc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtended,
}

func init() {
	rootCmd.AddCommand(extendedCmd)
}

func runExtended(cmd *cobra.Command, args []string) error {
	channel, err := selectedChannel()
	if err != nil {
		return err
	}
	for _, arg := range args {
		if _, err := parseExtended(arg); err != nil {
			return err
		}
	}

	bb, txInfo, err := OpenBrickBeam(os.Stdout)
	if err != nil {
		return err
	}
	defer bb.Close()

	r, err := bb.NewExtendedRemote(channel)
	if err != nil {
		return err
	}

	for _, arg := range args {
		command, _ := parseExtended(arg)
		if err := r.Send(command); err != nil {
			return err
		}
		log.Info().Msgf("%s extended %s sent via %s (next address %d)", channel, command, txInfo, r.Address())
	}
	return nil
}
