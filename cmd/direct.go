// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var directCmd = &cobra.Command{
	Use:   "direct <red-state> <blue-state>",
	Short: "Set both outputs with a Combo Direct command",
	Long: `Set the discrete state of both outputs of a channel at once.

States: float, forward, backward, brake`,
	Args: cobra.ExactArgs(2),
	RunE: runDirect,
}

func init() {
	rootCmd.AddCommand(directCmd)
}

func runDirect(cmd *cobra.Command, args []string) error {
	channel, err := selectedChannel()
	if err != nil {
		return err
	}
	command, err := parseComboDirect(args[0], args[1])
	if err != nil {
		return err
	}

	bb, txInfo, err := OpenBrickBeam(os.Stdout)
	if err != nil {
		return err
	}
	defer bb.Close()

	r, err := bb.NewDirectRemote(channel)
	if err != nil {
		return err
	}
	if err := r.Send(command); err != nil {
		return err
	}

	log.Info().Msgf("%s combo direct %s sent via %s", channel, command, txInfo)
	return nil
}
