// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/remote"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var comboKeepAlive time.Duration

var comboCmd = &cobra.Command{
	Use:   "combo <red-speed> <blue-speed>",
	Short: "Set both outputs with a Combo PWM command",
	Long: `Set the PWM speed of both outputs of a channel at once (-7..7, 0 floats,
8 brakes).

Receivers drop Combo PWM commands after about 1.2 seconds without a new
transmission. Use --keep-alive to keep resending until interrupted:

  brickbeam combo -c 1 --keep-alive 500ms 5 -- -5`,
	Args: cobra.ExactArgs(2),
	RunE: runCombo,
}

func init() {
	rootCmd.AddCommand(comboCmd)
	comboCmd.Flags().DurationVar(&comboKeepAlive, "keep-alive", 0, "Resend interval until Ctrl+C (0 sends once)")
}

func runCombo(cmd *cobra.Command, args []string) error {
	channel, err := selectedChannel()
	if err != nil {
		return err
	}
	command, err := parseComboPWM(args[0], args[1])
	if err != nil {
		return err
	}

	bb, txInfo, err := OpenBrickBeam(os.Stdout)
	if err != nil {
		return err
	}
	defer bb.Close()

	r, err := bb.NewComboSpeedRemote(channel)
	if err != nil {
		return err
	}

	if comboKeepAlive <= 0 {
		if err := r.Send(command); err != nil {
			return err
		}
		log.Info().Msgf("%s combo pwm %s sent via %s", channel, command, txInfo)
		return nil
	}

	if comboKeepAlive >= remote.ComboTimeout {
		log.Warn().Msgf("keep-alive interval %v is not shorter than the receiver timeout %v", comboKeepAlive, remote.ComboTimeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("%s combo pwm %s every %v via %s, Ctrl+C to stop", channel, command, comboKeepAlive, txInfo)
	return r.KeepAlive(ctx, command, comboKeepAlive)
}
