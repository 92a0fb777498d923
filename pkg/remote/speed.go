// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package remote

import (
	"context"
	"sync"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
)

// SpeedRemote drives one output of one channel with Single Output commands
type SpeedRemote struct {
	mu      sync.Mutex
	owner   *BrickBeam
	encoder *powerfunctions.SingleOutputEncoder
	channel powerfunctions.Channel
	output  powerfunctions.Output
}

// NewSpeedRemote creates a Single Output remote for channel and output
func (b *BrickBeam) NewSpeedRemote(channel powerfunctions.Channel, output powerfunctions.Output) (*SpeedRemote, error) {
	encoder, err := powerfunctions.NewSingleOutputEncoder()
	if err != nil {
		return nil, err
	}
	return &SpeedRemote{
		owner:   b,
		encoder: encoder,
		channel: channel,
		output:  output,
	}, nil
}

// Channel returns the channel the remote transmits on
func (r *SpeedRemote) Channel() powerfunctions.Channel {
	return r.channel
}

// Output returns the output the remote drives
func (r *SpeedRemote) Output() powerfunctions.Output {
	return r.output
}

// Send encodes cmd and transmits it
func (r *SpeedRemote) Send(cmd powerfunctions.SingleOutputCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pulses, err := r.encoder.Encode(r.channel, r.output, cmd)
	if err != nil {
		return err
	}
	log.Debug().Msgf("remote: %s %s %s", r.channel, r.output, cmd)
	return r.owner.send(context.Background(), r.channel, pulses)
}

// SetSpeed sends a PWM command
func (r *SpeedRemote) SetSpeed(speed int) error {
	return r.Send(powerfunctions.PWM(speed))
}
