// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package remote

import (
	"context"
	"sync"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
)

// ComboTimeout is how long a receiver keeps a Combo PWM command without a
// fresh transmission
const ComboTimeout = 1200 * time.Millisecond

// ComboSpeedRemote sets both outputs of a channel with Combo PWM commands
type ComboSpeedRemote struct {
	mu      sync.Mutex
	owner   *BrickBeam
	encoder *powerfunctions.ComboPWMEncoder
	channel powerfunctions.Channel
}

// NewComboSpeedRemote creates a Combo PWM remote for channel
func (b *BrickBeam) NewComboSpeedRemote(channel powerfunctions.Channel) (*ComboSpeedRemote, error) {
	encoder, err := powerfunctions.NewComboPWMEncoder()
	if err != nil {
		return nil, err
	}
	return &ComboSpeedRemote{owner: b, encoder: encoder, channel: channel}, nil
}

// Channel returns the channel the remote transmits on
func (r *ComboSpeedRemote) Channel() powerfunctions.Channel {
	return r.channel
}

// Send encodes cmd and transmits it
func (r *ComboSpeedRemote) Send(cmd powerfunctions.ComboPWMCommand) error {
	return r.send(context.Background(), cmd)
}

func (r *ComboSpeedRemote) send(ctx context.Context, cmd powerfunctions.ComboPWMCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pulses, err := r.encoder.Encode(r.channel, cmd)
	if err != nil {
		return err
	}
	log.Debug().Msgf("remote: %s combo pwm %s", r.channel, cmd)
	return r.owner.send(ctx, r.channel, pulses)
}

// KeepAlive sends cmd now and then every interval until ctx is done, so the
// receiver does not fall back to float after ComboTimeout. It returns nil
// on cancellation, including cancellation during a repeat schedule, and the
// first send error otherwise. Nothing is sent once ctx is done.
func (r *ComboSpeedRemote) KeepAlive(ctx context.Context, cmd powerfunctions.ComboPWMCommand, every time.Duration) error {
	ticker := r.owner.clock.NewTicker(every)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.send(ctx, cmd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}
