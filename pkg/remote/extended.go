// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package remote

import (
	"context"
	"sync"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
)

// ExtendedRemote sends Extended commands on a channel. The address bit it
// transmits follows ToggleAddress commands sent through it.
type ExtendedRemote struct {
	mu      sync.Mutex
	owner   *BrickBeam
	encoder *powerfunctions.ExtendedEncoder
	channel powerfunctions.Channel
}

// NewExtendedRemote creates an Extended remote for channel
func (b *BrickBeam) NewExtendedRemote(channel powerfunctions.Channel) (*ExtendedRemote, error) {
	encoder, err := powerfunctions.NewExtendedEncoder()
	if err != nil {
		return nil, err
	}
	return &ExtendedRemote{owner: b, encoder: encoder, channel: channel}, nil
}

// Channel returns the channel the remote transmits on
func (r *ExtendedRemote) Channel() powerfunctions.Channel {
	return r.channel
}

// Address returns the address bit the next command will carry
func (r *ExtendedRemote) Address() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.encoder.Address()
}

// Send encodes cmd and transmits it
func (r *ExtendedRemote) Send(cmd powerfunctions.ExtendedCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pulses, err := r.encoder.Encode(r.channel, cmd)
	if err != nil {
		return err
	}
	log.Debug().Msgf("remote: %s extended %s (address %d)", r.channel, cmd, r.encoder.Address())
	return r.owner.send(context.Background(), r.channel, pulses)
}
