// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package remote

import (
	"context"
	"sync"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog/log"
)

// DirectRemote sets both outputs of a channel with Combo Direct commands
type DirectRemote struct {
	mu      sync.Mutex
	owner   *BrickBeam
	encoder *powerfunctions.ComboDirectEncoder
	channel powerfunctions.Channel
}

// NewDirectRemote creates a Combo Direct remote for channel
func (b *BrickBeam) NewDirectRemote(channel powerfunctions.Channel) (*DirectRemote, error) {
	encoder, err := powerfunctions.NewComboDirectEncoder()
	if err != nil {
		return nil, err
	}
	return &DirectRemote{owner: b, encoder: encoder, channel: channel}, nil
}

// Channel returns the channel the remote transmits on
func (r *DirectRemote) Channel() powerfunctions.Channel {
	return r.channel
}

// Send encodes cmd and transmits it
func (r *DirectRemote) Send(cmd powerfunctions.ComboDirectCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pulses, err := r.encoder.Encode(r.channel, cmd)
	if err != nil {
		return err
	}
	log.Debug().Msgf("remote: %s combo direct %s", r.channel, cmd)
	return r.owner.send(context.Background(), r.channel, pulses)
}
