// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package remote provides per-channel remote controls on top of the
// powerfunctions encoders and a device.Transmitter.
//
// Each remote owns its encoder, so toggle and address state is kept per
// remote. A remote is safe for concurrent use: encoding and sending happen
// under one lock.
package remote

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Retransmission schedule
const (
	RepeatCount    = 5
	RepeatInterval = 16 * time.Millisecond // tm
)

// BrickBeam creates remotes sharing one transmitter
type BrickBeam struct {
	tx     device.Transmitter
	clock  clockwork.Clock
	repeat atomic.Bool
}

// Option configures a BrickBeam
type Option func(*BrickBeam)

// WithRepeat sends every frame RepeatCount times, sleeping on clock between
// transmissions
func WithRepeat(clock clockwork.Clock) Option {
	return func(b *BrickBeam) {
		b.repeat.Store(true)
		b.clock = clock
	}
}

// WithClock replaces the clock used for keep-alive ticks and repeat pauses
func WithClock(clock clockwork.Clock) Option {
	return func(b *BrickBeam) {
		b.clock = clock
	}
}

// New wraps a transmitter. The BrickBeam owns tx and closes it on Close.
func New(tx device.Transmitter, opts ...Option) *BrickBeam {
	b := &BrickBeam{
		tx:    tx,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetRepeat turns retransmission on or off for frames sent from now on
func (b *BrickBeam) SetRepeat(enabled bool) {
	b.repeat.Store(enabled)
}

// Repeat reports whether frames are retransmitted
func (b *BrickBeam) Repeat() bool {
	return b.repeat.Load()
}

// Close closes the underlying transmitter
func (b *BrickBeam) Close() error {
	return b.tx.Close()
}

// repeatPauses returns, for each transmission, the delay from the start of
// the previous one. The first entry is measured from the call to send.
func repeatPauses(channel powerfunctions.Channel) [RepeatCount]time.Duration {
	ch := time.Duration(channel.Number())
	first := (4 - ch) * RepeatInterval
	short := 5 * RepeatInterval
	long := (6 + 2*ch) * RepeatInterval
	return [RepeatCount]time.Duration{first, short, short, long, long}
}

// send transmits one encoded frame, repeating it when enabled. The first
// failure aborts the schedule. Cancelling ctx stops it between frames.
func (b *BrickBeam) send(ctx context.Context, channel powerfunctions.Channel, pulses []uint32) error {
	if !b.repeat.Load() {
		return b.tx.SendPulses(pulses)
	}

	last := b.clock.Now()
	for i, pause := range repeatPauses(channel) {
		if wait := pause - b.clock.Since(last); wait > 0 {
			if err := b.sleep(ctx, wait); err != nil {
				return err
			}
		}
		last = b.clock.Now()
		if err := b.tx.SendPulses(pulses); err != nil {
			log.Debug().Err(err).Msgf("remote: %s transmission %d/%d failed", channel, i+1, RepeatCount)
			return err
		}
	}
	return nil
}

func (b *BrickBeam) sleep(ctx context.Context, d time.Duration) error {
	timer := b.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
