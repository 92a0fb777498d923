// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransmitter records every sequence. When failAt is set, the
// failAt-th call (1-based) returns err.
type recordingTransmitter struct {
	mu     sync.Mutex
	sent   [][]uint32
	calls  int
	failAt int
	err    error
	closed bool
}

func (r *recordingTransmitter) SendPulses(pulses []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failAt > 0 && r.calls == r.failAt {
		return r.err
	}
	r.sent = append(r.sent, append([]uint32(nil), pulses...))
	return nil
}

func (r *recordingTransmitter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingTransmitter) frames() [][]uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]uint32, len(r.sent))
	copy(out, r.sent)
	return out
}

// toggleBit reads the first payload bit from a rendered frame
func toggleBit(pulses []uint32) uint8 {
	if pulses[3] == powerfunctions.OneSpaceMicros {
		return 1
	}
	return 0
}

// timedTransmitter records when each frame starts and holds the fake clock
// for frame, the way a blocking device write does
type timedTransmitter struct {
	recordingTransmitter
	clock  *clockwork.FakeClock
	frame  time.Duration
	starts []time.Time
}

func (tt *timedTransmitter) SendPulses(pulses []uint32) error {
	tt.mu.Lock()
	tt.starts = append(tt.starts, tt.clock.Now())
	tt.mu.Unlock()

	tt.clock.Advance(tt.frame)
	return tt.recordingTransmitter.SendPulses(pulses)
}

func (tt *timedTransmitter) frameCount() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.starts)
}

func TestRepeatPauses(t *testing.T) {
	tm := RepeatInterval
	tests := []struct {
		channel powerfunctions.Channel
		want    [RepeatCount]time.Duration
	}{
		{powerfunctions.ChannelOne, [RepeatCount]time.Duration{3 * tm, 5 * tm, 5 * tm, 8 * tm, 8 * tm}},
		{powerfunctions.ChannelTwo, [RepeatCount]time.Duration{2 * tm, 5 * tm, 5 * tm, 10 * tm, 10 * tm}},
		{powerfunctions.ChannelThree, [RepeatCount]time.Duration{tm, 5 * tm, 5 * tm, 12 * tm, 12 * tm}},
		{powerfunctions.ChannelFour, [RepeatCount]time.Duration{0, 5 * tm, 5 * tm, 14 * tm, 14 * tm}},
	}

	for _, tt := range tests {
		t.Run(tt.channel.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, repeatPauses(tt.channel))
		})
	}
}

func TestSend_RepeatStartToStart(t *testing.T) {
	const frame = 10 * time.Millisecond

	for _, channel := range []powerfunctions.Channel{
		powerfunctions.ChannelOne,
		powerfunctions.ChannelTwo,
		powerfunctions.ChannelThree,
		powerfunctions.ChannelFour,
	} {
		t.Run(channel.String(), func(t *testing.T) {
			clock := clockwork.NewFakeClock()
			tx := &timedTransmitter{clock: clock, frame: frame}
			b := New(tx, WithRepeat(clock))

			r, err := b.NewSpeedRemote(channel, powerfunctions.OutputRed)
			require.NoError(t, err)

			start := clock.Now()
			errCh := make(chan error, 1)
			go func() {
				errCh <- r.SetSpeed(5)
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			pauses := repeatPauses(channel)
			for i, pause := range pauses {
				wait := pause
				if i > 0 {
					wait -= frame
				}
				if wait <= 0 {
					continue
				}
				require.NoError(t, clock.BlockUntilContext(ctx, 1))
				assert.Equal(t, i, tx.frameCount())
				clock.Advance(wait)
			}

			select {
			case err := <-errCh:
				require.NoError(t, err)
			case <-ctx.Done():
				t.Fatal("repeat schedule did not finish")
			}

			require.Len(t, tx.starts, RepeatCount)
			assert.Equal(t, pauses[0], tx.starts[0].Sub(start))
			for i := 1; i < RepeatCount; i++ {
				assert.Equal(t, pauses[i], tx.starts[i].Sub(tx.starts[i-1]), "frame %d", i+1)
			}

			frames := tx.frames()
			require.Len(t, frames, RepeatCount)
			for _, f := range frames[1:] {
				assert.Equal(t, frames[0], f, "every repetition carries the same toggle")
			}
		})
	}
}

func TestSend_RepeatAbortsOnError(t *testing.T) {
	sendErr := &device.TransmitError{Transmitter: "test", Err: errors.New("unplugged")}
	tx := &recordingTransmitter{failAt: 2, err: sendErr}
	clock := clockwork.NewFakeClock()
	b := New(tx, WithRepeat(clock))

	r, err := b.NewDirectRemote(powerfunctions.ChannelFour)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Send(powerfunctions.ComboDirectCommand{Red: powerfunctions.Forward, Blue: powerfunctions.Brake})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * RepeatInterval)

	select {
	case err := <-errCh:
		assert.Same(t, sendErr, err)
	case <-ctx.Done():
		t.Fatal("send did not return")
	}
	assert.Len(t, tx.frames(), 1)
}

func TestSpeedRemote_Send(t *testing.T) {
	tx := &recordingTransmitter{}
	b := New(tx)

	r, err := b.NewSpeedRemote(powerfunctions.ChannelTwo, powerfunctions.OutputBlue)
	require.NoError(t, err)
	assert.Equal(t, powerfunctions.ChannelTwo, r.Channel())
	assert.Equal(t, powerfunctions.OutputBlue, r.Output())

	require.NoError(t, r.SetSpeed(-3))
	require.NoError(t, r.SetSpeed(-3))
	require.NoError(t, r.Send(powerfunctions.Discrete(powerfunctions.SetC1)))

	reference, err := powerfunctions.NewSingleOutputEncoder()
	require.NoError(t, err)
	var want [][]uint32
	for _, cmd := range []powerfunctions.SingleOutputCommand{
		powerfunctions.PWM(-3),
		powerfunctions.PWM(-3),
		powerfunctions.Discrete(powerfunctions.SetC1),
	} {
		pulses, err := reference.Encode(powerfunctions.ChannelTwo, powerfunctions.OutputBlue, cmd)
		require.NoError(t, err)
		want = append(want, pulses)
	}

	assert.Equal(t, want, tx.frames())
	assert.NotEqual(t, tx.frames()[0], tx.frames()[1], "toggle flips between PWM frames")
}

func TestSpeedRemote_ConcurrentSends(t *testing.T) {
	tx := &recordingTransmitter{}
	b := New(tx)

	r, err := b.NewSpeedRemote(powerfunctions.ChannelOne, powerfunctions.OutputRed)
	require.NoError(t, err)

	const senders = 16
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.SetSpeed(4))
		}()
	}
	wg.Wait()

	frames := tx.frames()
	require.Len(t, frames, senders)
	for i, f := range frames {
		assert.Equal(t, uint8(i%2), toggleBit(f), "frame %d", i)
	}
}

func TestRemote_TransmitErrorPassesThrough(t *testing.T) {
	sendErr := &device.TransmitError{Transmitter: "test", Err: device.ErrClosed}
	tx := &recordingTransmitter{failAt: 1, err: sendErr}
	b := New(tx)

	r, err := b.NewComboSpeedRemote(powerfunctions.ChannelOne)
	require.NoError(t, err)

	err = r.Send(powerfunctions.ComboPWMCommand{SpeedRed: 3, SpeedBlue: -2})
	assert.Same(t, sendErr, err)
	assert.ErrorIs(t, err, device.ErrTransmit)
}

func TestExtendedRemote(t *testing.T) {
	tx := &recordingTransmitter{}
	b := New(tx)

	r, err := b.NewExtendedRemote(powerfunctions.ChannelThree)
	require.NoError(t, err)
	assert.Equal(t, powerfunctions.ChannelThree, r.Channel())

	assert.Equal(t, uint8(0), r.Address())
	require.NoError(t, r.Send(powerfunctions.ToggleAddress))
	assert.Equal(t, uint8(1), r.Address())
	require.NoError(t, r.Send(powerfunctions.IncrementSpeed))
	assert.Equal(t, uint8(1), r.Address())

	err = r.Send(powerfunctions.ExtendedCommand{})
	require.ErrorIs(t, err, powerfunctions.ErrProtocol)
	assert.Len(t, tx.frames(), 2, "invalid commands are never transmitted")
}

func TestComboSpeedRemote_KeepAlive(t *testing.T) {
	tx := &recordingTransmitter{}
	clock := clockwork.NewFakeClock()
	b := New(tx, WithClock(clock))

	r, err := b.NewComboSpeedRemote(powerfunctions.ChannelTwo)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.KeepAlive(ctx, powerfunctions.ComboPWMCommand{SpeedRed: 7, SpeedBlue: 7}, time.Second)
	}()

	require.Eventually(t, func() bool { return len(tx.frames()) == 1 }, 5*time.Second, time.Millisecond)

	for want := 2; want <= 3; want++ {
		clock.Advance(time.Second)
		require.Eventually(t, func() bool { return len(tx.frames()) == want }, 5*time.Second, time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("KeepAlive did not stop")
	}

	frames := tx.frames()
	assert.Equal(t, frames[0], frames[2], "combo pwm frames carry no toggle")
}

func TestComboSpeedRemote_KeepAliveError(t *testing.T) {
	sendErr := &device.TransmitError{Transmitter: "test", Err: errors.New("gone")}
	tx := &recordingTransmitter{failAt: 1, err: sendErr}
	b := New(tx, WithClock(clockwork.NewFakeClock()))

	r, err := b.NewComboSpeedRemote(powerfunctions.ChannelOne)
	require.NoError(t, err)

	err = r.KeepAlive(context.Background(), powerfunctions.ComboPWMCommand{}, time.Second)
	assert.Same(t, sendErr, err)
}

func TestComboSpeedRemote_KeepAliveCancelledBeforeStart(t *testing.T) {
	tx := &recordingTransmitter{}
	b := New(tx, WithClock(clockwork.NewFakeClock()))

	r, err := b.NewComboSpeedRemote(powerfunctions.ChannelOne)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.KeepAlive(ctx, powerfunctions.ComboPWMCommand{SpeedRed: 4}, time.Second))
	assert.Empty(t, tx.frames())
}

func TestComboSpeedRemote_KeepAliveCancelDuringRepeat(t *testing.T) {
	tx := &recordingTransmitter{}
	clock := clockwork.NewFakeClock()
	b := New(tx, WithRepeat(clock))

	r, err := b.NewComboSpeedRemote(powerfunctions.ChannelOne)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.KeepAlive(ctx, powerfunctions.ComboPWMCommand{SpeedBlue: -2}, time.Second)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	// keep-alive ticker plus the pause before the first frame
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-waitCtx.Done():
		t.Fatal("KeepAlive did not stop during the repeat pause")
	}
	assert.Empty(t, tx.frames())
}

func TestBrickBeam_Close(t *testing.T) {
	tx := &recordingTransmitter{}
	require.NoError(t, New(tx).Close())
	assert.True(t, tx.closed)
}

func TestBrickBeam_SetRepeat(t *testing.T) {
	tx := &recordingTransmitter{}
	b := New(tx, WithRepeat(clockwork.NewFakeClock()))
	assert.True(t, b.Repeat())

	b.SetRepeat(false)
	assert.False(t, b.Repeat())

	r, err := b.NewSpeedRemote(powerfunctions.ChannelOne, powerfunctions.OutputRed)
	require.NoError(t, err)
	require.NoError(t, r.SetSpeed(1))
	assert.Len(t, tx.frames(), 1, "a single frame once repeat is off")
}
