// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/irbridge"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var testPulses = []uint32{157, 1026, 157, 263, 157, 552, 157, 1026}

// fakeBridge is the microcontroller end of a net.Pipe. reply decides what to
// answer to each received packet; returning nil sends nothing.
type fakeBridge struct {
	conn     net.Conn
	reply    func(p *irbridge.Packet) []*irbridge.Packet
	received chan *irbridge.Packet
	done     chan struct{}
}

func startFakeBridge(t *testing.T, reply func(p *irbridge.Packet) []*irbridge.Packet) (net.Conn, *fakeBridge) {
	t.Helper()
	host, dev := net.Pipe()
	f := &fakeBridge{
		conn:     dev,
		reply:    reply,
		received: make(chan *irbridge.Packet, 64),
		done:     make(chan struct{}),
	}
	go f.run()
	return host, f
}

func (f *fakeBridge) run() {
	defer close(f.done)
	defer f.conn.Close()

	decoder := irbridge.NewDecoder()
	buf := make([]byte, 64)
	for {
		n, err := f.conn.Read(buf)
		if err != nil {
			return
		}
		packets, _ := decoder.Decode(buf[:n])
		for _, p := range packets {
			f.received <- p
			for _, r := range f.reply(p) {
				if _, err := f.conn.Write(irbridge.MustEncodePacket(r)); err != nil {
					return
				}
			}
		}
	}
}

func ackAll(p *irbridge.Packet) []*irbridge.Packet {
	seq, _ := p.Seq()
	switch p.Type() {
	case irbridge.MsgTransmit:
		return []*irbridge.Packet{irbridge.NewAck(seq)}
	case irbridge.MsgPingRequest:
		return []*irbridge.Packet{irbridge.NewPingResponse(seq, 5000)}
	}
	return nil
}

func closeBridge(t *testing.T, b *Bridge, f *fakeBridge) {
	t.Helper()
	require.NoError(t, b.Close())
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("fake bridge did not exit")
	}
}

func TestBridge_SendPulses(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, ackAll)
	b := NewBridge(host, "test-bridge")

	require.NoError(t, b.SendPulses(testPulses))

	p := <-fake.received
	assert.Equal(t, uint8(irbridge.MsgTransmit), p.Type())
	durations, ok := irbridge.GetMapUintSlice(p.PayloadMap(), irbridge.KeyDurations)
	require.True(t, ok)
	assert.Equal(t, testPulses, durations)
	carrier, _ := irbridge.GetMapUint(p.PayloadMap(), irbridge.KeyCarrier)
	assert.Equal(t, uint64(38000), carrier)
	duty, _ := irbridge.GetMapUint(p.PayloadMap(), irbridge.KeyDutyCycle)
	assert.Equal(t, uint64(33), duty)

	closeBridge(t, b, fake)
}

func TestBridge_SequenceNumbersIncrease(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, ackAll)
	b := NewBridge(host, "test-bridge")

	for i := 0; i < 3; i++ {
		require.NoError(t, b.SendPulses(testPulses))
	}
	for want := uint32(1); want <= 3; want++ {
		seq, ok := (<-fake.received).Seq()
		require.True(t, ok)
		assert.Equal(t, want, seq)
	}

	closeBridge(t, b, fake)
}

func TestBridge_IgnoresStaleReplies(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, func(p *irbridge.Packet) []*irbridge.Packet {
		seq, _ := p.Seq()
		return []*irbridge.Packet{
			irbridge.NewAck(seq + 100),
			irbridge.NewPingRequest(seq),
			irbridge.NewAck(seq),
		}
	})
	b := NewBridge(host, "test-bridge")

	require.NoError(t, b.SendPulses(testPulses))

	closeBridge(t, b, fake)
}

func TestBridge_ErrorReply(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, func(p *irbridge.Packet) []*irbridge.Packet {
		seq, _ := p.Seq()
		return []*irbridge.Packet{irbridge.NewError(seq, irbridge.ErrorBusy, "still sending")}
	})
	b := NewBridge(host, "test-bridge")

	err := b.SendPulses(testPulses)
	require.ErrorIs(t, err, ErrTransmit)
	assert.True(t, IsBridgeError(err, irbridge.ErrorBusy))
	assert.Contains(t, err.Error(), "still sending")
	assert.Contains(t, err.Error(), "test-bridge")

	closeBridge(t, b, fake)
}

func TestBridge_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, func(*irbridge.Packet) []*irbridge.Packet { return nil })
	clock := clockwork.NewFakeClock()
	b := NewBridge(host, "test-bridge", WithBridgeClock(clock), WithAckTimeout(time.Second))

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.SendPulses(testPulses)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrTransmit)
		assert.Contains(t, err.Error(), "no reply to seq 1")
	case <-ctx.Done():
		t.Fatal("SendPulses did not time out")
	}

	closeBridge(t, b, fake)
}

func TestBridge_ConnectionLost(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, dev := net.Pipe()
	b := NewBridge(host, "test-bridge")

	go func() {
		buf := make([]byte, 256)
		_, _ = dev.Read(buf)
		dev.Close()
	}()

	err := b.SendPulses(testPulses)
	require.ErrorIs(t, err, ErrTransmit)
	assert.Contains(t, err.Error(), "connection lost")

	require.NoError(t, b.Close())
}

func TestBridge_Closed(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, ackAll)
	b := NewBridge(host, "test-bridge")
	closeBridge(t, b, fake)

	err := b.SendPulses(testPulses)
	require.ErrorIs(t, err, ErrTransmit)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, b.Close(), "second Close is a no-op")
}

func TestBridge_Ping(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, ackAll)
	b := NewBridge(host, "test-bridge")

	uptime, rtt, err := b.Ping()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, uptime)
	assert.GreaterOrEqual(t, rtt, time.Duration(0))

	closeBridge(t, b, fake)
}

func TestBridge_ConcurrentSends(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, fake := startFakeBridge(t, ackAll)
	b := NewBridge(host, "test-bridge")

	const senders = 8
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.SendPulses(testPulses)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	seen := make(map[uint32]bool)
	for i := 0; i < senders; i++ {
		seq, _ := (<-fake.received).Seq()
		seen[seq] = true
	}
	assert.Len(t, seen, senders)

	closeBridge(t, b, fake)
}
