// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/irbridge"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultAckTimeout is how long a bridge may take to emit a frame and reply
const DefaultAckTimeout = 500 * time.Millisecond

// BridgeError is an ERROR reply from the bridge
type BridgeError struct {
	Code    irbridge.ErrorCode
	Message string
}

func (e *BridgeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bridge error %s", e.Code)
	}
	return fmt.Sprintf("bridge error %s: %s", e.Code, e.Message)
}

// Bridge transmits through an IR blaster microcontroller speaking the
// irbridge protocol over a serial or WebSocket connection
type Bridge struct {
	conn      io.ReadWriteCloser
	name      string
	timeout   time.Duration
	clock     clockwork.Clock
	carrierHz uint32
	dutyCycle uint8

	writeMu sync.Mutex

	mu      sync.Mutex
	seq     uint32
	pending map[uint32]chan *irbridge.Packet
	closed  bool
	readErr error

	done chan struct{}
	wg   sync.WaitGroup
}

// BridgeOption configures a Bridge
type BridgeOption func(*Bridge)

// WithAckTimeout sets how long to wait for each reply
func WithAckTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// WithBridgeClock replaces the clock used for reply timeouts
func WithBridgeClock(c clockwork.Clock) BridgeOption {
	return func(b *Bridge) {
		b.clock = c
	}
}

// WithCarrier overrides the carrier sent with every TRANSMIT
func WithCarrier(hz uint32, dutyCycle uint8) BridgeOption {
	return func(b *Bridge) {
		b.carrierHz = hz
		b.dutyCycle = dutyCycle
	}
}

// NewBridge starts reading replies from conn. The bridge owns conn and
// closes it on Close.
func NewBridge(conn io.ReadWriteCloser, name string, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		conn:      conn,
		name:      name,
		timeout:   DefaultAckTimeout,
		clock:     clockwork.NewRealClock(),
		carrierHz: powerfunctions.CarrierFrequency,
		dutyCycle: powerfunctions.DutyCycle,
		pending:   make(map[uint32]chan *irbridge.Packet),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.wg.Add(1)
	go b.readLoop()
	return b
}

// SendPulses sends a TRANSMIT and waits for the bridge to acknowledge it
func (b *Bridge) SendPulses(pulses []uint32) error {
	reply, err := b.request(func(seq uint32) *irbridge.Packet {
		return irbridge.NewTransmit(seq, b.carrierHz, b.dutyCycle, pulses)
	})
	if err != nil {
		return &TransmitError{Transmitter: b.name, Err: err}
	}

	switch reply.Type() {
	case irbridge.MsgAck:
		log.Debug().Msgf("bridge: %s acknowledged %d durations", b.name, len(pulses))
		return nil
	case irbridge.MsgError:
		return &TransmitError{Transmitter: b.name, Err: bridgeError(reply)}
	default:
		return &TransmitError{
			Transmitter: b.name,
			Err:         fmt.Errorf("unexpected reply %s", irbridge.FormatMessageType(reply.Type())),
		}
	}
}

// Ping sends a PING_REQUEST and returns the bridge uptime and round trip time
func (b *Bridge) Ping() (uptime time.Duration, rtt time.Duration, err error) {
	start := b.clock.Now()
	reply, err := b.request(irbridge.NewPingRequest)
	if err != nil {
		return 0, 0, err
	}
	rtt = b.clock.Since(start)

	switch reply.Type() {
	case irbridge.MsgPingResponse:
		ms, _ := irbridge.GetMapUint(reply.PayloadMap(), irbridge.KeyUptime)
		return time.Duration(ms) * time.Millisecond, rtt, nil
	case irbridge.MsgError:
		return 0, rtt, bridgeError(reply)
	default:
		return 0, rtt, fmt.Errorf("unexpected reply %s", irbridge.FormatMessageType(reply.Type()))
	}
}

// Close closes the connection and waits for the reader to exit
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := b.conn.Close()
	b.wg.Wait()
	return err
}

// request sends the packet built for the next sequence number and waits for
// the reply carrying the same number
func (b *Bridge) request(build func(seq uint32) *irbridge.Packet) (*irbridge.Packet, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.seq++
	seq := b.seq
	reply := make(chan *irbridge.Packet, 1)
	b.pending[seq] = reply
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, seq)
		b.mu.Unlock()
	}()

	wire, err := irbridge.Encode(build(seq))
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet: %w", err)
	}

	b.writeMu.Lock()
	_, err = b.conn.Write(wire)
	b.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write packet: %w", err)
	}

	timer := b.clock.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case p := <-reply:
		return p, nil
	case <-b.done:
		return nil, b.connErr()
	case <-timer.Chan():
		return nil, fmt.Errorf("no reply to seq %d within %v", seq, b.timeout)
	}
}

func (b *Bridge) readLoop() {
	defer b.wg.Done()
	defer close(b.done)

	decoder := irbridge.NewDecoder()
	buf := make([]byte, 256)

	for {
		n, err := b.conn.Read(buf)
		if n > 0 {
			packets, errs := decoder.Decode(buf[:n])
			for _, decodeErr := range errs {
				log.Debug().Err(decodeErr).Msgf("bridge: %s decode error", b.name)
			}
			for _, p := range packets {
				b.dispatch(p)
			}
		}
		if err != nil {
			b.mu.Lock()
			if !b.closed {
				b.readErr = err
				log.Error().Err(err).Msgf("bridge: %s connection lost", b.name)
			}
			b.mu.Unlock()
			return
		}
	}
}

func (b *Bridge) dispatch(p *irbridge.Packet) {
	for _, anomaly := range irbridge.ValidatePacket(p) {
		log.Debug().Msgf("bridge: %s anomaly: %s", b.name, anomaly.Message)
	}

	seq, ok := p.Seq()
	if !ok || !p.IsReply() {
		log.Debug().Msgf("bridge: %s ignoring %s", b.name, irbridge.FormatMessageType(p.Type()))
		return
	}

	b.mu.Lock()
	reply, ok := b.pending[seq]
	b.mu.Unlock()
	if !ok {
		log.Debug().Msgf("bridge: %s late reply for seq %d", b.name, seq)
		return
	}

	select {
	case reply <- p:
	default:
	}
}

func (b *Bridge) connErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return fmt.Errorf("connection lost: %w", b.readErr)
	}
	return ErrClosed
}

func bridgeError(p *irbridge.Packet) error {
	m := p.PayloadMap()
	code, _ := irbridge.GetMapInt(m, irbridge.KeyErrorCode)
	msg, _ := irbridge.GetMapString(m, irbridge.KeyErrorMessage)
	return &BridgeError{Code: irbridge.ErrorCode(code), Message: msg}
}

// IsBridgeError reports whether err carries an ERROR reply with the given code
func IsBridgeError(err error, code irbridge.ErrorCode) bool {
	var be *BridgeError
	return errors.As(err, &be) && be.Code == code
}
