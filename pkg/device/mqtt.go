// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package device

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultMQTTTopic is the raw IR send command of a Tasmota IR blaster named irblaster
const DefaultMQTTTopic = "cmnd/irblaster/IRsend"

const mqttTimeout = 5 * time.Second

// ClientFactory creates MQTT clients; tests replace it with a mock
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// DefaultClientFactory creates real paho clients
var DefaultClientFactory ClientFactory = mqtt.NewClient

// MQTT publishes pulse sequences as Tasmota raw IR commands
type MQTT struct {
	mu         sync.Mutex
	client     mqtt.Client
	broker     string
	topic      string
	carrierKHz uint32
}

// OpenMQTT connects to broker (host:port, tcp://, mqtt:// or mqtts://)
func OpenMQTT(broker, topic string, factory ClientFactory) (*MQTT, error) {
	if broker == "" {
		return nil, errors.New("MQTT broker is required")
	}
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	if factory == nil {
		factory = DefaultClientFactory
	}

	opts := NewClientOptions(broker)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt: connection lost")
	}

	client := factory(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		client.Disconnect(0)
		return nil, errors.New("failed to connect to MQTT broker: connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Info().Msgf("mqtt: connected to %s (topic: %s)", broker, topic)
	return &MQTT{
		client:     client,
		broker:     broker,
		topic:      topic,
		carrierKHz: powerfunctions.CarrierFrequency / 1000,
	}, nil
}

// NewClientOptions builds paho options for a broker address
func NewClientOptions(broker string) *mqtt.ClientOptions {
	scheme, host := "tcp", broker
	if parts := strings.SplitN(broker, "://", 2); len(parts) == 2 {
		host = parts[1]
		switch parts[0] {
		case "mqtts", "ssl", "tls":
			scheme = "ssl"
		case "ws", "wss":
			scheme = parts[0]
		}
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s", scheme, host))
	opts.SetClientID("brickbeam-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if scheme == "ssl" {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

// TasmotaRaw formats a sequence as "<carrier kHz>,<d1>,<d2>,..."
func TasmotaRaw(carrierKHz uint32, pulses []uint32) string {
	var s strings.Builder
	s.WriteString(strconv.FormatUint(uint64(carrierKHz), 10))
	for _, p := range pulses {
		s.WriteByte(',')
		s.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	return s.String()
}

// SendPulses publishes one sequence with QoS 1
func (m *MQTT) SendPulses(pulses []uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return &TransmitError{Transmitter: "mqtt", Err: ErrClosed}
	}

	token := m.client.Publish(m.topic, 1, false, TasmotaRaw(m.carrierKHz, pulses))
	if !token.WaitTimeout(mqttTimeout) {
		return &TransmitError{Transmitter: "mqtt", Err: errors.New("publish timeout")}
	}
	if err := token.Error(); err != nil {
		return &TransmitError{Transmitter: "mqtt", Err: err}
	}

	log.Debug().Msgf("mqtt: published %d durations to %s", len(pulses), m.topic)
	return nil
}

// Close disconnects from the broker
func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.client.IsConnected() {
		log.Debug().Msg("mqtt: disconnecting")
		m.client.Disconnect(250)
	}
	m.client = nil
	return nil
}
