// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/brickbeam/pkg/config"
	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/Thermoquad/brickbeam/pkg/remote"
	"github.com/jonboulle/clockwork"
	"golang.org/x/term"
)

// PasswordEnv holds the WebSocket password
const PasswordEnv = "BRICKBEAM_PASSWORD"

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenBridgeConnection opens the serial or WebSocket link to an IR bridge
func OpenBridgeConnection(t config.Transmitter) (device.Connection, string, error) {
	switch t.Kind {
	case config.KindWebSocket:
		password := ""
		if t.WebSocketUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := device.OpenWebSocketConnection(t.WebSocketURL, t.WebSocketUsername, password, t.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", t.WebSocketURL), nil

	case config.KindSerial:
		conn, err := device.OpenSerialConnection(t.SerialPort, t.BaudRate)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", t.SerialPort, t.BaudRate), nil
	}

	return nil, "", fmt.Errorf("transmitter %q is not an IR bridge (use --port or --url)", t.Kind)
}

// OpenTransmitter opens the transmitter selected by the settings. The
// emulator prints pulses to emulatorOut, which may be nil.
func OpenTransmitter(t config.Transmitter, emulatorOut io.Writer) (device.Transmitter, string, error) {
	switch t.Kind {
	case config.KindEmulator:
		return device.NewEmulator(emulatorOut), "Emulator", nil

	case config.KindLirc:
		tx, err := device.OpenLirc(t.LircDevice, powerfunctions.CarrierFrequency, powerfunctions.DutyCycle)
		if err != nil {
			return nil, "", err
		}
		return tx, fmt.Sprintf("LIRC: %s", t.LircDevice), nil

	case config.KindSerial, config.KindWebSocket:
		conn, connInfo, err := OpenBridgeConnection(t)
		if err != nil {
			return nil, "", err
		}
		return device.NewBridge(conn, connInfo, device.WithAckTimeout(t.AckTimeout())), connInfo, nil

	case config.KindMQTT:
		tx, err := device.OpenMQTT(t.MQTTBroker, t.MQTTTopic, device.DefaultClientFactory)
		if err != nil {
			return nil, "", err
		}
		return tx, fmt.Sprintf("MQTT: %s %s", t.MQTTBroker, t.MQTTTopic), nil
	}

	return nil, "", fmt.Errorf("unknown transmitter %q", t.Kind)
}

// OpenBrickBeam opens the configured transmitter and wraps it in a BrickBeam
func OpenBrickBeam(emulatorOut io.Writer) (*remote.BrickBeam, string, error) {
	tx, txInfo, err := OpenTransmitter(settings.Transmitter, emulatorOut)
	if err != nil {
		return nil, "", err
	}

	var opts []remote.Option
	if settings.Repeat.Enabled {
		opts = append(opts, remote.WithRepeat(clockwork.NewRealClock()))
	}
	return remote.New(tx, opts...), txInfo, nil
}
