// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/config"
	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// Transmitter selection
	transmitterKind string
	lircDevice      string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// MQTT flags
	mqttBroker string
	mqttTopic  string

	channelNumber int
	noRepeat      bool

	// settings is the config file merged with the flags above
	settings config.Values
)

var rootCmd = &cobra.Command{
	Use:   "brickbeam",
	Short: "LEGO Power Functions IR remote",
	Long: `BrickBeam - drive LEGO Power Functions receivers over infrared.

Encodes Single Output, Combo PWM, Combo Direct and Extended commands and sends
them through a transmitter:

  emulator:  log the pulse durations (default)
  lirc:      --transmitter lirc [--device /dev/lirc0]
  serial:    --port /dev/ttyACM0 [--baud 115200]   (IR bridge over UART)
  websocket: --url ws://host/path [--username user] (IR bridge over WebSocket)
  mqtt:      --mqtt-broker tcp://host:1883 [--mqtt-topic cmnd/irblaster/IRsend]

Settings are read from a TOML file (--config, BRICKBEAM_CONFIG or the user
config directory); flags override the file.

For WebSocket authentication, the password is read from the BRICKBEAM_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $BRICKBEAM_CONFIG or user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.PersistentFlags().StringVar(&transmitterKind, "transmitter", "", "Transmitter: emulator, lirc, serial, websocket, mqtt")
	rootCmd.PersistentFlags().StringVar(&lircDevice, "device", "", "LIRC device (lirc only)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// MQTT flags
	rootCmd.PersistentFlags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker URL (tcp://, ssl://, ws://)")
	rootCmd.PersistentFlags().StringVar(&mqttTopic, "mqtt-topic", "", "MQTT topic for raw IR commands")

	rootCmd.PersistentFlags().IntVarP(&channelNumber, "channel", "c", 1, "Receiver channel (1-4)")
	rootCmd.PersistentFlags().BoolVar(&noRepeat, "no-repeat", false, "Send each frame once instead of five times")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings reads the config file and applies the flags that were set
func loadSettings(cmd *cobra.Command, args []string) error {
	setupLogging(zerolog.InfoLevel)

	vals, err := resolveSettings(afero.NewOsFs(), config.Path(configPath), cmd)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(vals.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	setupLogging(level)

	settings = vals
	log.Debug().Msgf("transmitter=%s repeat=%t", settings.Transmitter.Kind, settings.Repeat.Enabled)
	return nil
}

// resolveSettings loads path, applies the flags set on cmd and validates
// the result
func resolveSettings(fs afero.Fs, path string, cmd *cobra.Command) (config.Values, error) {
	vals, err := config.Load(fs, path)
	if err != nil {
		return config.Values{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		vals.LogLevel = logLevel
	}
	if flags.Changed("transmitter") {
		vals.Transmitter.Kind = transmitterKind
	}
	if flags.Changed("device") {
		vals.Transmitter.LircDevice = lircDevice
	}
	if flags.Changed("port") {
		vals.Transmitter.SerialPort = portName
	}
	if flags.Changed("baud") {
		vals.Transmitter.BaudRate = baudRate
	}
	if flags.Changed("url") {
		vals.Transmitter.WebSocketURL = wsURL
	}
	if flags.Changed("username") {
		vals.Transmitter.WebSocketUsername = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		vals.Transmitter.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("mqtt-broker") {
		vals.Transmitter.MQTTBroker = mqttBroker
	}
	if flags.Changed("mqtt-topic") {
		vals.Transmitter.MQTTTopic = mqttTopic
	}
	if flags.Changed("no-repeat") {
		vals.Repeat.Enabled = !noRepeat
	}

	// A connection flag without --transmitter picks the matching kind
	if !flags.Changed("transmitter") {
		switch {
		case flags.Changed("url"):
			vals.Transmitter.Kind = config.KindWebSocket
		case flags.Changed("port"):
			vals.Transmitter.Kind = config.KindSerial
		case flags.Changed("mqtt-broker"):
			vals.Transmitter.Kind = config.KindMQTT
		case flags.Changed("device"):
			vals.Transmitter.Kind = config.KindLirc
		}
	}

	if err := config.Validate(vals); err != nil {
		return config.Values{}, err
	}
	return vals, nil
}

func setupLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// selectedChannel converts --channel to a Channel
func selectedChannel() (powerfunctions.Channel, error) {
	return powerfunctions.ChannelFromNumber(channelNumber)
}
