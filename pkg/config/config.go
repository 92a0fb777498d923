// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the brickbeam TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// CfgEnv overrides the config file path
	CfgEnv = "BRICKBEAM_CONFIG"
	// CfgFile is the file name inside the user config directory
	CfgFile = "config.toml"
)

// Transmitter kinds
const (
	KindEmulator  = "emulator"
	KindLirc      = "lirc"
	KindSerial    = "serial"
	KindWebSocket = "websocket"
	KindMQTT      = "mqtt"
)

// Values is the full configuration file
type Values struct {
	LogLevel    string      `toml:"log_level" validate:"oneof=debug info warn error"`
	Transmitter Transmitter `toml:"transmitter"`
	Repeat      Repeat      `toml:"repeat"`
}

// Transmitter selects and configures the pulse transmitter
type Transmitter struct {
	Kind              string `toml:"kind" validate:"oneof=emulator lirc serial websocket mqtt"`
	LircDevice        string `toml:"lirc_device" validate:"required_if=Kind lirc"`
	SerialPort        string `toml:"serial_port" validate:"required_if=Kind serial"`
	BaudRate          int    `toml:"baud_rate" validate:"gt=0"`
	WebSocketURL      string `toml:"websocket_url" validate:"required_if=Kind websocket"`
	WebSocketUsername string `toml:"websocket_username"`
	NoSSLVerify       bool   `toml:"no_ssl_verify"`
	MQTTBroker        string `toml:"mqtt_broker" validate:"required_if=Kind mqtt"`
	MQTTTopic         string `toml:"mqtt_topic" validate:"required"`
	AckTimeoutMs      int    `toml:"ack_timeout_ms" validate:"gt=0,lte=60000"`
}

// AckTimeout returns the bridge reply timeout
func (t Transmitter) AckTimeout() time.Duration {
	return time.Duration(t.AckTimeoutMs) * time.Millisecond
}

// Repeat configures frame retransmission
type Repeat struct {
	Enabled bool `toml:"enabled"`
}

// Defaults returns the configuration used when no file exists
func Defaults() Values {
	return Values{
		LogLevel: "info",
		Transmitter: Transmitter{
			Kind:         KindEmulator,
			LircDevice:   "/dev/lirc0",
			BaudRate:     115200,
			MQTTTopic:    "cmnd/irblaster/IRsend",
			AckTimeoutMs: 500,
		},
		Repeat: Repeat{Enabled: true},
	}
}

// Path returns the config file to load: flagPath if set, then CfgEnv, then
// the user config directory
func Path(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv(CfgEnv); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Debug().Err(err).Msg("no user config directory")
		return CfgFile
	}
	return filepath.Join(dir, "brickbeam", CfgFile)
}

// Load reads path from fs on top of the defaults. A missing file yields the
// defaults. The result is not validated: callers apply their overrides first
// and then call Validate.
func Load(fs afero.Fs, path string) (Values, error) {
	vals := Defaults()

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Msgf("config file %s not found, using defaults", path)
		return vals, nil
	}
	if err != nil {
		return Values{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	log.Debug().Msgf("loaded config from %s", path)
	return vals, nil
}

// Save writes vals to path on fs, creating the directory
func Save(fs afero.Fs, path string, vals Values) error {
	if err := Validate(vals); err != nil {
		return err
	}

	data, err := toml.Marshal(&vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tag constraints of vals
func Validate(vals Values) error {
	err := validate.Struct(vals)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Values.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
