// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// BrickBeam - LEGO Power Functions IR remote
//
// A CLI tool for encoding Power Functions commands and sending them through
// LIRC, an IR bridge, MQTT or an emulator.

package main

import (
	"os"

	"github.com/Thermoquad/brickbeam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
