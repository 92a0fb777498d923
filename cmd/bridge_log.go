// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/irbridge"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var bridgeLogCmd = &cobra.Command{
	Use:   "bridge_log",
	Short: "Display packets from the IR bridge in human-readable format",
	Long: `Continuously decode and display irbridge packets as they arrive, without
sending anything. Each packet is shown with timestamp, message type and decoded
payload; anomalies found by the validator are printed below it.

Useful next to another brickbeam process, or to watch a bridge that announces
itself on startup. Supports both serial and WebSocket connections.`,
	RunE: runBridgeLog,
}

func init() {
	rootCmd.AddCommand(bridgeLogCmd)
}

func runBridgeLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenBridgeConnection(settings.Transmitter)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("BrickBeam - Bridge Packet Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	return logPackets(conn, cmd.OutOrStdout())
}

// logPackets prints every packet read from r until it fails
func logPackets(r io.Reader, w io.Writer) error {
	decoder := irbridge.NewDecoder()
	buf := make([]byte, 256)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			packets, errs := decoder.Decode(buf[:n])
			for _, decodeErr := range errs {
				fmt.Fprintf(w, "[ERROR] %v\n", decodeErr)
			}
			for _, p := range packets {
				fmt.Fprint(w, irbridge.FormatPacket(p))
				for _, anomaly := range irbridge.ValidatePacket(p) {
					fmt.Fprintf(w, "  [ANOMALY] %s\n", anomaly.Message)
				}
			}
		}
		if err != nil {
			if errors.Is(err, device.ErrConnectionClosed) || errors.Is(err, io.EOF) {
				log.Info().Msg("Connection closed")
				return nil
			}
			return fmt.Errorf("failed to read from bridge: %w", err)
		}
	}
}
