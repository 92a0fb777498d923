// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/device"
	"github.com/Thermoquad/brickbeam/pkg/irbridge"
	"github.com/spf13/cobra"
)

var (
	bridgePingTimeout int
	bridgePingCount   int
)

var bridgePingCmd = &cobra.Command{
	Use:   "bridge_ping",
	Short: "Test the IR bridge by sending PING_REQUEST",
	Long: `Send PING_REQUEST packets to the IR bridge and wait for PING_RESPONSE.

Works over serial (--port) and WebSocket (--url). The bridge answers with its
uptime. This is useful for verifying:
  - the connection is established
  - HTTP Basic authentication works (WebSocket)
  - the bridge firmware is processing packets
  - bidirectional packet flow works

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runBridgePing,
}

func init() {
	rootCmd.AddCommand(bridgePingCmd)
	bridgePingCmd.Flags().IntVar(&bridgePingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	bridgePingCmd.Flags().IntVar(&bridgePingCount, "count", 3, "Number of pings to send")
}

func runBridgePing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenBridgeConnection(settings.Transmitter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	timeout := time.Duration(bridgePingTimeout) * time.Second
	bridge := device.NewBridge(conn, connInfo, device.WithAckTimeout(timeout))
	defer bridge.Close()

	fmt.Printf("BrickBeam - Bridge Ping Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", bridgePingTimeout)
	fmt.Printf("Count: %d pings\n\n", bridgePingCount)

	successCount := 0
	failCount := 0

	for i := 1; i <= bridgePingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, bridgePingCount)

		uptime, rtt, err := bridge.Ping()
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		} else {
			fmt.Printf("PONG from bridge, uptime=%s, rtt=%v\n",
				irbridge.FormatUptime(uint64(uptime.Milliseconds())), rtt.Round(time.Millisecond))
			successCount++
		}

		if i < bridgePingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% packet loss\n",
		bridgePingCount, successCount, float64(failCount)/float64(bridgePingCount)*100)

	if failCount > 0 {
		bridge.Close()
		os.Exit(1)
	}
	return nil
}
