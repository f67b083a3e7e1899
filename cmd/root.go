// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Session flags
	simulate   bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "chamberctl",
	Short: "Environmental Test Chamber Controller",
	Long: `Chamberctl - A CLI tool for driving an environmental temperature test chamber.

The chamber is controlled over a point-to-point serial link using a
Modbus-style register protocol: setpoint and valve writes acknowledged by a
byte-exact echo, and temperature reads answered in a fixed 7-byte reply.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  Bridge:    --url ws://host/path [--username user]
  Simulated: --simulate (no hardware; reads report the last setpoint)

Defaults for the connection flags can be stored in a YAML config file
(--config, default ~/.chamberctl.yaml).

For bridge authentication, the password is read from the CHAMBERCTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.2.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Session flags
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Run without hardware")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.chamberctl.yaml)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
