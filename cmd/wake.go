// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/chamberctl/pkg/chamber"
)

var (
	wakeTimeout int
	wakeList    bool
)

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Wait for the chamber to become responsive",
	Long: `Probe the chamber with temperature reads until it answers.

The chamber controller can take several seconds after power-on before it
starts answering commands. This command polls at a fixed cadence, swallowing
failures, and exits successfully on the first answer. If the chamber stays
silent past the timeout, the command fails with guidance to check power and
the serial connection.

With --list, available serial ports are printed instead.`,
	RunE: runWake,
}

func init() {
	rootCmd.AddCommand(wakeCmd)
	wakeCmd.Flags().IntVar(&wakeTimeout, "timeout", 0, "Seconds to keep probing (0 = config default)")
	wakeCmd.Flags().BoolVar(&wakeList, "list", false, "List available serial ports and exit")
}

func runWake(cmd *cobra.Command, args []string) error {
	if wakeList {
		ports, err := chamber.ListPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	timeout := wakeTimeout
	if timeout == 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		timeout = cfg.Wake.TimeoutSeconds
	}

	c, connInfo, err := openChamber()
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Waiting up to %ds for the chamber to answer...\n", timeout)

	if err := c.PingUntilAwake(time.Duration(timeout) * time.Second); err != nil {
		return err
	}

	fmt.Println("Chamber is awake")
	return nil
}
