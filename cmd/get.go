// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read the chamber's current temperature",
	Long: `Read and print the chamber's current temperature in degrees Celsius.

In simulated mode this reports the last accepted setpoint instead of a
measured value.`,
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	c, _, err := openChamber()
	if err != nil {
		return err
	}
	defer c.Close()

	temp, err := c.GetTemp()
	if err != nil {
		return err
	}

	fmt.Printf("%d°C\n", temp)
	return nil
}
