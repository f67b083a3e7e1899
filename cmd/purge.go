// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge {open|close}",
	Short: "Actuate the chamber's purge valve",
	Long: `Open or close the chamber's dry-air purge valve.

The valve write is a single attempt: a failed exchange is reported
immediately rather than retried, so the operator knows the valve state is
in doubt.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"open", "close"},
	RunE:      runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	c, _, err := openChamber()
	if err != nil {
		return err
	}
	defer c.Close()

	switch args[0] {
	case "open":
		if err := c.OpenPurgeValve(); err != nil {
			return err
		}
		fmt.Println("Purge valve open")
	case "close":
		if err := c.ClosePurgeValve(); err != nil {
			return err
		}
		fmt.Println("Purge valve closed")
	default:
		return fmt.Errorf("unknown valve state %q (use open or close)", args[0])
	}
	return nil
}
