// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/chamberctl/pkg/chamber"
	"github.com/Thermoquad/chamberctl/pkg/mbrtu"
)

var (
	setNotify  bool
	setWait    bool
	setTimeout int
)

var setCmd = &cobra.Command{
	Use:   "set <temperature>",
	Short: "Set the chamber's target temperature",
	Long: fmt.Sprintf(`Set the chamber's target temperature in degrees Celsius.

The setpoint must lie within [%d, %d] °C. The register write is verified by
the chamber's byte-exact echo and retried up to three times on transient
failures.

With --notify the chamber is monitored in the background until it reaches
the setpoint (within %d °C) or the --timeout elapses; progress is logged
once per minute. --wait blocks the command until that outcome arrives.
A timeout of 0 waits forever.`, mbrtu.MinTemp, mbrtu.MaxTemp, chamber.Tolerance),
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setNotify, "notify", false, "Monitor until the setpoint is reached or times out")
	setCmd.Flags().BoolVar(&setWait, "wait", false, "Block until the monitored outcome arrives (implies --notify)")
	setCmd.Flags().IntVar(&setTimeout, "timeout", 0, "Monitoring timeout in minutes (0 = wait forever)")
}

func runSet(cmd *cobra.Command, args []string) error {
	temp, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid temperature %q: %v", args[0], err)
	}

	if setWait {
		setNotify = true
	}

	opts, connInfo, err := sessionOptions()
	if err != nil {
		return err
	}

	var outcome *chamber.ChanNotifier
	if setNotify {
		outcome = chamber.NewChanNotifier()
		opts.Notifier = outcome
	}

	c := chamber.New(opts)
	if err := c.Open(); err != nil {
		return err
	}
	defer c.Close()

	fmt.Printf("Connection: %s\n", connInfo)

	if err := c.SetTemp(temp, setNotify, setTimeout); err != nil {
		return err
	}
	fmt.Printf("Setpoint accepted: %d°C\n", temp)

	if !setWait {
		return nil
	}

	out := <-outcome.C
	if out.TimedOut {
		return fmt.Errorf("chamber timed out at %d°C before reaching %d°C", out.Actual, out.Desired)
	}
	fmt.Printf("Temperature reached: %d°C\n", out.Actual)
	return nil
}
