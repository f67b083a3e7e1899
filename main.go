// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Chamberctl - Environmental Test Chamber Controller
//
// A CLI tool for driving an environmental temperature test chamber over a
// serial link using its Modbus-style register protocol.

package main

import (
	"os"

	"github.com/Thermoquad/chamberctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
