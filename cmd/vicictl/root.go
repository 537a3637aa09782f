// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command vicictl is a worked example and integration-test harness for
// package vici: a thin cobra CLI that dials a charon daemon's VICI socket
// and issues calls, manages event subscriptions, or watches a configured
// set of events until terminated.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-vici/vici/common"
)

var rootCmd = &cobra.Command{
	Use:   "vicictl",
	Short: "A command-line client for the strongSwan VICI protocol",
}

var socketPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Path to the VICI control socket (defaults to /var/run/charon.vici)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print vicictl's build information",
	Run: func(cmd *cobra.Command, args []string) {
		bi := common.GetBuildInfo()
		fmt.Printf("%s %s (%s) built at %s\n", common.App, bi.Version, bi.GitHash, bi.Time)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
