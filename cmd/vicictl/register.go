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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-vici/vici"
)

var registerCmd = &cobra.Command{
	Use:     "register <event>",
	Short:   "Subscribe to an event and print confirmation",
	Args:    cobra.ExactArgs(1),
	Example: "  # vicictl register ike-updown",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := vici.Connect(socketPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		if err := c.Register(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("registered %q\n", args[0])
	},
}

var unregisterCmd = &cobra.Command{
	Use:     "unregister <event>",
	Short:   "Unsubscribe from an event and print confirmation",
	Args:    cobra.ExactArgs(1),
	Example: "  # vicictl unregister ike-updown",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := vici.Connect(socketPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		if err := c.Unregister(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "unregister failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("unregistered %q\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(unregisterCmd)
}
