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

var (
	callInFile string
	callAsJSON bool
)

var callCmd = &cobra.Command{
	Use:   "call <command>",
	Short: "Issue a single VICI command and print its response",
	Args:  cobra.ExactArgs(1),
	Example: "  # vicictl call list-sas\n" +
		"  # vicictl call initiate --in request.json --json",
	Run: func(cmd *cobra.Command, args []string) {
		req := vici.NewMessage()
		if callInFile != "" {
			b, err := os.ReadFile(callInFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", callInFile, err)
				os.Exit(1)
			}
			req, err = messageFromJSON(b)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", callInFile, err)
				os.Exit(1)
			}
		}

		c, err := vici.Connect(socketPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		resp, err := c.Call(args[0], req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "call failed: %v\n", err)
			os.Exit(1)
		}

		printMessage(resp)
	},
}

func printMessage(m *vici.Message) {
	if callAsJSON {
		b, err := messageToJSON(m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to render response: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}
	for _, name := range m.Names() {
		if v, ok := m.GetString(name); ok {
			fmt.Printf("%s = %s\n", name, v)
		} else {
			fmt.Printf("%s = <section/list>\n", name)
		}
	}
}

func init() {
	callCmd.Flags().StringVar(&callInFile, "in", "", "JSON file providing the request message body")
	callCmd.Flags().BoolVar(&callAsJSON, "json", false, "Render the response as JSON")
	rootCmd.AddCommand(callCmd)
}
