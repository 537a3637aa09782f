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

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"

	"github.com/go-vici/vici"
	"github.com/go-vici/vici/confengine"
	"github.com/go-vici/vici/diagserver"
	"github.com/go-vici/vici/internal/rescue"
	"github.com/go-vici/vici/internal/sigs"
	"github.com/go-vici/vici/logger"
)

// eventSubscription is one entry of watch.yaml's "events" list. Vars is a
// free-form bag the operator can attach to an event name (e.g. a label
// used downstream) and is decoded on demand via mapstructure rather than
// given a fixed shape here.
type eventSubscription struct {
	Name string         `config:"name"`
	Vars map[string]any `config:"vars"`
}

type watchFileConfig struct {
	Socket       string              `config:"socket"`
	MaxFrameSize uint32              `config:"maxFrameSize"`
	Events       []eventSubscription `config:"events"`
}

// eventVars is the typed shape watch.yaml's free-form "vars" block is
// decoded into and kept per subscribed name; unrecognized keys are
// ignored. Printed events do not include it.
type eventVars struct {
	Label string `mapstructure:"label"`
}

var (
	watchConfigPath string
	watchAsJSON     bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Connect, subscribe to the configured events, and print them until terminated",
	Example: "  # vicictl watch --config watch.yaml",
	Run:     runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "watch.yaml", "Path to the watch configuration file")
	watchCmd.Flags().BoolVar(&watchAsJSON, "json", false, "Render each event as JSON")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	defer rescue.HandleCrash()

	cfg, events, err := loadWatchConfig(watchConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	diagserver.PublishBuildInfo()
	diag, err := diagserver.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure diagserver: %v\n", err)
		os.Exit(1)
	}
	if diag != nil {
		go func() {
			defer rescue.HandleCrash()
			if err := diag.ListenAndServe(); err != nil {
				logger.Errorf("diagserver stopped: %v", err)
			}
		}()
	}

	opts := []vici.Option{vici.WithLogger(watchLogger{})}
	var fileCfg watchFileConfig
	if err := cfg.Unpack(&fileCfg); err == nil && fileCfg.MaxFrameSize > 0 {
		opts = append(opts, vici.WithMaxFrameSize(fileCfg.MaxFrameSize))
	}

	c, err := vici.Connect(fileCfg.Socket, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}

	subscribed := registerAll(c, events)

	eventCh := make(chan watchEvent)
	go readEventsLoop(c, eventCh)

	reloadCount := 0
	for {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				logger.Errorf("event stream closed, client is broken")
				shutdown(c, subscribed)
				return
			}
			printWatchEvent(ev)

		case <-sigs.Reload():
			reloadCount++
			newCfg, _, err := loadWatchConfig(watchConfigPath)
			if err != nil {
				logger.Errorf("reload (count=%d) failed to load config: %v", reloadCount, err)
				continue
			}
			var newFileCfg watchFileConfig
			if err := newCfg.Unpack(&newFileCfg); err != nil {
				logger.Errorf("reload (count=%d) failed to unpack config: %v", reloadCount, err)
				continue
			}
			subscribed = reconcileSubscriptions(c, subscribed, newFileCfg.Events)
			logger.Infof("reload (count=%d) applied, %d event(s) subscribed", reloadCount, len(subscribed))

		case <-sigs.Terminate():
			shutdown(c, subscribed)
			return
		}
	}
}

type watchEvent struct {
	name string
	msg  *vici.Message
}

func readEventsLoop(c *vici.Client, out chan<- watchEvent) {
	defer rescue.HandleCrash()
	defer close(out)
	for {
		name, msg, err := c.ReadEvent()
		if err != nil {
			logger.Errorf("read event failed: %v", err)
			return
		}
		out <- watchEvent{name: name, msg: msg}
	}
}

func printWatchEvent(ev watchEvent) {
	if watchAsJSON {
		b, err := messageToJSON(ev.msg)
		if err != nil {
			logger.Errorf("failed to render event %q: %v", ev.name, err)
			return
		}
		fmt.Printf("%s: %s\n", ev.name, b)
		return
	}
	fmt.Printf("%s:\n", ev.name)
	for _, name := range ev.msg.Names() {
		if v, ok := ev.msg.GetString(name); ok {
			fmt.Printf("  %s = %s\n", name, v)
		}
	}
}

func loadWatchConfig(path string) (*confengine.Config, []eventSubscription, error) {
	cfg, err := confengine.LoadConfigPath(path)
	if err != nil {
		return nil, nil, err
	}
	var fileCfg watchFileConfig
	if err := cfg.Unpack(&fileCfg); err != nil {
		return nil, nil, err
	}
	return cfg, fileCfg.Events, nil
}

func registerAll(c *vici.Client, events []eventSubscription) map[string]eventVars {
	subscribed := make(map[string]eventVars, len(events))
	for _, ev := range events {
		if err := c.Register(ev.Name); err != nil {
			logger.Errorf("failed to register %q: %v", ev.Name, err)
			continue
		}
		var vars eventVars
		if err := mapstructure.Decode(ev.Vars, &vars); err != nil {
			logger.Warnf("failed to decode vars for %q: %v", ev.Name, err)
		}
		subscribed[ev.Name] = vars
	}
	return subscribed
}

// reconcileSubscriptions unregisters names dropped from the reloaded
// config and registers names newly added, leaving unchanged names alone.
func reconcileSubscriptions(c *vici.Client, current map[string]eventVars, wanted []eventSubscription) map[string]eventVars {
	wantedNames := make(map[string]eventSubscription, len(wanted))
	for _, ev := range wanted {
		wantedNames[ev.Name] = ev
	}

	for name := range current {
		if _, ok := wantedNames[name]; !ok {
			if err := c.Unregister(name); err != nil {
				logger.Errorf("failed to unregister %q: %v", name, err)
			}
			delete(current, name)
		}
	}

	for name, ev := range wantedNames {
		if _, ok := current[name]; ok {
			continue
		}
		if err := c.Register(name); err != nil {
			logger.Errorf("failed to register %q: %v", name, err)
			continue
		}
		var vars eventVars
		if err := mapstructure.Decode(ev.Vars, &vars); err != nil {
			logger.Warnf("failed to decode vars for %q: %v", name, err)
		}
		current[name] = vars
	}

	return current
}

func shutdown(c *vici.Client, subscribed map[string]eventVars) {
	var result *multierror.Error
	for name := range subscribed {
		if err := c.Unregister(name); err != nil && !vici.IsBroken(err) {
			result = multierror.Append(result, fmt.Errorf("unregister %q: %w", name, err))
		}
	}
	if err := c.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close: %w", err))
	}
	if result != nil {
		logger.Errorf("shutdown encountered errors: %v", result)
	}
}

// watchLogger adapts the package logger's package-level functions to
// vici.Logger without requiring a constructed logger.Logger value.
type watchLogger struct{}

func (watchLogger) Debugf(template string, args ...any) { logger.Debugf(template, args...) }
func (watchLogger) Infof(template string, args ...any)  { logger.Infof(template, args...) }
func (watchLogger) Warnf(template string, args ...any)  { logger.Warnf(template, args...) }
func (watchLogger) Errorf(template string, args ...any) { logger.Errorf(template, args...) }
