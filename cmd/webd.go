/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/rotblauer/catspeak/daemon/webd"
	"github.com/rotblauer/catspeak/params"
	"github.com/spf13/cobra"
)

var optHTTPAddr string
var optHTTPNetwork string
var optHTTPToken string

// webdCmd represents the webd command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the web daemon",
	Long: `Serves the speed display and settings editor over HTTP and a websocket.

Fixes are POSTed to /populate (or replayed with --replay).
Browser clients connected to /socat receive speed updates and
"speak" messages for their own speechSynthesis.

Endpoints:

  GET  /ping, /status, /speed, /settings, /settings/form
  PUT  /settings       full JSON settings record
  POST /settings/form  minutes, thresholds, template as raw strings
  POST /populate       fixes
  GET  /socat          websocket
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		a, ctx, cancel, err := openApp(cmd, optReplayPath, optReplayPace)
		if err != nil {
			slog.Error("Failed to start", "error", err)
			os.Exit(1)
		}
		defer cancel()
		defer a.Close()

		current, err := a.Start(ctx)
		if err != nil {
			slog.Error("Failed to start tracking", "error", err)
		}

		feed := a.Feed
		if a.Replay != nil {
			feed = nil
		}
		config := &params.WebDaemonConfig{
			ListenerConfig: params.ListenerConfig{
				Network: optHTTPNetwork,
				Address: optHTTPAddr,
			},
			Token: optHTTPToken,
		}
		server, err := webd.NewWebDaemon(config, webd.Deps{
			Tracker:    a.Tracker,
			Store:      a.Store,
			Feed:       feed,
			Dispatcher: a.Dispatcher,
			Meters:     a.Meters,
		}, current)
		if err != nil {
			slog.Error("Failed to create web daemon", "error", err)
			return
		}
		if err := server.Run(ctx); err != nil {
			slog.Error("Web daemon failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.StringVar(&optHTTPAddr, "address", defaults.Address, "HTTP address to listen on")
	pFlags.StringVar(&optHTTPNetwork, "network", defaults.Network, "network to listen on: tcp, tcp4, tcp6, unix")
	pFlags.StringVar(&optHTTPToken, "token", os.Getenv("CATSPEAK_TOKEN"), "token required for settings edits and populate")
	pFlags.StringVar(&optReplayPath, "replay", "", "replay fixes from a recording instead of /populate")
	pFlags.DurationVar(&optReplayPace, "replay.pace", 0, "time between replayed fixes (default: the sample interval)")
}
