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
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rotblauer/catspeak/app"
	"github.com/rotblauer/catspeak/locate"
	"github.com/rotblauer/catspeak/types"
	"github.com/rotblauer/catspeak/types/fix"
	"github.com/spf13/cobra"
)

var optReplayPath string
var optReplayPace time.Duration

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track speed from stdin or a recording and speak alerts",
	Long: `Reads fixes from stdin (or --replay), and speaks an alert each time
the speed rises through a configured threshold.

Fixes may be GeoJSON Features, FeatureCollections, location objects
({"coords":{"speed":..,"latitude":..,"longitude":..},"timestamp":..}),
or legacy trackpoints, as NDJSON or a JSON array.

Stdin fixes are sampled at the configured interval: at most one fix per
interval is used, the latest one. A recording given with --replay plays
one fix per interval, or per --replay.pace if set.

Examples:

  catspeak run --replay ride.ndjson --replay.pace 1s --speech log
  gpspipe -w | jq -c 'select(.class=="TPV") | {coords:{speed,latitude:.lat,longitude:.lon}}' | catspeak run
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

		s, err := a.Start(ctx)
		if err != nil {
			slog.Error("Failed to start tracking", "error", err)
			return
		}
		slog.Info("Running", "interval", s.Interval(), "thresholds", s.VoiceThresholds,
			"template", s.VoiceTemplate, "state", a.Tracker.State())
		if msg := a.Tracker.Err(); msg != "" {
			slog.Warn(msg)
			return
		}

		var input io.Reader
		if a.Replay == nil {
			input = os.Stdin
		}
		track(ctx, a, input)
	},
}

// track feeds fixes from input, if any, and waits until the tracker has
// handled them all, the replay ends, or ctx is canceled.
func track(ctx context.Context, a *app.App, input io.Reader) {
	done := a.Tracker.Done()
	if input != nil {
		go func() {
			defer a.Feed.Close()
			n, err := feedFixes(input, a.Feed)
			if err != nil {
				slog.Error("Failed to read fixes", "error", err)
			}
			slog.Info("Input done", "fixes", n)
		}()
	}

	select {
	case <-ctx.Done():
		slog.Warn("Interrupted")
	case <-done:
		slog.Info("Tracking done")
	}
}

// feedFixes decodes fixes from r and sends each to feed until EOF.
// Messages that are not fixes are logged and skipped.
func feedFixes(r io.Reader, feed *locate.Feed) (int, error) {
	n := 0
	err := types.ScanJSONMessages(r, func(message json.RawMessage) error {
		err := types.DecodingJSONFixObject(message, func(f fix.Fix) error {
			feed.Send(f)
			n++
			return nil
		})
		if err != nil {
			slog.Warn("Skipping message", "error", err)
		}
		return nil
	})
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringVar(&optReplayPath, "replay", "", "replay fixes from a recording instead of stdin")
	flags.DurationVar(&optReplayPace, "replay.pace", 0, "time between replayed fixes (default: the sample interval)")
}
