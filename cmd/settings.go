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
	"fmt"
	"log/slog"
	"os"

	"github.com/rotblauer/catspeak/state"
	"github.com/rotblauer/catspeak/types/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var optSettingsMinutes string
var optSettingsThresholds string
var optSettingsTemplate string

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or edit the persisted settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings in effect",
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		store, closeStore, err := openSettingsStore(cmd)
		if err != nil {
			slog.Error("Failed to open store", "error", err)
			os.Exit(1)
		}
		defer closeStore()

		s := store.Load(cmd.Context())
		minutes, thresholds, template := settings.FormatInput(s)
		out := map[string]any{
			"settings":   s,
			"minutes":    minutes,
			"thresholds": thresholds,
			"template":   template,
			"preview":    settings.Preview(template),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Validate and save new settings",
	Long: `Validates the three settings inputs and saves them.

  --minutes     sample interval in minutes, fractions allowed (e.g. 0.5)
  --thresholds  comma separated km/h thresholds (e.g. "50, 60, 90, 120")
  --template    spoken text; must contain {speed}

Unset flags keep their current values.

Example:

  catspeak settings set --minutes 1 --thresholds "40,80" --template "Tốc độ {speed}"
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		store, closeStore, err := openSettingsStore(cmd)
		if err != nil {
			slog.Error("Failed to open store", "error", err)
			os.Exit(1)
		}
		defer closeStore()

		minutes, thresholds, template := settings.FormatInput(store.Load(cmd.Context()))
		// Visit walks only the flags that were set.
		cmd.Flags().Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "minutes":
				minutes = optSettingsMinutes
			case "thresholds":
				thresholds = optSettingsThresholds
			case "template":
				template = optSettingsTemplate
			}
		})
		next, err := settings.ParseInput(minutes, thresholds, template)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Invalid settings:", err)
			os.Exit(2)
		}
		if err := saveSettings(cmd.Context(), store, next); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}
		slog.Info("Saved settings", "interval", next.Interval(), "thresholds", next.VoiceThresholds,
			"preview", settings.Preview(next.VoiceTemplate))
	},
}

var errSettingsNotSaved = errors.New("settings were not saved")

// saveSettings saves next and reads it back. The store only logs write
// failures, so a record that does not read back is reported here.
func saveSettings(ctx context.Context, store *state.SettingsStore, next settings.AppSettings) error {
	store.Save(ctx, next)
	if got := store.Load(ctx); !got.Equal(next) {
		return fmt.Errorf("%w: store holds %+v", errSettingsNotSaved, got)
	}
	return nil
}

func openSettingsStore(cmd *cobra.Command) (*state.SettingsStore, func(), error) {
	config, err := appConfig()
	if err != nil {
		return nil, nil, err
	}
	kv, closer, err := state.Open(cmd.Context(), config.Store)
	if err != nil {
		return nil, nil, err
	}
	return state.NewSettingsStore(kv, config.Store.Key), func() { _ = closer.Close() }, nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	flags := settingsSetCmd.Flags()
	flags.StringVar(&optSettingsMinutes, "minutes", "", "sample interval in minutes")
	flags.StringVar(&optSettingsThresholds, "thresholds", "", "comma separated km/h thresholds")
	flags.StringVar(&optSettingsTemplate, "template", "", "spoken text; must contain {speed}")
}
