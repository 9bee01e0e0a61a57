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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotblauer/catspeak/app"
	"github.com/rotblauer/catspeak/common"
	"github.com/rotblauer/catspeak/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catspeak",
	Short: "Speak out loud when your speed crosses a threshold",
	Long: `catspeak reads GPS fixes, shows the current speed in km/h,
and speaks an alert each time the speed rises through one of the
configured thresholds.

Settings (sample interval, thresholds, spoken template) are persisted
in the store and edited with 'catspeak settings' or through the web daemon.

Configuration is read from flags, CATSPEAK_* environment variables,
and ~/.catspeak/config.yaml, in that order of precedence.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	store := params.DefaultStoreConfig()
	sp := params.DefaultSpeechConfig()
	tr := params.DefaultTrackerConfig()

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is ~/.catspeak/config.yaml)")
	pFlags.String("log-level", "info", "log level: debug, info, warn, error")
	pFlags.String("datadir", params.DefaultDatadirRoot, "data directory")
	pFlags.String("store", store.Backend, "settings store backend: bolt, redis, memory")
	pFlags.String("store-key", store.Key, "settings record key")
	pFlags.String("redis.addr", store.Redis.Address, "redis address, for --store=redis")
	pFlags.String("redis.password", "", "redis password")
	pFlags.Int("redis.db", 0, "redis database")
	pFlags.String("speech", sp.Backend, "speech backend: exec, log, none")
	pFlags.String("language", sp.Language, "alert language (BCP 47 tag)")
	pFlags.StringSlice("speech-cmd", sp.Command, "TTS command line; {text} and {lang} are substituted")
	pFlags.Duration("speech-timeout", sp.Timeout, "TTS command timeout")
	pFlags.Bool("permission", tr.PermissionGranted, "grant location permission")

	if err := viper.BindPFlags(pFlags); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(params.DatadirRoot)
		viper.SetConfigName(params.ConfigName)
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix(params.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("Using config file", "file", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		slog.Warn("Failed to read config file", "error", err)
	}
}

func setDefaultSlog(cmd *cobra.Command, args []string) {
	level, err := common.ParseSlogLevel(viper.GetString("log-level"))
	if err != nil {
		slog.Warn("Invalid log level, using info", "error", err)
	}
	slog.SetLogLoggerLevel(level)
}

// appConfig builds the component configuration from flags, env and config file.
func appConfig() (*app.Config, error) {
	config := app.DefaultConfig()

	datadir, err := params.ExpandDatadir(viper.GetString("datadir"))
	if err != nil {
		return nil, fmt.Errorf("datadir: %w", err)
	}
	config.Store.DataDir = filepath.Clean(datadir)
	config.Store.Backend = viper.GetString("store")
	config.Store.Key = viper.GetString("store-key")
	config.Store.Redis = params.RedisConfig{
		Address:  viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	}

	config.Speech.Backend = viper.GetString("speech")
	config.Speech.Language = viper.GetString("language")
	if argv := viper.GetStringSlice("speech-cmd"); len(argv) > 0 {
		config.Speech.Command = argv
	}
	config.Speech.Timeout = viper.GetDuration("speech-timeout")

	config.Tracker.PermissionGranted = viper.GetBool("permission")
	return config, nil
}

// openApp builds the app and returns it with a context canceled on interrupt.
func openApp(cmd *cobra.Command, replayPath string, replayPace time.Duration) (*app.App, context.Context, context.CancelFunc, error) {
	config, err := appConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	config.Tracker.ReplayPath = replayPath
	config.Tracker.ReplayPace = replayPace

	ctx, cancel := common.InterruptedContext(cmd.Context())
	a, err := app.New(ctx, config)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return a, ctx, cancel, nil
}
