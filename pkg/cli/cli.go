// Reina Manager
// Copyright (c) 2026 The Reina Manager Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Manager.
//
// Reina Manager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Manager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Manager.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api/client"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/helpers"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

var ErrFlagValue = errors.New("invalid flag value")

type Flags struct {
	fs      *flag.FlagSet
	Launch  *string
	GameID  *int
	Args    *string
	LE      *bool
	Magpie  *bool
	Wait    *bool
	Stop    *int
	List    *bool
	History *int
	API     *string
	Version *bool
}

// SetupFlags defines all common CLI flags between platforms on the given
// flag set. Pass flag.CommandLine from a main package.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		Launch: fs.String(
			"launch",
			"",
			"launch executable through the running service",
		),
		GameID: fs.Int(
			"game-id",
			0,
			"game id to record the launched session under",
		),
		Args: fs.String(
			"args",
			"",
			"space separated arguments passed to the launched executable",
		),
		LE: fs.Bool(
			"le",
			false,
			"launch through the locale emulator",
		),
		Magpie: fs.Bool(
			"magpie",
			false,
			"start the upscaler alongside the game",
		),
		Wait: fs.Bool(
			"wait",
			false,
			"after launching, wait for the session to end and print it",
		),
		Stop: fs.Int(
			"stop",
			0,
			"stop the running session of a game id",
		),
		List: fs.Bool(
			"sessions",
			false,
			"print all running sessions",
		),
		History: fs.Int(
			"history",
			0,
			"print recorded play sessions of a game id",
		),
		API: fs.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre(pl platforms.Platform) {
	if !f.fs.Parsed() {
		_ = f.fs.Parse(os.Args[1:])
	}

	if *f.Version {
		printVersion(os.Stdout, pl)
		os.Exit(0)
	}
}

func printVersion(w io.Writer, pl platforms.Platform) {
	_, _ = fmt.Fprintf(w, "Reina Manager v%s (%s)\n", config.AppVersion, pl.ID())
}

func (f *Flags) launchParams() (string, error) {
	if *f.Launch == "" {
		return "", fmt.Errorf("%w: launch flag requires a value", ErrFlagValue)
	}

	if *f.GameID <= 0 {
		return "", fmt.Errorf("%w: launch flag requires a game id", ErrFlagValue)
	}

	params := models.LaunchParams{
		ExecutablePath: *f.Launch,
		Args:           strings.Fields(*f.Args),
		GameID:         *f.GameID,
	}
	if *f.LE || *f.Magpie {
		params.LaunchOptions = &models.LaunchOptions{
			LeLaunch: *f.LE,
			Magpie:   *f.Magpie,
		}
	}

	data, err := json.Marshal(&params)
	if err != nil {
		return "", fmt.Errorf("error encoding params: %w", err)
	}
	return string(data), nil
}

func gameIDParams(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error encoding params: %w", err)
	}
	return string(data), nil
}

// Run actions the flags that talk to a running service. It reports false
// when none of them were passed and the caller should carry on starting
// the service itself.
func (f *Flags) Run(ctx context.Context, c client.APIClient, out io.Writer) (bool, error) {
	switch {
	case f.isFlagPassed("launch"):
		params, err := f.launchParams()
		if err != nil {
			return true, err
		}
		resp, err := c.Call(ctx, models.MethodLaunch, params)
		if err != nil {
			return true, fmt.Errorf("error launching: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)

		if *f.Wait {
			ended, err := c.WaitNotification(ctx, -1, models.NotificationSessionEnded)
			if err != nil {
				return true, fmt.Errorf("error waiting for session end: %w", err)
			}
			_, _ = fmt.Fprintln(out, ended)
		}
		return true, nil
	case f.isFlagPassed("stop"):
		if *f.Stop <= 0 {
			return true, fmt.Errorf("%w: stop flag requires a game id", ErrFlagValue)
		}
		params, err := gameIDParams(&models.StopParams{GameID: *f.Stop})
		if err != nil {
			return true, err
		}
		resp, err := c.Call(ctx, models.MethodStop, params)
		if err != nil {
			return true, fmt.Errorf("error stopping: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return true, nil
	case *f.List:
		resp, err := c.Call(ctx, models.MethodSessions, "")
		if err != nil {
			return true, fmt.Errorf("error listing sessions: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return true, nil
	case f.isFlagPassed("history"):
		if *f.History <= 0 {
			return true, fmt.Errorf("%w: history flag requires a game id", ErrFlagValue)
		}
		params, err := gameIDParams(&models.HistoryParams{GameID: *f.History})
		if err != nil {
			return true, err
		}
		resp, err := c.Call(ctx, models.MethodSessionsHistory, params)
		if err != nil {
			return true, fmt.Errorf("error reading history: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return true, nil
	case f.isFlagPassed("api"):
		if *f.API == "" {
			return true, fmt.Errorf("%w: api flag requires a value", ErrFlagValue)
		}

		method, params, _ := strings.Cut(*f.API, ":")
		resp, err := c.Call(ctx, method, params)
		if err != nil {
			return true, fmt.Errorf("error calling API: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return true, nil
	}
	return false, nil
}

// Post actions all remaining common flags that require the environment to be
// set up. Logging is allowed. It exits the process when a flag was handled.
func (f *Flags) Post(cfg *config.Instance, _ platforms.Platform) {
	handled, err := f.Run(context.Background(), client.NewLocalAPIClient(cfg), os.Stdout)
	if !handled {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("cli command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// Setup initializes the user config and logging. Returns a user config object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
) *config.Instance {
	cfg, err := setup(pl, defaultConfig, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return cfg
}

//nolint:gocritic // config struct copied for immutability
func setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	// Ensure directories exist before logging initialization
	if err := helpers.EnsureDirectories(pl); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(pl, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg, nil
}
