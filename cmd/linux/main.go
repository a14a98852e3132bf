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

//go:build linux

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/cli"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/helpers"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/platforms/linux"
	"github.com/wind-mask/ReinaManager/pkg/service"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	daemonMode := flag.Bool(
		"daemon",
		false,
		"run service in foreground, logging to stderr",
	)
	flag.Parse()

	pl := linux.NewPlatform(&command.RealExecutor{})
	flags.Pre(pl)

	if os.Geteuid() == 0 {
		return errors.New("reina manager cannot be run as root")
	}

	logWriters := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	if *daemonMode {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(
		pl,
		config.BaseDefaults,
		logWriters,
	)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg, pl)

	if helpers.IsServiceRunning(cfg) {
		_ = pl.Stop()
		return errors.New("service is already running")
	}

	stopSvc, done, err := service.Start(pl, cfg)
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}

	defer func() {
		if err := stopSvc(); err != nil {
			log.Error().Msgf("error stopping service: %s", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	log.Info().Str("listen", cfg.APIListen()).Msg("service started")

	select {
	case <-sigs:
	case <-done:
	}

	return nil
}
