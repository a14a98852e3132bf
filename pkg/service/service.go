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

// Package service wires the platform, the session monitor and the API into
// the running daemon.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api"
	"github.com/wind-mask/ReinaManager/pkg/api/middleware"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/api/models/requests"
	"github.com/wind-mask/ReinaManager/pkg/api/notifications"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/database/sessiondb"
	"github.com/wind-mask/ReinaManager/pkg/helpers"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
	"github.com/wind-mask/ReinaManager/pkg/service/broker"
	"golang.org/x/sync/errgroup"
)

const (
	notificationQueueSize = 256
	subscriberBufferSize  = 100
	stopAllTimeout        = 10 * time.Second
)

// Options override parts of the service for tests.
type Options struct {
	Clock clockwork.Clock
	// ServeAPI replaces api.Start.
	ServeAPI func(ctx context.Context, svc api.Services, ns <-chan models.Notification) error
}

// Service is a running daemon.
type Service struct {
	pl             platforms.Platform
	orch           *launcher.Orchestrator
	db             *sessiondb.SessionDB
	cancel         context.CancelFunc
	cancelSessions context.CancelFunc
	done           chan struct{}
	err            error
}

// Start brings up the service. The returned stop function ends every
// session, shuts the API down and releases the platform.
func Start(pl platforms.Platform, cfg *config.Instance) (stop func() error, done <-chan struct{}, err error) {
	svc, err := New(context.Background(), pl, cfg, Options{})
	if err != nil {
		return nil, nil, err
	}
	return svc.Stop, svc.Done(), nil
}

// New starts a service rooted in ctx.
//
//nolint:gocritic // options struct copied once at startup
func New(ctx context.Context, pl platforms.Platform, cfg *config.Instance, opts Options) (*Service, error) {
	log.Info().Msgf("version: %s", config.AppVersion)
	log.Info().Str("platform", pl.ID()).Msg("starting service")

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ServeAPI == nil {
		opts.ServeAPI = api.Start
	}

	if err := helpers.EnsureDirectories(pl); err != nil {
		return nil, fmt.Errorf("failed to set up directories: %w", err)
	}

	// sessions outlive the API context so shutdown can still terminate
	// their games
	sessCtx, cancelSessions := context.WithCancel(context.WithoutCancel(ctx))
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		pl:             pl,
		cancel:         cancel,
		cancelSessions: cancelSessions,
		done:           make(chan struct{}),
	}

	var recorder monitor.Recorder
	var history requests.History
	if cfg.HistoryEnabled() {
		log.Info().Msg("opening session database")
		db, err := sessiondb.Open(ctx, helpers.DataDir(pl))
		if err != nil {
			cancel()
			cancelSessions()
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		s.db = db
		recorder = db
		history = db
	}

	ns := make(chan models.Notification, notificationQueueSize)
	notifBroker := broker.NewBroker(ns)
	apiNotifications, _ := notifBroker.Subscribe(subscriberBufferSize)
	logNotifications, _ := notifBroker.Subscribe(subscriberBufferSize)

	backend := pl.Backend()
	s.orch = launcher.NewOrchestrator(sessCtx, launcher.Config{
		Spawner:        pl.Spawner(cfg),
		Backend:        backend,
		Emitter:        notifications.NewEmitter(ns),
		Recorder:       recorder,
		Paths:          cfg,
		Companion:      pl.Companion(cfg, opts.Clock),
		Registry:       monitor.NewRegistry(backend),
		Clock:          opts.Clock,
		Grace:          cfg.StartupGrace(pl.StartupGrace()),
		ForegroundPoll: cfg.ForegroundPoll(),
		CompanionDelay: cfg.CompanionDelay(),
		ReportInterval: cfg.ReportInterval(),
		Capabilities:   pl.Capabilities(),
	})

	apiServices := api.Services{
		Platform: pl,
		Config:   cfg,
		Sessions: s.orch,
		History:  history,
		Limiter:  middleware.NewIPRateLimiter(opts.Clock),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notifBroker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logSessionEvents(logNotifications)
		return nil
	})
	g.Go(func() error {
		if err := cfg.Watch(gctx, func() { setLogLevel(cfg) }); err != nil {
			log.Warn().Err(err).Msg("config changes will not be picked up")
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.APIListen()).Msg("starting API service")
		if err := opts.ServeAPI(gctx, apiServices, apiNotifications); err != nil {
			return fmt.Errorf("API service stopped: %w", err)
		}
		return nil
	})

	go func() {
		err := g.Wait()
		if err != nil {
			log.Error().Err(err).Msg("service stopped with error")
		}
		s.shutdown(err)
	}()

	log.Info().Msg("service started")
	return s, nil
}

func setLogLevel(cfg *config.Instance) {
	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// shutdown ends sessions after the API and broker have stopped, so no new
// launches race the cleanup.
func (s *Service) shutdown(runErr error) {
	defer close(s.done)
	s.cancel()

	log.Info().Msg("stopping all sessions")
	stopCtx, cancel := context.WithTimeout(context.Background(), stopAllTimeout)
	defer cancel()
	s.orch.Registry().StopAll(stopCtx)
	s.cancelSessions()
	s.orch.Wait()

	errs := []error{runErr}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if err := s.pl.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop platform: %w", err))
	}
	s.err = errors.Join(errs...)
	log.Info().Msg("service cleanup completed")
}

// Orchestrator returns the launch orchestrator.
func (s *Service) Orchestrator() *launcher.Orchestrator {
	return s.orch
}

// Done is closed once the service has fully stopped.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Stop shuts the service down and waits for cleanup to finish.
func (s *Service) Stop() error {
	s.cancel()
	<-s.done
	return s.err
}
