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

package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

// Config wires an Orchestrator.
type Config struct {
	Spawner   Spawner
	Backend   monitor.Backend
	Emitter   monitor.Emitter
	Recorder  monitor.Recorder
	Paths     PathProvider
	Companion Companion
	Registry  *monitor.Registry
	Clock     clockwork.Clock
	// Grace is the session startup wait.
	Grace          time.Duration
	ForegroundPoll time.Duration
	CompanionDelay time.Duration
	ReportInterval int64
	Capabilities   Capabilities
}

// Orchestrator launches games and starts their monitoring sessions. All
// sessions are rooted in the context given to NewOrchestrator.
type Orchestrator struct {
	ctx context.Context //nolint:containedctx // service lifetime
	cfg Config
	wg  sync.WaitGroup
}

//nolint:gocritic // config struct copied for immutability
func NewOrchestrator(ctx context.Context, cfg Config) *Orchestrator {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Orchestrator{ctx: ctx, cfg: cfg}
}

// Registry returns the session registry.
func (o *Orchestrator) Registry() *monitor.Registry {
	return o.cfg.Registry
}

// Active lists the running sessions.
func (o *Orchestrator) Active() []monitor.SessionInfo {
	return o.cfg.Registry.Active()
}

// Launch validates req, starts the game and begins monitoring it. Missing
// tool configuration is reported before anything is spawned.
func (o *Orchestrator) Launch(ctx context.Context, req Request) (Result, error) {
	spec, err := o.buildSpec(req)
	if err != nil {
		return Result{Message: err.Error()}, err
	}

	if o.cfg.Registry.Running(req.GameID) {
		err := fmt.Errorf("%w: %d", monitor.ErrSessionExists, req.GameID)
		return Result{Message: err.Error()}, err
	}

	spawned, err := o.cfg.Spawner.Spawn(ctx, spec)
	if err != nil && o.cfg.Spawner.NeedsElevation(err) {
		log.Info().Err(err).Str("path", spec.ExecutablePath).Msg("launch requires elevation, retrying")
		spawned, err = o.cfg.Spawner.SpawnElevated(ctx, spec)
	}
	if err != nil {
		err = fmt.Errorf("failed to launch %s (working directory %s): %w", spec.ExecutablePath, spec.WorkDir, err)
		log.Error().Err(err).Int("gameID", req.GameID).Msg("launch failed")
		return Result{Message: err.Error()}, err
	}

	target := monitor.Target{
		GameDir:    spec.WorkDir,
		Executable: spec.ExecutablePath,
		Scope:      spawned.Scope,
		GameID:     req.GameID,
		InitialPID: spawned.PID,
	}
	session := monitor.NewSession(target, monitor.SessionOptions{
		Backend:        o.cfg.Backend,
		Emitter:        o.cfg.Emitter,
		Recorder:       o.cfg.Recorder,
		Registry:       o.cfg.Registry,
		Clock:          o.cfg.Clock,
		Grace:          o.cfg.Grace,
		ForegroundPoll: o.cfg.ForegroundPoll,
		ReportInterval: o.cfg.ReportInterval,
	})
	if err := o.cfg.Registry.Register(session); err != nil {
		// the game is running but another launch won the registry
		log.Warn().Err(err).Int("gameID", req.GameID).Int("pid", spawned.PID).Msg("launched game is not monitored")
		return Result{Message: err.Error(), ProcessID: spawned.PID}, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		session.Run(o.ctx)
	}()

	if req.Options.Upscaler && o.cfg.Capabilities.Upscaler && o.cfg.Companion != nil {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.engageCompanion()
		}()
	}

	msg := fmt.Sprintf("launched %s in %s", filepath.Base(spec.ExecutablePath), spec.WorkDir)
	if spec.RegionTool != "" {
		msg += " (region emulation)"
	}
	log.Info().
		Int("gameID", req.GameID).
		Int("pid", spawned.PID).
		Str("scope", spawned.Scope).
		Msg(msg)

	return Result{
		Success:   true,
		Message:   msg,
		ProcessID: spawned.PID,
		Scope:     spawned.Scope,
	}, nil
}

// Stop terminates a running game.
func (o *Orchestrator) Stop(ctx context.Context, gameID int) (monitor.StopResult, error) {
	return o.cfg.Registry.Stop(ctx, gameID) //nolint:wrapcheck // sentinel errors pass through
}

// Wait blocks until every session and companion goroutine has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) buildSpec(req Request) (*Spec, error) {
	if req.ExecutablePath == "" {
		return nil, ErrMissingExecutable
	}

	dir := filepath.Dir(req.ExecutablePath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
	}

	spec := &Spec{
		ExecutablePath: req.ExecutablePath,
		WorkDir:        dir,
		Args:           req.Args,
		GameID:         req.GameID,
	}
	if o.cfg.Paths != nil {
		spec.Wrapper = o.cfg.Paths.WrapperCommand()
	}

	caps := o.cfg.Capabilities
	if caps.ExeWrapper && strings.EqualFold(filepath.Ext(req.ExecutablePath), ".exe") &&
		strings.TrimSpace(spec.Wrapper) == "" {
		return nil, ErrWrapperNotConfigured
	}

	if req.Options.RegionEmulation {
		if !caps.RegionEmulation {
			log.Warn().Int("gameID", req.GameID).Msg("region emulation is not supported on this platform, ignoring")
		} else {
			if o.cfg.Paths == nil || o.cfg.Paths.RegionToolPath() == "" {
				return nil, ErrRegionToolNotConfigured
			}
			spec.RegionTool = o.cfg.Paths.RegionToolPath()
		}
	}

	if req.Options.Upscaler {
		if !caps.Upscaler {
			log.Warn().Int("gameID", req.GameID).Msg("upscaler is not supported on this platform, ignoring")
		} else if o.cfg.Paths == nil || o.cfg.Paths.UpscalerPath() == "" {
			return nil, ErrUpscalerNotConfigured
		}
	}

	return spec, nil
}

func (o *Orchestrator) engageCompanion() {
	select {
	case <-o.ctx.Done():
		return
	case <-o.cfg.Clock.After(o.cfg.CompanionDelay):
	}

	if err := o.cfg.Companion.Engage(o.ctx); err != nil {
		log.Error().Err(err).Msg("failed to engage upscaler")
	}
}
