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

package monitor

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
)

const (
	// MaxConsecutiveFailures is how many liveness misses in a row trigger
	// a rescan.
	MaxConsecutiveFailures = 3
	// TickInterval is the accounting resolution.
	TickInterval = time.Second
	// DefaultReportInterval is the number of active seconds between
	// time-update events.
	DefaultReportInterval = 1
)

// State is a session lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateTracking
	StateRescanning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateTracking:
		return "tracking"
	case StateRescanning:
		return "rescanning"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// SessionOptions holds a session's collaborators.
type SessionOptions struct {
	Backend  Backend
	Emitter  Emitter
	Recorder Recorder
	Registry *Registry
	Clock    clockwork.Clock
	// Grace is the wait before the first enumeration.
	Grace time.Duration
	// ForegroundPoll is the detector interval.
	ForegroundPoll time.Duration
	// ReportInterval is the number of active seconds between time-update
	// events.
	ReportInterval int64
}

// SessionInfo is a point-in-time view of a session.
type SessionInfo struct {
	State        string `json:"state"`
	Scope        string `json:"systemdScope,omitempty"`
	GameID       int    `json:"gameId"`
	ProcessID    int    `json:"processId"`
	StartTime    int64  `json:"startTime"`
	TotalSeconds int64  `json:"totalSeconds"`
	TotalMinutes int64  `json:"totalMinutes"`
	Candidates   []int  `json:"candidates"`
}

// Session monitors one launched game from startup to exit.
type Session struct {
	startTime      time.Time
	backend        Backend
	emitter        Emitter
	recorder       Recorder
	registry       *Registry
	clock          clockwork.Clock
	candidates     *CandidateSet
	stop           *StopSignal
	detector       *Detector
	done           chan struct{}
	target         Target
	grace          time.Duration
	poll           time.Duration
	reportInterval int64
	activeSeconds  atomic.Int64
	state          atomic.Int32
	emitMu         syncutil.Mutex
	failures       int
	assumeActive   bool
}

// NewSession creates a session for target. The start time is taken now, so
// the grace period counts towards elapsed time but never towards active
// time.
func NewSession(target Target, opts SessionOptions) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	report := opts.ReportInterval
	if report <= 0 {
		report = DefaultReportInterval
	}
	return &Session{
		startTime:      clock.Now(),
		backend:        opts.Backend,
		emitter:        opts.Emitter,
		recorder:       opts.Recorder,
		registry:       opts.Registry,
		clock:          clock,
		candidates:     NewCandidateSet(),
		stop:           NewStopSignal(),
		done:           make(chan struct{}),
		target:         target,
		grace:          opts.Grace,
		poll:           opts.ForegroundPoll,
		reportInterval: report,
	}
}

// GameID returns the session's game ID.
func (s *Session) GameID() int { return s.target.GameID }

// Target returns what the session monitors.
func (s *Session) Target() Target { return s.target }

// Candidates returns the shared candidate set.
func (s *Session) Candidates() *CandidateSet { return s.candidates }

// StopSignal returns the session's stop signal.
func (s *Session) StopSignal() *StopSignal { return s.stop }

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// ActiveSeconds returns the accumulated active time.
func (s *Session) ActiveSeconds() int64 { return s.activeSeconds.Load() }

// Info returns a snapshot for listing.
func (s *Session) Info() SessionInfo {
	secs := s.activeSeconds.Load()
	return SessionInfo{
		State:        s.State().String(),
		Scope:        s.target.Scope,
		GameID:       s.target.GameID,
		ProcessID:    s.bestPID(),
		StartTime:    s.startTime.Unix(),
		TotalSeconds: secs,
		TotalMinutes: secs / 60,
		Candidates:   s.candidates.Snapshot(),
	}
}

// Run drives the session until the game exits, the stop signal is raised
// or ctx is cancelled. A session stopped before tracking begins emits no
// events and records nothing. Run always removes the session from its
// registry before returning.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	if s.registry != nil {
		defer s.registry.Unregister(s.target.GameID, s)
	}

	log.Info().
		Int("gameID", s.target.GameID).
		Int("pid", s.target.InitialPID).
		Str("scope", s.target.Scope).
		Dur("grace", s.grace).
		Msg("starting game session")

	if !s.waitGrace(ctx) {
		s.setState(StateEnded)
		log.Info().Int("gameID", s.target.GameID).Msg("game session cancelled during startup")
		return
	}

	s.seed(ctx)
	s.setState(StateTracking)
	s.emit(EventSessionStarted, SessionStarted{
		GameID:    s.target.GameID,
		ProcessID: s.bestPID(),
		StartTime: s.startTime.Unix(),
	})

	if !s.assumeActive {
		s.detector = NewDetector(DetectorConfig{
			Probe:      s.backend,
			Candidates: s.candidates,
			Clock:      s.clock,
			GameDir:    s.target.GameDir,
			Interval:   s.poll,
			OnSwitch:   s.switched,
		})
		s.detector.Start(ctx)
	}
	defer s.stopDetector()

	s.track(ctx)
	s.finish(ctx)
}

func (s *Session) waitGrace(ctx context.Context) bool {
	if s.grace <= 0 {
		return !s.stop.Raised() && ctx.Err() == nil
	}
	timer := s.clock.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.stop.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// seed performs the initial enumeration and best PID selection.
func (s *Session) seed(ctx context.Context) {
	pids := s.backend.Enumerate(ctx, s.target)

	initial := s.target.InitialPID
	if initial > 0 && !slices.Contains(pids, initial) && s.backend.ProcessAlive(initial) {
		pids = append(pids, initial)
	}

	if _, err := s.backend.ForegroundPID(); errors.Is(err, ErrForegroundUnsupported) {
		s.assumeActive = true
	}

	best := selectBest(s.backend, pids, initial)
	s.candidates.Replace(pids, best)

	log.Info().
		Int("gameID", s.target.GameID).
		Ints("candidates", s.candidates.Snapshot()).
		Int("best", s.bestPID()).
		Bool("assumeActive", s.assumeActive).
		Msg("game session tracking")
}

func (s *Session) track(ctx context.Context) {
	ticker := s.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop.Done():
			return
		case <-ticker.Chan():
			if !s.tick(ctx) {
				return
			}
		}
	}
}

// tick performs one accounting step and reports whether tracking should
// continue.
func (s *Session) tick(ctx context.Context) bool {
	if s.stop.Raised() {
		return false
	}

	best := s.candidates.Best()
	if !s.backend.Alive(ctx, s.target, best) {
		s.failures++
		log.Debug().
			Int("gameID", s.target.GameID).
			Int("pid", best).
			Int("failures", s.failures).
			Msg("best process liveness check failed")
		if s.failures < MaxConsecutiveFailures {
			return true
		}
		return s.rescan(ctx)
	}

	s.failures = 0
	if dead := s.candidates.RetainRunning(s.backend.ProcessAlive); len(dead) > 0 {
		log.Debug().Int("gameID", s.target.GameID).Ints("pids", dead).Msg("pruned exited candidates")
	}
	if s.candidates.Len() == 0 {
		// session alive with no known processes: only possible when the
		// scope decides liveness
		pids := s.backend.Enumerate(ctx, s.target)
		s.candidates.Replace(pids, selectBest(s.backend, pids, 0))
	}

	if !s.active() {
		return true
	}

	secs := s.activeSeconds.Add(1)
	if secs%s.reportInterval == 0 {
		s.emit(EventTimeUpdate, TimeUpdate{
			GameID:       s.target.GameID,
			TotalMinutes: secs / 60,
			TotalSeconds: secs,
			StartTime:    s.startTime.Unix(),
			CurrentTime:  s.clock.Now().Unix(),
			ProcessID:    s.bestPID(),
		})
	}
	return true
}

func (s *Session) active() bool {
	if s.assumeActive {
		return true
	}
	return s.detector != nil && s.detector.Foreground()
}

// rescan re-enumerates after repeated liveness failures and reports
// whether the session found a process to continue with.
func (s *Session) rescan(ctx context.Context) bool {
	s.setState(StateRescanning)

	pids := s.backend.Enumerate(ctx, s.target)
	if len(pids) == 0 {
		log.Info().Int("gameID", s.target.GameID).Msg("no game processes left, ending session")
		return false
	}

	best := selectBest(s.backend, pids, pids[0])
	s.candidates.Replace(pids, best)
	s.failures = 0
	s.setState(StateTracking)

	log.Info().Int("gameID", s.target.GameID).Int("pid", s.bestPID()).Msg("switched to new game process")
	s.emit(EventProcessSwitched, ProcessSwitched{
		GameID:       s.target.GameID,
		NewProcessID: s.bestPID(),
	})
	return true
}

func (s *Session) switched(pid int) {
	if s.State() == StateEnded {
		return
	}
	s.emit(EventProcessSwitched, ProcessSwitched{
		GameID:       s.target.GameID,
		NewProcessID: pid,
	})
}

func (s *Session) finish(ctx context.Context) {
	s.stopDetector()
	s.setState(StateEnded)

	secs := s.activeSeconds.Load()
	rec := Record{
		GameID:       s.target.GameID,
		StartTime:    s.startTime.Unix(),
		EndTime:      s.clock.Now().Unix(),
		TotalMinutes: RoundMinutes(secs),
		TotalSeconds: secs,
		FinalPID:     s.bestPID(),
	}

	log.Info().
		Int("gameID", rec.GameID).
		Int64("seconds", rec.TotalSeconds).
		Int64("minutes", rec.TotalMinutes).
		Int("pid", rec.FinalPID).
		Msg("game session ended")

	s.emit(EventSessionEnded, SessionEnded{
		GameID:       rec.GameID,
		StartTime:    rec.StartTime,
		EndTime:      rec.EndTime,
		TotalMinutes: rec.TotalMinutes,
		TotalSeconds: rec.TotalSeconds,
		ProcessID:    rec.FinalPID,
	})

	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSession(context.WithoutCancel(ctx), rec); err != nil {
		log.Error().Err(err).Int("gameID", rec.GameID).Msg("failed to record game session")
	}
}

func (s *Session) stopDetector() {
	if s.detector != nil {
		s.detector.Stop()
	}
}

func (s *Session) bestPID() int {
	if pid := s.candidates.Best(); pid > 0 {
		return pid
	}
	return s.target.InitialPID
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) emit(name string, payload any) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(name, payload); err != nil {
		log.Warn().Err(err).Str("event", name).Int("gameID", s.target.GameID).Msg("failed to emit session event")
	}
}
