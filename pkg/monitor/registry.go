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
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
)

var (
	// ErrNoSuchSession is returned when stopping a game that is not running.
	ErrNoSuchSession = errors.New("no such session")
	// ErrSessionExists is returned when registering a game that is
	// already being monitored.
	ErrSessionExists = errors.New("game is already running")
)

// StopResult is the outcome of a stop request.
type StopResult struct {
	Message         string `json:"message"`
	Success         bool   `json:"success"`
	TerminatedCount int    `json:"terminatedCount"`
}

// Registry holds every running session keyed by game ID.
type Registry struct {
	backend  Backend
	sessions map[int]*Session
	mu       syncutil.RWMutex
}

// NewRegistry returns an empty registry that terminates processes through
// backend.
func NewRegistry(backend Backend) *Registry {
	return &Registry{
		backend:  backend,
		sessions: make(map[int]*Session),
	}
}

// Register adds s. It fails if its game ID is already registered.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.GameID()]; ok {
		return fmt.Errorf("%w: %d", ErrSessionExists, s.GameID())
	}
	r.sessions[s.GameID()] = s
	return nil
}

// Unregister removes the session for gameID if it is still s.
func (r *Registry) Unregister(gameID int, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[gameID]; ok && cur == s {
		delete(r.sessions, gameID)
	}
}

// Running reports whether gameID has a registered session.
func (r *Registry) Running(gameID int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[gameID]
	return ok
}

// Active lists every registered session ordered by game ID.
func (r *Registry) Active() []SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].GameID < infos[j].GameID
	})
	return infos
}

// Stop ends the session for gameID and forcibly terminates every candidate
// that is still running. Individual termination failures are logged and do
// not stop the rest. A second call for the same game returns
// ErrNoSuchSession.
//
// The session stays registered until its Run loop returns, so the game
// cannot be launched again while its final session is still being recorded.
func (r *Registry) Stop(ctx context.Context, gameID int) (StopResult, error) {
	r.mu.RLock()
	s, ok := r.sessions[gameID]
	r.mu.RUnlock()

	if !ok || !s.StopSignal().Raise() {
		return StopResult{Message: ErrNoSuchSession.Error()}, fmt.Errorf("%w: %d", ErrNoSuchSession, gameID)
	}

	target := s.Target()
	pids := s.Candidates().Snapshot()
	if len(pids) == 0 && target.InitialPID > 0 {
		pids = []int{target.InitialPID}
	}

	if stopper, ok := r.backend.(ScopeStopper); ok && target.Scope != "" {
		return r.stopScope(ctx, stopper, target, pids), nil
	}

	count := 0
	var errs []error
	for _, pid := range pids {
		if !r.backend.ProcessAlive(pid) {
			continue
		}
		if err := r.backend.Terminate(ctx, pid); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
			continue
		}
		count++
	}

	if len(errs) > 0 {
		log.Warn().
			Err(errors.Join(errs...)).
			Int("gameID", gameID).
			Int("terminated", count).
			Int("failed", len(errs)).
			Msg("some game processes could not be terminated")
	} else {
		log.Info().Int("gameID", gameID).Int("terminated", count).Msg("stopped game")
	}

	return StopResult{
		Success:         true,
		Message:         fmt.Sprintf("terminated %d processes", count),
		TerminatedCount: count,
	}, nil
}

func (r *Registry) stopScope(ctx context.Context, stopper ScopeStopper, target Target, pids []int) StopResult {
	running := slices.DeleteFunc(slices.Clone(pids), func(pid int) bool {
		return !r.backend.ProcessAlive(pid)
	})

	if err := stopper.StopScope(ctx, target.Scope); err != nil {
		log.Warn().Err(err).Int("gameID", target.GameID).Str("scope", target.Scope).Msg("failed to stop game scope")
		return StopResult{Message: fmt.Sprintf("failed to stop %s: %v", target.Scope, err)}
	}

	log.Info().Int("gameID", target.GameID).Str("scope", target.Scope).Int("terminated", len(running)).Msg("stopped game scope")
	return StopResult{
		Success:         true,
		Message:         fmt.Sprintf("stopped %s", target.Scope),
		TerminatedCount: len(running),
	}
}

// StopAll stops every registered session and waits for their loops to
// exit or ctx to be done.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.sessions))
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		ids = append(ids, id)
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		if _, err := r.Stop(ctx, id); err != nil {
			log.Debug().Err(err).Int("gameID", id).Msg("session ended before it could be stopped")
		}
	}

	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return
		}
	}
}
