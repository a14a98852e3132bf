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

// Package monitor tracks a launched game's process family and accumulates
// the time the game owns the foreground.
//
// A Session owns a CandidateSet of PIDs believed to belong to the game and
// a distinguished best PID. It ticks once per second, checks liveness
// through a platform Backend, and on Windows runs a Detector goroutine that
// follows the foreground window and picks up escaped child processes. The
// Registry holds every live session so they can be stopped out of band.
package monitor

import (
	"context"
	"errors"
)

// ErrForegroundUnsupported is returned by ForegroundProbe.ForegroundPID on
// platforms with no way to ask which process owns the focused window.
// Sessions on those platforms count every second the game is alive.
var ErrForegroundUnsupported = errors.New("foreground detection not supported on this platform")

// Target identifies what a session monitors.
type Target struct {
	// GameDir is the directory containing the game executable. Processes
	// whose executable lives under it are considered part of the game.
	GameDir string
	// Executable is the path that was launched.
	Executable string
	// Scope is the systemd scope unit wrapping the launch (Linux only).
	Scope string
	// GameID is the caller-supplied identifier, unique among running games.
	GameID int
	// InitialPID is the PID returned by the spawn, 0 if unknown.
	InitialPID int
}

// ForegroundProbe answers questions about windows and executables. All
// methods must be safe to call from the detector goroutine.
type ForegroundProbe interface {
	// ForegroundPID returns the PID owning the foreground window, or 0 if
	// there is none.
	ForegroundPID() (int, error)
	// ExecutablePath returns the full executable path of pid.
	ExecutablePath(pid int) (string, error)
	// VisibleWindowPIDs returns the subset of pids owning at least one
	// visible top-level window.
	VisibleWindowPIDs(pids []int) []int
}

// Backend is the platform strategy for inspecting and controlling game
// processes. Enumerate and the liveness checks never fail: OS errors resolve
// to "no candidates" and "not running".
type Backend interface {
	ForegroundProbe

	// Enumerate returns the running PIDs that belong to target, excluding
	// the current process.
	Enumerate(ctx context.Context, target Target) []int
	// Alive reports whether the session is still running. On Windows this
	// is the liveness of pid, on Linux of the target's scope.
	Alive(ctx context.Context, target Target, pid int) bool
	// ProcessAlive reports whether an individual process is running.
	ProcessAlive(pid int) bool
	// Terminate forcibly ends a single process.
	Terminate(ctx context.Context, pid int) error
}

// ScopeStopper is implemented by backends that terminate a process family
// by stopping the unit owning it rather than one PID at a time.
type ScopeStopper interface {
	StopScope(ctx context.Context, scope string) error
}
