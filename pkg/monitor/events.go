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

import "context"

// Session event names, in the order a session emits them.
const (
	EventSessionStarted  = "session-started"
	EventTimeUpdate      = "time-update"
	EventProcessSwitched = "process-switched"
	EventSessionEnded    = "session-ended"
)

// SessionStarted is emitted once tracking begins.
type SessionStarted struct {
	GameID    int   `json:"gameId"`
	ProcessID int   `json:"processId"`
	StartTime int64 `json:"startTime"`
}

// TimeUpdate is emitted every report interval of active time.
// TotalMinutes is truncated, only the final total is rounded.
type TimeUpdate struct {
	GameID       int   `json:"gameId"`
	TotalMinutes int64 `json:"totalMinutes"`
	TotalSeconds int64 `json:"totalSeconds"`
	StartTime    int64 `json:"startTime"`
	CurrentTime  int64 `json:"currentTime"`
	ProcessID    int   `json:"processId"`
}

// ProcessSwitched is emitted when the best PID changes.
type ProcessSwitched struct {
	GameID       int `json:"gameId"`
	NewProcessID int `json:"newProcessId"`
}

// SessionEnded is emitted once, after which the session is gone.
type SessionEnded struct {
	GameID       int   `json:"gameId"`
	StartTime    int64 `json:"startTime"`
	EndTime      int64 `json:"endTime"`
	TotalMinutes int64 `json:"totalMinutes"`
	TotalSeconds int64 `json:"totalSeconds"`
	ProcessID    int   `json:"processId"`
}

// Emitter delivers session events to the presentation layer. Emit must not
// block; a delivery failure is logged by the session and otherwise ignored.
type Emitter interface {
	Emit(name string, payload any) error
}

// Record is the aggregate handed to the Recorder when a session ends.
type Record struct {
	GameID       int
	StartTime    int64
	EndTime      int64
	TotalMinutes int64
	TotalSeconds int64
	FinalPID     int
}

// Recorder persists finished sessions.
type Recorder interface {
	RecordSession(ctx context.Context, rec Record) error
}
