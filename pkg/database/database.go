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

// Package database holds the shared types and migration runner of the
// service's SQLite databases.
package database

import (
	"errors"
	"time"
)

var ErrNullSQL = errors.New("database is not connected")

// PlaySession is one finished, recorded game session.
type PlaySession struct {
	StartTime    time.Time
	EndTime      time.Time
	DBID         int64
	TotalMinutes int64
	TotalSeconds int64
	GameID       int
	ProcessID    int
}
