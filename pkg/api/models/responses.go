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

package models

import (
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

type SessionsResponse struct {
	Sessions []monitor.SessionInfo `json:"sessions"`
}

type PlaySessionResponse struct {
	ID           int64 `json:"id"`
	StartTime    int64 `json:"startTime"`
	EndTime      int64 `json:"endTime"`
	TotalMinutes int64 `json:"totalMinutes"`
	TotalSeconds int64 `json:"totalSeconds"`
	ProcessID    int   `json:"processId"`
}

type HistoryResponse struct {
	Sessions     []PlaySessionResponse `json:"sessions"`
	GameID       int                   `json:"gameId"`
	TotalMinutes int64                 `json:"totalMinutes"`
}
