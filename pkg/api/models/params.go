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

type LaunchOptions struct {
	LeLaunch bool `json:"leLaunch"`
	Magpie   bool `json:"magpie"`
}

type LaunchParams struct {
	LaunchOptions  *LaunchOptions `json:"launchOptions,omitempty"`
	ExecutablePath string         `json:"executablePath" validate:"required,notblank"`
	Args           []string       `json:"args,omitempty"`
	GameID         int            `json:"gameId" validate:"gt=0"`
}

type StopParams struct {
	GameID int `json:"gameId" validate:"gt=0"`
}

type HistoryParams struct {
	Limit  *int `json:"limit,omitempty" validate:"omitempty,gte=1,lte=1000"`
	GameID int  `json:"gameId" validate:"gt=0"`
}
