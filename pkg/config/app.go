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

package config

import "time"

const (
	AppName           = "reina"
	CfgFile           = "reina.toml"
	LogFile           = "reina.log"
	SessionDBFile     = "sessions.db"
	UserDir           = "user"
	AppEnv            = "REINA_EXE"
	APIRequestTimeout = 10 * time.Second
)

// AppVersion is set at build time with -ldflags.
var AppVersion = "DEVELOPMENT"
