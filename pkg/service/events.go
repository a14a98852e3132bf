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

package service

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
)

// logSessionEvents writes session lifecycle events to the service log
// until ns is closed. Time updates are logged at trace level.
func logSessionEvents(ns <-chan models.Notification) {
	for n := range ns {
		level := zerolog.InfoLevel
		if n.Method == models.NotificationTimeUpdate {
			level = zerolog.TraceLevel
		}

		ev := log.WithLevel(level).Str("event", n.Method)
		if json.Valid(n.Params) {
			ev = ev.RawJSON("params", n.Params)
		}
		ev.Msg("session event")
	}
}
