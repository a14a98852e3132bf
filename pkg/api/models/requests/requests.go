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

package requests

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/database"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

// Sessions launches, stops and lists monitored games.
type Sessions interface {
	Launch(ctx context.Context, req launcher.Request) (launcher.Result, error)
	Stop(ctx context.Context, gameID int) (monitor.StopResult, error)
	Active() []monitor.SessionInfo
}

// History reads recorded play sessions.
type History interface {
	History(ctx context.Context, gameID, limit int) ([]database.PlaySession, error)
	TotalMinutes(ctx context.Context, gameID int) (int64, error)
}

type RequestEnv struct {
	Ctx      context.Context //nolint:containedctx // request scoped
	Platform platforms.Platform
	Config   *config.Instance
	Sessions Sessions
	// History is nil when play history is disabled.
	History History
	Params  json.RawMessage
	ID      uuid.UUID
	IsLocal bool
}
