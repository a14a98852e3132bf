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

package methods

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/api/models/requests"
	"github.com/wind-mask/ReinaManager/pkg/api/validation"
)

var ErrHistoryDisabled = errors.New("play history is disabled")

//nolint:gocritic // single-use parameter in API handler
func HandleSessionsHistory(env requests.RequestEnv) (any, error) {
	var params models.HistoryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if env.History == nil {
		return nil, ErrHistoryDisabled
	}

	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	log.Debug().Int("gameID", params.GameID).Int("limit", limit).Msg("received history request")

	sessions, err := env.History.History(env.Ctx, params.GameID, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting play history: %w", err)
	}
	total, err := env.History.TotalMinutes(env.Ctx, params.GameID)
	if err != nil {
		return nil, fmt.Errorf("error getting total play time: %w", err)
	}

	resp := models.HistoryResponse{
		GameID:       params.GameID,
		TotalMinutes: total,
		Sessions:     make([]models.PlaySessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, models.PlaySessionResponse{
			ID:           s.DBID,
			StartTime:    s.StartTime.Unix(),
			EndTime:      s.EndTime.Unix(),
			TotalMinutes: s.TotalMinutes,
			TotalSeconds: s.TotalSeconds,
			ProcessID:    s.ProcessID,
		})
	}
	return resp, nil
}
