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
	"github.com/wind-mask/ReinaManager/pkg/launcher"
)

var ErrSessionsUnavailable = errors.New("session manager is not running")

//nolint:gocritic // single-use parameter in API handler
func HandleLaunch(env requests.RequestEnv) (any, error) {
	var params models.LaunchParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if env.Sessions == nil {
		return nil, ErrSessionsUnavailable
	}

	req := launcher.Request{
		ExecutablePath: params.ExecutablePath,
		Args:           params.Args,
		GameID:         params.GameID,
	}
	if params.LaunchOptions != nil {
		req.Options = launcher.Options{
			RegionEmulation: params.LaunchOptions.LeLaunch,
			Upscaler:        params.LaunchOptions.Magpie,
		}
	}

	log.Info().
		Int("gameID", req.GameID).
		Str("path", req.ExecutablePath).
		Bool("regionEmulation", req.Options.RegionEmulation).
		Bool("upscaler", req.Options.Upscaler).
		Msg("received launch request")

	result, err := env.Sessions.Launch(env.Ctx, req)
	if err != nil {
		return nil, fmt.Errorf("launch failed: %w", err)
	}
	return result, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStop(env requests.RequestEnv) (any, error) {
	var params models.StopParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if env.Sessions == nil {
		return nil, ErrSessionsUnavailable
	}

	log.Info().Int("gameID", params.GameID).Msg("received stop request")
	result, err := env.Sessions.Stop(env.Ctx, params.GameID)
	if err != nil {
		return nil, fmt.Errorf("stop failed: %w", err)
	}
	return result, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSessions(env requests.RequestEnv) (any, error) {
	if env.Sessions == nil {
		return nil, ErrSessionsUnavailable
	}
	return models.SessionsResponse{Sessions: env.Sessions.Active()}, nil
}
