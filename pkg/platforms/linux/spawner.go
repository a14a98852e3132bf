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

//go:build linux

package linux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

// ScopeName is the transient systemd unit a game runs in.
func ScopeName(gameID int) string {
	return fmt.Sprintf("reina_game_%d.scope", gameID)
}

type scopeResetter interface {
	ResetFailed(ctx context.Context, scope string) error
}

// Spawner starts games inside a transient user scope so every process they
// create can be found and stopped together.
type Spawner struct {
	exec   command.Executor
	units  scopeResetter
	getenv func(string) string
}

func NewSpawner(exec command.Executor, units scopeResetter) *Spawner {
	return &Spawner{exec: exec, units: units, getenv: os.Getenv}
}

// isWindowsBinary reports whether path needs the compatibility wrapper.
func isWindowsBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".exe")
}

// buildCommand returns the systemd-run arguments and extra environment for
// spec.
func (s *Spawner) buildCommand(spec *launcher.Spec, scope string) ([]string, []string) {
	args := []string{"--scope", "--user", "-p", "Delegate=yes", "--unit", scope}

	var env []string
	if isWindowsBinary(spec.ExecutablePath) {
		args = append(args, strings.Fields(spec.Wrapper)...)
		// Wine prefers X11 when DISPLAY is set, which breaks under Wayland
		if s.getenv("WAYLAND_DISPLAY") != "" {
			env = append(env, "DISPLAY=")
		}
	}

	args = append(args, spec.ExecutablePath)
	args = append(args, spec.Args...)
	return args, env
}

func (s *Spawner) Spawn(ctx context.Context, spec *launcher.Spec) (launcher.Spawned, error) {
	scope := ScopeName(spec.GameID)

	if s.units != nil {
		if err := s.units.ResetFailed(ctx, scope); err != nil {
			log.Debug().Err(err).Str("scope", scope).Msg("no failed scope state to reset")
		}
	}

	args, env := s.buildCommand(spec, scope)
	pid, err := s.exec.Spawn(ctx, command.SpawnOptions{
		Name: "systemd-run",
		Args: args,
		Dir:  spec.WorkDir,
		Env:  env,
	})
	if err != nil {
		//nolint:wrapcheck // orchestrator adds path context
		return launcher.Spawned{}, err
	}

	log.Debug().Strs("args", args).Int("pid", pid).Msg("started game scope")
	return launcher.Spawned{Scope: scope, PID: pid}, nil
}

func (*Spawner) NeedsElevation(error) bool {
	return false
}

func (*Spawner) SpawnElevated(context.Context, *launcher.Spec) (launcher.Spawned, error) {
	return launcher.Spawned{}, platforms.ErrNotSupported
}
