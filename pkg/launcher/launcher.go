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

// Package launcher starts games and hands them to the process monitor.
package launcher

import (
	"context"
	"errors"
)

var (
	ErrMissingExecutable       = errors.New("no executable path given")
	ErrMissingDirectory        = errors.New("game directory does not exist")
	ErrRegionToolNotConfigured = errors.New("region emulation tool path is not set")
	ErrUpscalerNotConfigured   = errors.New("upscaler path is not set")
	ErrWrapperNotConfigured    = errors.New("compatibility layer command is not set")
)

// Options are the per-launch switches.
type Options struct {
	// RegionEmulation runs the game through Locale Emulator.
	RegionEmulation bool `json:"leLaunch"`
	// Upscaler starts Magpie alongside the game and engages it.
	Upscaler bool `json:"magpie"`
}

// Request describes one launch.
type Request struct {
	ExecutablePath string
	Args           []string
	GameID         int
	Options        Options
}

// Result is returned to the caller of a successful launch.
type Result struct {
	Message   string `json:"message"`
	Scope     string `json:"systemdScope,omitempty"`
	Success   bool   `json:"success"`
	ProcessID int    `json:"processId"`
}

// PathProvider resolves external tool locations. Empty means not
// configured.
type PathProvider interface {
	RegionToolPath() string
	UpscalerPath() string
	WrapperCommand() string
}

// Capabilities lists the launch options a platform can honour.
type Capabilities struct {
	RegionEmulation bool
	Upscaler        bool
	// ExeWrapper means Windows executables only run through the configured
	// compatibility layer.
	ExeWrapper bool
}

// Spec is a validated launch handed to a Spawner.
type Spec struct {
	ExecutablePath string
	WorkDir        string
	// RegionTool is set when the game must be started through the region
	// emulation wrapper.
	RegionTool string
	// Wrapper is the compatibility layer command for Windows executables
	// on Linux, empty for none.
	Wrapper string
	Args    []string
	GameID  int
}

// Spawned identifies the started process.
type Spawned struct {
	Scope string
	PID   int
}

// Spawner starts processes for one platform.
type Spawner interface {
	Spawn(ctx context.Context, spec *Spec) (Spawned, error)
	// SpawnElevated retries a spawn with elevated privileges.
	SpawnElevated(ctx context.Context, spec *Spec) (Spawned, error)
	// NeedsElevation reports whether a Spawn error means the target
	// requires elevated privileges.
	NeedsElevation(err error) bool
}

// Companion is a helper tool engaged after the game starts.
type Companion interface {
	Engage(ctx context.Context) error
}
