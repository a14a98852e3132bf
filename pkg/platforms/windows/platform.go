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

//go:build windows

package windows

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
	"github.com/wind-mask/ReinaManager/pkg/platforms/shared/procscanner"
)

// DefaultStartupGrace covers launchers that exit after starting the game.
const DefaultStartupGrace = 3 * time.Second

type Platform struct {
	exec    command.Executor
	backend *Backend
}

func NewPlatform(exec command.Executor) *Platform {
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	return &Platform{
		exec:    exec,
		backend: NewBackend(procscanner.New()),
	}
}

func (*Platform) ID() string {
	return platforms.PlatformIDWindows
}

func (*Platform) Settings() platforms.Settings {
	return platforms.Settings{
		DataDir:   filepath.Join(xdg.DataHome, config.AppName),
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		LogDir:    filepath.Join(xdg.DataHome, config.AppName, "logs"),
		TempDir:   filepath.Join(os.TempDir(), config.AppName),
	}
}

func (*Platform) StartupGrace() time.Duration {
	return DefaultStartupGrace
}

func (*Platform) Capabilities() launcher.Capabilities {
	return launcher.Capabilities{RegionEmulation: true, Upscaler: true}
}

func (p *Platform) Backend() monitor.Backend {
	return p.backend
}

func (p *Platform) Spawner(_ launcher.PathProvider) launcher.Spawner {
	return NewSpawner(p.exec)
}

func (p *Platform) Companion(paths launcher.PathProvider, clock clockwork.Clock) launcher.Companion {
	return &launcher.UpscalerCompanion{
		Exec:    p.exec,
		Keys:    HotkeySender{},
		Paths:   paths,
		Clock:   clock,
		Running: p.backend.Running,
	}
}

func (*Platform) Stop() error {
	return nil
}
