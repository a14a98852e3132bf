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
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

// DefaultStartupGrace is longer than on Windows because the compatibility
// layer takes a while to start the game.
const DefaultStartupGrace = 9 * time.Second

type Platform struct {
	exec    command.Executor
	bus     *busManager
	backend *Backend
}

// NewPlatform connects to the user's systemd instance. Without a session
// bus every unit operation goes through systemctl.
func NewPlatform(exec command.Executor) *Platform {
	if exec == nil {
		exec = &command.RealExecutor{}
	}

	p := &Platform{exec: exec}
	bus, err := dialUserManager()
	if err != nil {
		log.Warn().Err(err).Msg("systemd user manager unavailable, using systemctl")
		p.backend = NewBackend(nil, exec)
	} else {
		p.bus = bus
		p.backend = NewBackend(bus, exec)
	}
	return p
}

func (*Platform) ID() string {
	return platforms.PlatformIDLinux
}

func (*Platform) Settings() platforms.Settings {
	return platforms.Settings{
		DataDir:   filepath.Join(xdg.DataHome, config.AppName),
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		LogDir:    filepath.Join(xdg.StateHome, config.AppName),
		TempDir:   filepath.Join(xdg.RuntimeDir, config.AppName),
	}
}

func (*Platform) StartupGrace() time.Duration {
	return DefaultStartupGrace
}

func (*Platform) Capabilities() launcher.Capabilities {
	return launcher.Capabilities{ExeWrapper: true}
}

func (p *Platform) Backend() monitor.Backend {
	return p.backend
}

func (p *Platform) Spawner(_ launcher.PathProvider) launcher.Spawner {
	return NewSpawner(p.exec, p.backend)
}

func (*Platform) Companion(launcher.PathProvider, clockwork.Clock) launcher.Companion {
	return nil
}

func (p *Platform) Stop() error {
	if p.bus == nil {
		return nil
	}
	//nolint:wrapcheck // close error is only logged
	return p.bus.Close()
}
