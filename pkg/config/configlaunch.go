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

type Launch struct {
	RegionTool     string  `toml:"region_tool,omitempty"`
	Upscaler       string  `toml:"upscaler,omitempty"`
	Wrapper        *string `toml:"wrapper,omitempty"`
	CompanionDelay *string `toml:"companion_delay,omitempty"`
}

const (
	DefaultWrapper        = "wine"
	DefaultCompanionDelay = time.Second
)

// RegionToolPath returns the Locale Emulator (LEProc.exe) path, empty if
// not configured.
func (c *Instance) RegionToolPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launch.RegionTool
}

func (c *Instance) SetRegionToolPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launch.RegionTool = path
}

// UpscalerPath returns the Magpie executable path, empty if not
// configured.
func (c *Instance) UpscalerPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launch.Upscaler
}

func (c *Instance) SetUpscalerPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launch.Upscaler = path
}

// WrapperCommand returns the compatibility layer command used to run
// Windows executables on Linux. An explicitly empty value disables it.
func (c *Instance) WrapperCommand() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launch.Wrapper == nil {
		return DefaultWrapper
	}
	return *c.vals.Launch.Wrapper
}

func (c *Instance) SetWrapperCommand(cmd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launch.Wrapper = &cmd
}

// CompanionDelay is the wait between launching a game and engaging the
// upscaler.
func (c *Instance) CompanionDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("launch.companion_delay", c.vals.Launch.CompanionDelay, DefaultCompanionDelay)
}
