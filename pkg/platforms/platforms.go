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

// Package platforms defines how the service interacts with the operating
// system it runs on.
package platforms

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

const (
	PlatformIDLinux   = "linux"
	PlatformIDWindows = "windows"
)

// Settings defines all simple settings/configuration values available for a
// platform.
type Settings struct {
	// DataDir is the root folder where the play history database is stored.
	// WARNING: This value should be accessed using the DataDir function in
	// the helpers package.
	DataDir string
	// ConfigDir is the directory where the config file is stored.
	// WARNING: This value should be accessed using the ConfigDir function in
	// the helpers package.
	ConfigDir string
	// LogDir is where the rotated log file is written.
	LogDir string
	// TempDir is a temporary directory for files used for inter-process
	// communication. Expect it to be deleted.
	TempDir string
}

// Platform is the central interface that defines how the service interacts
// with a supported platform.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// Settings returns all simple platform-specific settings such as paths.
	Settings() Settings
	// StartupGrace is the default wait after a launch before the game's
	// processes are enumerated.
	StartupGrace() time.Duration
	// Capabilities reports which launch options the platform implements.
	Capabilities() launcher.Capabilities
	// Backend returns the process backend used by every session. It is
	// created once and shared.
	Backend() monitor.Backend
	// Spawner returns the game process spawner.
	Spawner(paths launcher.PathProvider) launcher.Spawner
	// Companion returns the upscaler companion, or nil when the platform has
	// none.
	Companion(paths launcher.PathProvider, clock clockwork.Clock) launcher.Companion
	// Stop releases platform resources before the service exits.
	Stop() error
}
