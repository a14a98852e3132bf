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

type Monitor struct {
	StartupGrace   *string `toml:"startup_grace,omitempty"`
	ForegroundPoll *string `toml:"foreground_poll,omitempty"`
	ReportInterval *int    `toml:"report_interval,omitempty"`
}

const (
	DefaultReportInterval = 1
	DefaultForegroundPoll = 200 * time.Millisecond
)

// StartupGrace returns the configured wait before a new session looks for
// the game's processes, or platformDefault if unset.
func (c *Instance) StartupGrace(platformDefault time.Duration) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("monitor.startup_grace", c.vals.Monitor.StartupGrace, platformDefault)
}

func (c *Instance) SetStartupGrace(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := d.String()
	c.vals.Monitor.StartupGrace = &s
}

// ReportInterval returns the number of active seconds between time-update
// events.
func (c *Instance) ReportInterval() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Monitor.ReportInterval == nil || *c.vals.Monitor.ReportInterval <= 0 {
		return DefaultReportInterval
	}
	return int64(*c.vals.Monitor.ReportInterval)
}

func (c *Instance) ForegroundPoll() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := parseDuration("monitor.foreground_poll", c.vals.Monitor.ForegroundPoll, DefaultForegroundPoll)
	if d == 0 {
		return DefaultForegroundPoll
	}
	return d
}
