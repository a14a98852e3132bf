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

package mocks

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatform) Settings() platforms.Settings {
	args := m.Called()
	settings, _ := args.Get(0).(platforms.Settings)
	return settings
}

func (m *MockPlatform) StartupGrace() time.Duration {
	args := m.Called()
	d, _ := args.Get(0).(time.Duration)
	return d
}

func (m *MockPlatform) Capabilities() launcher.Capabilities {
	args := m.Called()
	caps, _ := args.Get(0).(launcher.Capabilities)
	return caps
}

func (m *MockPlatform) Backend() monitor.Backend {
	args := m.Called()
	b, _ := args.Get(0).(monitor.Backend)
	return b
}

func (m *MockPlatform) Spawner(paths launcher.PathProvider) launcher.Spawner {
	args := m.Called(paths)
	s, _ := args.Get(0).(launcher.Spawner)
	return s
}

func (m *MockPlatform) Companion(paths launcher.PathProvider, clock clockwork.Clock) launcher.Companion {
	args := m.Called(paths, clock)
	c, _ := args.Get(0).(launcher.Companion)
	return c
}

func (m *MockPlatform) Stop() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform stop failed: %w", err)
	}
	return nil
}

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{}
}

// SetupBasicMock configures the mock with an idle backend, a spawner and
// directories under root.
func (m *MockPlatform) SetupBasicMock(settings platforms.Settings, spawner launcher.Spawner) {
	m.On("ID").Return("mock-platform").Maybe()
	m.On("Settings").Return(settings).Maybe()
	m.On("StartupGrace").Return(time.Second).Maybe()
	m.On("Capabilities").Return(launcher.Capabilities{}).Maybe()
	m.On("Backend").Return(NewIdleBackend()).Maybe()
	m.On("Spawner", mock.Anything).Return(spawner).Maybe()
	m.On("Companion", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Stop").Return(nil).Maybe()
}
