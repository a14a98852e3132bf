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
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
)

// MockSpawner is a testify mock for launcher.Spawner.
type MockSpawner struct {
	mock.Mock
}

func (m *MockSpawner) Spawn(ctx context.Context, spec *launcher.Spec) (launcher.Spawned, error) {
	called := m.Called(ctx, spec)
	spawned, _ := called.Get(0).(launcher.Spawned)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return spawned, called.Error(1)
}

func (m *MockSpawner) SpawnElevated(ctx context.Context, spec *launcher.Spec) (launcher.Spawned, error) {
	called := m.Called(ctx, spec)
	spawned, _ := called.Get(0).(launcher.Spawned)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return spawned, called.Error(1)
}

func (m *MockSpawner) NeedsElevation(err error) bool {
	return m.Called(err).Bool(0)
}

// MockCompanion is a testify mock for launcher.Companion.
type MockCompanion struct {
	mock.Mock
}

func (m *MockCompanion) Engage(ctx context.Context) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(ctx).Error(0)
}

// MockHotkeySender is a testify mock for launcher.HotkeySender.
type MockHotkeySender struct {
	mock.Mock
}

func (m *MockHotkeySender) SendUpscaleHotkey() error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called().Error(0)
}

// StaticPaths is a fixed launcher.PathProvider.
type StaticPaths struct {
	RegionTool string
	Upscaler   string
	Wrapper    string
}

func (p StaticPaths) RegionToolPath() string { return p.RegionTool }
func (p StaticPaths) UpscalerPath() string   { return p.Upscaler }
func (p StaticPaths) WrapperCommand() string { return p.Wrapper }
