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
	"github.com/wind-mask/ReinaManager/pkg/database"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

// MockSessions is a testify mock for the API session manager.
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Launch(ctx context.Context, req launcher.Request) (launcher.Result, error) {
	called := m.Called(ctx, req)
	res, _ := called.Get(0).(launcher.Result)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return res, called.Error(1)
}

func (m *MockSessions) Stop(ctx context.Context, gameID int) (monitor.StopResult, error) {
	called := m.Called(ctx, gameID)
	res, _ := called.Get(0).(monitor.StopResult)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return res, called.Error(1)
}

func (m *MockSessions) Active() []monitor.SessionInfo {
	infos, _ := m.Called().Get(0).([]monitor.SessionInfo)
	return infos
}

// MockHistory is a testify mock for the play history store.
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) History(ctx context.Context, gameID, limit int) ([]database.PlaySession, error) {
	called := m.Called(ctx, gameID, limit)
	sessions, _ := called.Get(0).([]database.PlaySession)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return sessions, called.Error(1)
}

func (m *MockHistory) TotalMinutes(ctx context.Context, gameID int) (int64, error) {
	called := m.Called(ctx, gameID)
	total, _ := called.Get(0).(int64)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return total, called.Error(1)
}
