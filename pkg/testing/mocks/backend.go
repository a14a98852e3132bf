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
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

// MockBackend is a testify mock for monitor.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Enumerate(ctx context.Context, target monitor.Target) []int {
	pids, _ := m.Called(ctx, target).Get(0).([]int)
	return pids
}

func (m *MockBackend) Alive(ctx context.Context, target monitor.Target, pid int) bool {
	return m.Called(ctx, target, pid).Bool(0)
}

func (m *MockBackend) ProcessAlive(pid int) bool {
	return m.Called(pid).Bool(0)
}

func (m *MockBackend) Terminate(ctx context.Context, pid int) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(ctx, pid).Error(0)
}

func (m *MockBackend) ForegroundPID() (int, error) {
	called := m.Called()
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Int(0), called.Error(1)
}

func (m *MockBackend) ExecutablePath(pid int) (string, error) {
	called := m.Called(pid)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.String(0), called.Error(1)
}

func (m *MockBackend) VisibleWindowPIDs(pids []int) []int {
	out, _ := m.Called(pids).Get(0).([]int)
	return out
}

// NewIdleBackend returns a MockBackend for a platform without foreground
// detection where nothing is running. Individual tests override calls with
// On before use.
func NewIdleBackend() *MockBackend {
	b := &MockBackend{}
	b.On("Enumerate", mock.Anything, mock.Anything).Return([]int(nil)).Maybe()
	b.On("Alive", mock.Anything, mock.Anything, mock.Anything).Return(false).Maybe()
	b.On("ProcessAlive", mock.Anything).Return(false).Maybe()
	b.On("Terminate", mock.Anything, mock.Anything).Return(nil).Maybe()
	b.On("ForegroundPID").Return(0, monitor.ErrForegroundUnsupported).Maybe()
	b.On("ExecutablePath", mock.Anything).Return("", monitor.ErrForegroundUnsupported).Maybe()
	b.On("VisibleWindowPIDs", mock.Anything).Return([]int(nil)).Maybe()
	return b
}
