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
	"context"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/testing/helpers"
	"github.com/wind-mask/ReinaManager/pkg/testing/mocks"
)

const testScope = "reina_game_7.scope"

var errBus = errors.New("org.freedesktop.DBus.Error.ServiceUnknown")

type fakeUnits struct {
	pids     []int
	pidsErr  error
	active   bool
	stateErr error
	stopErr  error
	stopped  []string
}

func (f *fakeUnits) UnitPIDs(context.Context, string) ([]int, error) {
	return f.pids, f.pidsErr
}

func (f *fakeUnits) UnitActive(context.Context, string) (bool, error) {
	return f.active, f.stateErr
}

func (f *fakeUnits) StopUnit(_ context.Context, unit string) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped = append(f.stopped, unit)
	return nil
}

func (f *fakeUnits) ResetFailed(context.Context, string) error {
	return f.stopErr
}

func writeProc(t *testing.T, fs afero.Fs, pid, cgroup, stat string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll("/proc/"+pid, 0o755))
	if cgroup != "" {
		require.NoError(t, afero.WriteFile(fs, "/proc/"+pid+"/cgroup", []byte(cgroup), 0o644))
	}
	if stat != "" {
		require.NoError(t, afero.WriteFile(fs, "/proc/"+pid+"/stat", []byte(stat), 0o644))
	}
}

func TestBackend_EnumerateFromBus(t *testing.T) {
	t.Parallel()

	bus := &fakeUnits{pids: []int{300, 100, 1}}
	b := NewBackend(bus, helpers.NewMockCommandExecutor(), WithSelfPID(1))

	assert.Equal(t, []int{100, 300}, b.Enumerate(context.Background(), monitor.Target{Scope: testScope}))
}

func TestBackend_EnumerateFallsBackToCgroups(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	slice := "0::/user.slice/user-1000.slice/user@1000.service/app.slice/"
	writeProc(t, fs, "10", slice+testScope+"\n", "")
	writeProc(t, fs, "11", slice+testScope+"/payload\n", "")
	writeProc(t, fs, "12", slice+"reina_game_70.scope\n", "")
	writeProc(t, fs, "13", "", "")
	require.NoError(t, fs.MkdirAll("/proc/self", 0o755))

	tests := []struct {
		name string
		bus  UnitManager
	}{
		{name: "no bus", bus: nil},
		{name: "bus failure", bus: &fakeUnits{pidsErr: errBus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBackend(tt.bus, helpers.NewMockCommandExecutor(), WithFs(fs), WithSelfPID(1))

			assert.Equal(t, []int{10, 11}, b.Enumerate(context.Background(), monitor.Target{Scope: testScope}))
		})
	}
}

func TestBackend_EnumerateWithoutScope(t *testing.T) {
	t.Parallel()

	b := NewBackend(&fakeUnits{pids: []int{5}}, helpers.NewMockCommandExecutor())

	assert.Empty(t, b.Enumerate(context.Background(), monitor.Target{}))
}

func TestBackend_AliveFromBus(t *testing.T) {
	t.Parallel()

	target := monitor.Target{Scope: testScope}

	assert.True(t, NewBackend(&fakeUnits{active: true}, nil).Alive(context.Background(), target, 5))
	assert.False(t, NewBackend(&fakeUnits{active: false}, nil).Alive(context.Background(), target, 5))
}

func TestBackend_AliveFallsBackToSystemctl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		out    []byte
		err    error
		expect bool
	}{
		{name: "active", out: []byte("active\n"), expect: true},
		{name: "inactive with exit status", out: []byte("inactive\n"), err: errors.New("exit status 3"), expect: false},
		{name: "command failure", err: errors.New("executable file not found"), expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := &mocks.MockCommandExecutor{}
			cmd.On("Output", mock.Anything, "systemctl", []string{"--user", "is-active", testScope}).Return(tt.out, tt.err)
			b := NewBackend(&fakeUnits{stateErr: errBus}, cmd)

			assert.Equal(t, tt.expect, b.Alive(context.Background(), monitor.Target{Scope: testScope}, 5))
			cmd.AssertExpectations(t)
		})
	}
}

func TestBackend_ProcessAlive(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeProc(t, fs, "20", "", "20 (game.exe) S 1 20 20 0 -1")
	writeProc(t, fs, "21", "", "21 (wine (server)) Z 1 21 21 0 -1")
	writeProc(t, fs, "22", "", "")
	b := NewBackend(nil, nil, WithFs(fs))

	assert.True(t, b.ProcessAlive(20))
	assert.False(t, b.ProcessAlive(21))
	assert.True(t, b.ProcessAlive(22))
	assert.False(t, b.ProcessAlive(23))
	assert.False(t, b.ProcessAlive(0))
	assert.False(t, b.ProcessAlive(-1))
}

func TestBackend_ProcessAliveWithoutProc(t *testing.T) {
	t.Parallel()

	b := NewBackend(nil, nil, WithFs(afero.NewMemMapFs()))

	assert.True(t, b.ProcessAlive(os.Getpid()))
}

func TestProcessState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, byte('R'), processState("1 (a) R 0"))
	assert.Equal(t, byte('Z'), processState("1 (a) b) Z 0"))
	assert.Equal(t, byte(0), processState("garbage"))
	assert.Equal(t, byte(0), processState("1 (a)"))
}

func TestBackend_StopScope(t *testing.T) {
	t.Parallel()

	bus := &fakeUnits{}
	b := NewBackend(bus, nil)
	require.NoError(t, b.StopScope(context.Background(), testScope))
	assert.Equal(t, []string{testScope}, bus.stopped)

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, "systemctl", []string{"--user", "stop", testScope}).Return(nil)
	b = NewBackend(&fakeUnits{stopErr: errBus}, cmd)
	require.NoError(t, b.StopScope(context.Background(), testScope))
	cmd.AssertExpectations(t)

	var _ monitor.ScopeStopper = b
}

func TestBackend_StopScopeFailure(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, "systemctl", []string{"--user", "stop", testScope}).Return(errors.New("exit status 5"))
	b := NewBackend(nil, cmd)

	err := b.StopScope(context.Background(), testScope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), testScope)
}

func TestBackend_NoForeground(t *testing.T) {
	t.Parallel()

	b := NewBackend(nil, nil)

	_, err := b.ForegroundPID()
	require.ErrorIs(t, err, monitor.ErrForegroundUnsupported)
	assert.Nil(t, b.VisibleWindowPIDs([]int{1, 2}))
}

func TestInScope(t *testing.T) {
	t.Parallel()

	assert.True(t, inScope("0::/a/"+testScope, testScope))
	assert.True(t, inScope("1:name=systemd:/a/"+testScope+"/x\n0::/other", testScope))
	assert.False(t, inScope("0::/a/x"+testScope, testScope))
	assert.False(t, inScope("", testScope))
}
