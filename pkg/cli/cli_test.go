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

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
	"github.com/wind-mask/ReinaManager/pkg/testing/mocks"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("reina", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestRun_NoFlags(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	handled, err := parseFlags(t).Run(context.Background(), c, io.Discard)
	require.NoError(t, err)
	assert.False(t, handled)
	c.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_Launch(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	c.On("Call", mock.Anything, models.MethodLaunch,
		`{"launchOptions":{"leLaunch":true,"magpie":false},"executablePath":"C:\\Games\\a.exe","args":["-w","1"],"gameId":7}`,
	).Return(`{"success":true}`, nil)

	var out bytes.Buffer
	f := parseFlags(t, "-launch", `C:\Games\a.exe`, "-game-id", "7", "-args", "-w 1", "-le")
	handled, err := f.Run(context.Background(), c, &out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "{\"success\":true}\n", out.String())
	c.AssertExpectations(t)
}

func TestRun_LaunchAndWait(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	c.On("Call", mock.Anything, models.MethodLaunch, mock.Anything).Return(`{}`, nil)
	c.SetupSessionEnded(`{"gameId":3,"totalMinutes":12}`)

	var out bytes.Buffer
	f := parseFlags(t, "-launch", "/games/a.sh", "-game-id", "3", "-wait")
	handled, err := f.Run(context.Background(), c, &out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, out.String(), `"totalMinutes":12`)
	c.AssertCalled(t, "WaitNotification", mock.Anything, time.Duration(-1), models.NotificationSessionEnded)
}

func TestRun_FlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "empty launch", args: []string{"-launch", ""}},
		{name: "launch without game id", args: []string{"-launch", "/games/a.sh"}},
		{name: "stop without id", args: []string{"-stop", "0"}},
		{name: "negative history id", args: []string{"-history", "-2"}},
		{name: "empty api", args: []string{"-api", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mocks.NewMockAPIClient()
			handled, err := parseFlags(t, tt.args...).Run(context.Background(), c, io.Discard)
			require.ErrorIs(t, err, ErrFlagValue)
			assert.True(t, handled)
			c.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRun_Stop(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	c.On("Call", mock.Anything, models.MethodStop, `{"gameId":9}`).
		Return("", errors.New("no such session"))

	handled, err := parseFlags(t, "-stop", "9").Run(context.Background(), c, io.Discard)
	assert.True(t, handled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such session")
}

func TestRun_Sessions(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	c.SetupSessionsResponse(&models.SessionsResponse{
		Sessions: []monitor.SessionInfo{{GameID: 4, ProcessID: 1200, State: "running"}},
	})

	var out bytes.Buffer
	handled, err := parseFlags(t, "-sessions").Run(context.Background(), c, &out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, out.String(), `"gameId":4`)
}

func TestRun_History(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockAPIClient()
	c.On("Call", mock.Anything, models.MethodSessionsHistory, `{"gameId":5}`).
		Return(`{"sessions":[],"gameId":5,"totalMinutes":0}`, nil)

	handled, err := parseFlags(t, "-history", "5").Run(context.Background(), c, io.Discard)
	require.NoError(t, err)
	assert.True(t, handled)
	c.AssertExpectations(t)
}

func TestRun_API(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		method string
		params string
	}{
		{name: "method only", value: "version", method: "version", params: ""},
		{name: "method and params", value: `stop:{"gameId":1}`, method: "stop", params: `{"gameId":1}`},
		{name: "colon in params", value: `launch:{"executablePath":"C:\\a.exe"}`, method: "launch", params: `{"executablePath":"C:\\a.exe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mocks.NewMockAPIClient()
			c.On("Call", mock.Anything, tt.method, tt.params).Return("{}", nil)

			handled, err := parseFlags(t, "-api", tt.value).Run(context.Background(), c, io.Discard)
			require.NoError(t, err)
			assert.True(t, handled)
			c.AssertExpectations(t)
		})
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	pl := mocks.NewMockPlatform()
	pl.On("ID").Return("linux")

	var out bytes.Buffer
	printVersion(&out, pl)
	assert.Equal(t, "Reina Manager v"+config.AppVersion+" (linux)\n", out.String())
}

// setup replaces the global logger, so it is not run in parallel.
func TestSetup(t *testing.T) {
	root := t.TempDir()
	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock(platforms.Settings{
		DataDir:   filepath.Join(root, "data"),
		ConfigDir: filepath.Join(root, "config"),
		LogDir:    filepath.Join(root, "logs"),
		TempDir:   filepath.Join(root, "tmp"),
	}, nil)

	defaults := config.BaseDefaults
	defaults.DebugLogging = true

	cfg, err := setup(pl, defaults, nil)
	require.NoError(t, err)
	assert.True(t, cfg.DebugLogging())

	_, err = os.Stat(filepath.Join(root, "logs"))
	require.NoError(t, err)
	_, err = os.Stat(cfg.Path())
	require.NoError(t, err)
}
