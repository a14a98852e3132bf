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

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(contents), 0o600))
	return dir
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, CfgFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_schema = 1")
	assert.Equal(t, filepath.Join(dir, CfgFile), cfg.Path())
	assert.False(t, cfg.DebugLogging())
}

func TestNewConfig_LoadsOverDefaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
config_schema = 1
debug_logging = true

[launch]
upscaler = 'C:\Tools\Magpie\Magpie.exe'

[monitor]
report_interval = 5
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, `C:\Tools\Magpie\Magpie.exe`, cfg.UpscalerPath())
	assert.Empty(t, cfg.RegionToolPath())
	assert.Equal(t, int64(5), cfg.ReportInterval())
	assert.Equal(t, DefaultWrapper, cfg.WrapperCommand())
	assert.Equal(t, DefaultAPIPort, cfg.APIPort())
}

func TestNewConfig_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config_schema = 99\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewConfig_InvalidToml(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config_schema = [\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
}

func TestNewConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(CfgEnv, path)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.FileExists(t, path)
}

func TestInstance_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetRegionToolPath(`D:\LE\LEProc.exe`)
	cfg.SetWrapperCommand("umu-run")
	cfg.SetStartupGrace(12 * time.Second)
	cfg.SetAPIPort(9000)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, `D:\LE\LEProc.exe`, reloaded.RegionToolPath())
	assert.Equal(t, "umu-run", reloaded.WrapperCommand())
	assert.Equal(t, 12*time.Second, reloaded.StartupGrace(3*time.Second))
	assert.Equal(t, 9000, reloaded.APIPort())
	assert.Equal(t, "127.0.0.1:9000", reloaded.APIListen())
}

func TestInstance_Durations(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
config_schema = 1

[monitor]
startup_grace = "not-a-duration"
foreground_poll = "50ms"

[launch]
companion_delay = "2s"
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, 9*time.Second, cfg.StartupGrace(9*time.Second), "invalid value falls back")
	assert.Equal(t, 50*time.Millisecond, cfg.ForegroundPoll())
	assert.Equal(t, 2*time.Second, cfg.CompanionDelay())
}

func TestInstance_EmptyWrapperDisables(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
config_schema = 1

[launch]
wrapper = ""
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Empty(t, cfg.WrapperCommand())
}

func TestInstance_HistoryEnabled(t *testing.T) {
	t.Parallel()

	on, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	assert.True(t, on.HistoryEnabled())

	dir := writeConfig(t, "config_schema = 1\n[history]\nenabled = false\n")
	off, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.False(t, off.HistoryEnabled())
}

func TestLoad_KeepsValuesWithoutSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{name: "empty file", contents: ""},
		{name: "whitespace only", contents: "\n\n"},
		{name: "no schema key", contents: "debug_logging = false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeConfig(t, "config_schema = 1\ndebug_logging = true\n[launch]\nwrapper = 'proton'\n")
			cfg, err := NewConfig(dir, BaseDefaults)
			require.NoError(t, err)

			require.NoError(t, os.WriteFile(cfg.Path(), []byte(tt.contents), 0o600))
			require.ErrorIs(t, cfg.Load(), ErrMissingSchema)

			assert.True(t, cfg.DebugLogging())
			assert.Equal(t, "proton", cfg.WrapperCommand())
		})
	}
}
