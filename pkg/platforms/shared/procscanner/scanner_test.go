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

package procscanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLister(procs ...ProcessInfo) Lister {
	return func(context.Context) ([]ProcessInfo, error) {
		return procs, nil
	}
}

func TestScanner_DirMatcher(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gameDir := filepath.Join(root, "Game")
	require.NoError(t, os.MkdirAll(filepath.Join(gameDir, "bin"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Game2"), 0o750))

	s := New(WithSelfPID(1), WithLister(staticLister(
		ProcessInfo{PID: 30, Exe: filepath.Join(gameDir, "bin", "helper.exe")},
		ProcessInfo{PID: 10, Exe: filepath.Join(gameDir, "game.exe")},
		ProcessInfo{PID: 20, Exe: filepath.Join(root, "Game2", "game.exe")},
		ProcessInfo{PID: 40, Name: "explorer.exe"},
		ProcessInfo{PID: 1, Exe: filepath.Join(gameDir, "reina.exe")},
	)))

	assert.Equal(t, []int{10, 30}, s.Scan(context.Background(), NewDirMatcher(gameDir)))
}

func TestScanner_ListFailure(t *testing.T) {
	t.Parallel()

	s := New(WithLister(func(context.Context) ([]ProcessInfo, error) {
		return nil, errors.New("access denied")
	}))

	assert.Empty(t, s.Scan(context.Background(), MatcherFunc(func(ProcessInfo) bool { return true })))
	assert.False(t, s.Running(context.Background(), NewNameMatcher("Magpie.exe")))
}

func TestNameMatcher(t *testing.T) {
	t.Parallel()

	m := NewNameMatcher("Magpie.exe")

	tests := []struct {
		name string
		proc ProcessInfo
		want bool
	}{
		{name: "exact name", proc: ProcessInfo{Name: "Magpie.exe"}, want: true},
		{name: "case insensitive", proc: ProcessInfo{Name: "magpie.EXE"}, want: true},
		{name: "exe base", proc: ProcessInfo{Exe: filepath.Join("tools", "Magpie.exe")}, want: true},
		{name: "other", proc: ProcessInfo{Name: "MagpieHelper.exe"}, want: false},
		{name: "empty", proc: ProcessInfo{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Match(tt.proc))
		})
	}
}

func TestOrMatcher(t *testing.T) {
	t.Parallel()

	m := NewOrMatcher(NewNameMatcher("a.exe"), NewNameMatcher("b.exe"))

	assert.True(t, m.Match(ProcessInfo{Name: "b.exe"}))
	assert.False(t, m.Match(ProcessInfo{Name: "c.exe"}))
	assert.False(t, NewOrMatcher().Match(ProcessInfo{Name: "a.exe"}))
}

func TestDirMatcher_EmptyInputs(t *testing.T) {
	t.Parallel()

	assert.False(t, NewDirMatcher("").Match(ProcessInfo{Exe: "/usr/bin/game"}))
	assert.False(t, NewDirMatcher("/usr/bin").Match(ProcessInfo{Name: "game"}))
}

func TestSystemProcesses_IncludesSelf(t *testing.T) {
	t.Parallel()

	procs, err := SystemProcesses(context.Background())
	require.NoError(t, err)

	var found bool
	for _, p := range procs {
		if p.PID == os.Getpid() {
			found = true
			break
		}
	}
	assert.True(t, found)
}
