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

//go:build windows

// Package windows implements the Windows process backend, game spawner and
// hotkey injection.
package windows

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"github.com/wind-mask/ReinaManager/pkg/platforms/shared/procscanner"
	"golang.org/x/sys/windows"
)

const stillActive = 259 // STILL_ACTIVE exit code for running processes

// Backend tracks games by the location of their executables and by window
// focus.
type Backend struct {
	scanner *procscanner.Scanner
}

func NewBackend(scanner *procscanner.Scanner) *Backend {
	if scanner == nil {
		scanner = procscanner.New()
	}
	return &Backend{scanner: scanner}
}

// Enumerate returns all processes whose executable is inside the game
// directory.
func (b *Backend) Enumerate(ctx context.Context, target monitor.Target) []int {
	if target.GameDir == "" {
		return nil
	}
	return b.scanner.Scan(ctx, procscanner.NewDirMatcher(target.GameDir))
}

func (b *Backend) Alive(_ context.Context, _ monitor.Target, pid int) bool {
	return b.ProcessAlive(pid)
}

// ProcessAlive opens pid with the minimum query right and checks its exit
// code. Processes that can't be opened are treated as not running.
func (*Backend) ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	//nolint:gosec // G115 Windows PIDs are 32-bit and positive here
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() { _ = windows.CloseHandle(handle) }()

	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == stillActive
}

func (*Backend) Terminate(_ context.Context, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}

	//nolint:gosec // G115 Windows PIDs are 32-bit and positive here
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer func() { _ = windows.CloseHandle(handle) }()

	if err := windows.TerminateProcess(handle, 1); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	log.Debug().Int("pid", pid).Msg("terminated process")
	return nil
}

// ForegroundPID returns the owner of the foreground window, or 0 when there
// is none or it is minimized.
func (*Backend) ForegroundPID() (int, error) {
	hwnd := foregroundWindow()
	if hwnd == 0 || windowMinimized(hwnd) {
		return 0, nil
	}
	return windowPID(hwnd), nil
}

func (*Backend) ExecutablePath(pid int) (string, error) {
	//nolint:wrapcheck // already descriptive
	return procscanner.ExecutablePath(context.Background(), pid)
}

func (*Backend) VisibleWindowPIDs(pids []int) []int {
	return visibleWindowPIDs(pids)
}

// Running reports whether a process with the executable name is running.
func (b *Backend) Running(name string) bool {
	return b.scanner.Running(context.Background(), procscanner.NewNameMatcher(name))
}
