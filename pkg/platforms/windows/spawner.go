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

package windows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/launcher"
	"golang.org/x/sys/windows"
)

// errElevationRequired is ERROR_ELEVATION_REQUIRED, returned by
// CreateProcess for executables whose manifest requires administrator.
const errElevationRequired = syscall.Errno(740)

type Spawner struct {
	exec command.Executor
}

func NewSpawner(exec command.Executor) *Spawner {
	return &Spawner{exec: exec}
}

// commandLine returns the program and arguments for spec. With region
// emulation the wrapper is started with the game as its first argument.
func commandLine(spec *launcher.Spec) (string, []string) {
	if spec.RegionTool == "" {
		return spec.ExecutablePath, spec.Args
	}
	args := make([]string, 0, len(spec.Args)+1)
	args = append(args, spec.ExecutablePath)
	args = append(args, spec.Args...)
	return spec.RegionTool, args
}

func (s *Spawner) Spawn(ctx context.Context, spec *launcher.Spec) (launcher.Spawned, error) {
	name, args := commandLine(spec)
	pid, err := s.exec.Spawn(ctx, command.SpawnOptions{
		Name: name,
		Args: args,
		Dir:  spec.WorkDir,
	})
	if err != nil {
		//nolint:wrapcheck // orchestrator adds path context
		return launcher.Spawned{}, err
	}
	return launcher.Spawned{PID: pid}, nil
}

func (*Spawner) NeedsElevation(err error) bool {
	return errors.Is(err, errElevationRequired)
}

// SpawnElevated starts the game through the shell "runas" verb, which
// shows the UAC prompt.
func (*Spawner) SpawnElevated(_ context.Context, spec *launcher.Spec) (launcher.Spawned, error) {
	name, args := commandLine(spec)
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, windows.EscapeArg(a))
	}

	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return launcher.Spawned{}, fmt.Errorf("failed to encode verb: %w", err)
	}
	file, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return launcher.Spawned{}, fmt.Errorf("failed to encode path: %w", err)
	}
	params, err := windows.UTF16PtrFromString(strings.Join(quoted, " "))
	if err != nil {
		return launcher.Spawned{}, fmt.Errorf("failed to encode arguments: %w", err)
	}
	dir, err := windows.UTF16PtrFromString(spec.WorkDir)
	if err != nil {
		return launcher.Spawned{}, fmt.Errorf("failed to encode working directory: %w", err)
	}

	info := &windows.SHELLEXECUTEINFO{
		Mask:       windows.SEE_MASK_NOCLOSEPROCESS,
		Verb:       verb,
		File:       file,
		Parameters: params,
		Directory:  dir,
		Show:       windows.SW_SHOWNORMAL,
	}
	info.Size = uint32(unsafe.Sizeof(*info))

	if err := windows.ShellExecuteEx(info); err != nil {
		return launcher.Spawned{}, fmt.Errorf("elevated launch failed: %w", err)
	}
	if info.Process == 0 {
		return launcher.Spawned{}, errors.New("elevated launch returned no process handle")
	}
	defer func() { _ = windows.CloseHandle(info.Process) }()

	pid, err := windows.GetProcessId(info.Process)
	if err != nil {
		return launcher.Spawned{}, fmt.Errorf("failed to get elevated process id: %w", err)
	}
	log.Info().Uint32("pid", pid).Str("path", name).Msg("started elevated process")
	return launcher.Spawned{PID: int(pid)}, nil
}
