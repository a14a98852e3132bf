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

// Package linux implements the Linux process backend on top of systemd
// user scopes.
package linux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
	"golang.org/x/sys/unix"
)

const procRoot = "/proc"

// Backend follows a game through the systemd scope it was launched in.
// Window focus is not available, so a session counts time while its scope
// is active.
type Backend struct {
	bus     UnitManager
	ctl     UnitManager
	fs      afero.Fs
	selfPID int
}

type BackendOption func(*Backend)

// WithFs replaces the filesystem used to read /proc.
func WithFs(fs afero.Fs) BackendOption {
	return func(b *Backend) {
		b.fs = fs
	}
}

// WithSelfPID sets the PID excluded from enumeration.
func WithSelfPID(pid int) BackendOption {
	return func(b *Backend) {
		b.selfPID = pid
	}
}

// NewBackend creates a backend using bus for unit queries and systemctl
// through exec when a bus call fails. bus may be nil.
func NewBackend(bus UnitManager, exec command.Executor, opts ...BackendOption) *Backend {
	b := &Backend{
		bus:     bus,
		ctl:     &ctlManager{exec: exec},
		fs:      afero.NewOsFs(),
		selfPID: os.Getpid(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enumerate lists the processes in the target's scope, reading cgroup
// membership from /proc when the manager can't be asked.
func (b *Backend) Enumerate(ctx context.Context, target monitor.Target) []int {
	if target.Scope == "" {
		return nil
	}

	var pids []int
	var err error
	if b.bus != nil {
		pids, err = b.bus.UnitPIDs(ctx, target.Scope)
	}
	if b.bus == nil || err != nil {
		if err != nil {
			log.Debug().Err(err).Str("scope", target.Scope).Msg("unit process query failed, scanning cgroups")
		}
		pids = b.scanCgroups(target.Scope)
	}

	out := make([]int, 0, len(pids))
	for _, pid := range pids {
		if pid > 0 && pid != b.selfPID {
			out = append(out, pid)
		}
	}
	sort.Ints(out)
	return out
}

func (b *Backend) scanCgroups(scope string) []int {
	entries, err := afero.ReadDir(b.fs, procRoot)
	if err != nil {
		log.Debug().Err(err).Msg("failed to read proc")
		return nil
	}

	var pids []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		data, err := afero.ReadFile(b.fs, filepath.Join(procRoot, e.Name(), "cgroup"))
		if err != nil {
			continue
		}
		if inScope(string(data), scope) {
			pids = append(pids, pid)
		}
	}
	return pids
}

// inScope reports whether a /proc/<pid>/cgroup file places the process in
// the scope unit or below it.
func inScope(cgroup, scope string) bool {
	for _, line := range strings.Split(cgroup, "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		for _, elem := range strings.Split(parts[2], "/") {
			if elem == scope {
				return true
			}
		}
	}
	return false
}

// Alive reports whether the target's scope is active. Without a scope the
// single process is checked.
func (b *Backend) Alive(ctx context.Context, target monitor.Target, pid int) bool {
	if target.Scope == "" {
		return b.ProcessAlive(pid)
	}

	if b.bus != nil {
		active, err := b.bus.UnitActive(ctx, target.Scope)
		if err == nil {
			return active
		}
		log.Debug().Err(err).Str("scope", target.Scope).Msg("unit state query failed, using systemctl")
	}

	active, err := b.ctl.UnitActive(ctx, target.Scope)
	if err != nil {
		log.Debug().Err(err).Str("scope", target.Scope).Msg("failed to check scope state")
		return false
	}
	return active
}

// ProcessAlive checks /proc for the process, treating zombies as exited.
// Without /proc it falls back to signal 0.
func (b *Backend) ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	if ok, _ := afero.DirExists(b.fs, procRoot); !ok {
		err := unix.Kill(pid, 0)
		return err == nil || errors.Is(err, unix.EPERM)
	}

	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	if ok, _ := afero.DirExists(b.fs, dir); !ok {
		return false
	}
	stat, err := afero.ReadFile(b.fs, filepath.Join(dir, "stat"))
	if err != nil {
		return true
	}
	return processState(string(stat)) != 'Z'
}

// processState returns the state field of /proc/<pid>/stat. The command
// name may contain spaces and parentheses, so the field after the last ')'
// is used.
func processState(stat string) byte {
	i := strings.LastIndexByte(stat, ')')
	if i < 0 || i+2 >= len(stat) {
		return 0
	}
	return stat[i+2]
}

// Terminate asks a single process to exit.
func (*Backend) Terminate(_ context.Context, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}

// StopScope stops every process of the scope.
func (b *Backend) StopScope(ctx context.Context, scope string) error {
	if b.bus != nil {
		err := b.bus.StopUnit(ctx, scope)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Str("scope", scope).Msg("unit stop failed, using systemctl")
	}
	//nolint:wrapcheck // already descriptive
	return b.ctl.StopUnit(ctx, scope)
}

// ResetFailed clears a failed state left by an earlier run of the scope so
// the unit name can be reused.
func (b *Backend) ResetFailed(ctx context.Context, scope string) error {
	if b.bus != nil {
		err := b.bus.ResetFailed(ctx, scope)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Str("scope", scope).Msg("unit reset failed, using systemctl")
	}
	//nolint:wrapcheck // already descriptive
	return b.ctl.ResetFailed(ctx, scope)
}

func (*Backend) ForegroundPID() (int, error) {
	return 0, monitor.ErrForegroundUnsupported
}

func (*Backend) ExecutablePath(int) (string, error) {
	return "", monitor.ErrForegroundUnsupported
}

func (*Backend) VisibleWindowPIDs([]int) []int {
	return nil
}
