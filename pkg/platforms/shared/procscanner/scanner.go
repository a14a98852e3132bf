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

// Package procscanner finds running processes by executable location or
// name.
package procscanner

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

type ProcessInfo struct {
	Name string
	Exe  string
	PID  int
}

type Matcher interface {
	// Match returns true if this process is wanted.
	Match(proc ProcessInfo) bool
}

type MatcherFunc func(proc ProcessInfo) bool

func (f MatcherFunc) Match(proc ProcessInfo) bool {
	return f(proc)
}

// Lister returns a snapshot of the process table.
type Lister func(ctx context.Context) ([]ProcessInfo, error)

type Scanner struct {
	list    Lister
	selfPID int
}

type Option func(*Scanner)

// WithLister replaces the system process table.
func WithLister(l Lister) Option {
	return func(s *Scanner) {
		s.list = l
	}
}

// WithSelfPID sets the PID excluded from every scan.
func WithSelfPID(pid int) Option {
	return func(s *Scanner) {
		s.selfPID = pid
	}
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		list:    SystemProcesses,
		selfPID: os.Getpid(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the sorted PIDs of matching processes. Processes that can't
// be inspected are skipped, and a failed listing is an empty result.
func (s *Scanner) Scan(ctx context.Context, m Matcher) []int {
	procs, err := s.list(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list processes")
		return nil
	}

	var pids []int
	for _, p := range procs {
		if p.PID <= 0 || p.PID == s.selfPID {
			continue
		}
		if m.Match(p) {
			pids = append(pids, p.PID)
		}
	}
	sort.Ints(pids)
	return pids
}

// Running reports whether any process matches.
func (s *Scanner) Running(ctx context.Context, m Matcher) bool {
	return len(s.Scan(ctx, m)) > 0
}

// SystemProcesses reads the process table with gopsutil. Processes whose
// executable path is unreadable keep their name so name matching still works.
func SystemProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info := ProcessInfo{PID: int(p.Pid)}
		if exe, err := p.ExeWithContext(ctx); err == nil {
			info.Exe = exe
		}
		if name, err := p.NameWithContext(ctx); err == nil {
			info.Name = name
		}
		if info.Exe == "" && info.Name == "" {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ExecutablePath returns the full executable path of pid.
func ExecutablePath(ctx context.Context, pid int) (string, error) {
	//nolint:gosec // G115 PIDs fit in int32
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	exe, err := p.ExeWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read executable of process %d: %w", pid, err)
	}
	return exe, nil
}
