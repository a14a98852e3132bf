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

// Package command wraps os/exec behind an interface so launchers and the
// Linux systemd fallbacks can be tested without running real commands.
package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// SpawnOptions describes a long running child process such as a game.
type SpawnOptions struct {
	// Name is the program to run.
	Name string
	// Dir is the working directory, empty for the current one.
	Dir string
	// Args are passed to the program after Name.
	Args []string
	// Env entries are appended to the inherited environment.
	Env []string
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
}

// Executor provides an abstraction over exec.Command for testability.
type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start starts a command without waiting for it to complete.
	Start(ctx context.Context, name string, args ...string) error

	// Spawn starts a process that outlives ctx and returns its PID. The
	// child is reaped in the background.
	Spawn(ctx context.Context, opts SpawnOptions) (int, error)
}

// RealExecutor uses actual exec.Command to execute system commands.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Start starts a command without waiting for it to complete.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go reap(cmd)
	return nil
}

// Spawn starts opts.Name detached from ctx cancellation.
func (*RealExecutor) Spawn(ctx context.Context, opts SpawnOptions) (int, error) {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), opts.Name, opts.Args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	applyOptions(cmd, opts)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s in %q: %w", opts.Name, opts.Dir, err)
	}

	pid := cmd.Process.Pid
	go reap(cmd)
	return pid, nil
}

func reap(cmd *exec.Cmd) {
	err := cmd.Wait()
	if err != nil {
		log.Debug().Err(err).Str("cmd", cmd.Path).Msg("child process exited with error")
	}
}
