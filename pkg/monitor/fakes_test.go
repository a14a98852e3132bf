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

package monitor

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
)

var errAccessDenied = errors.New("access is denied")

// fakeBackend is an in-memory process table.
type fakeBackend struct {
	alive        map[int]bool
	exes         map[int]string
	terminateErr map[int]error
	scopeAlive   *bool
	aliveCalls   chan int
	enumerated   []int
	visible      []int
	terminated   []int
	fgErr        error
	enumCalls    int
	foreground   int
	mu           syncutil.Mutex
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		alive:        make(map[int]bool),
		exes:         make(map[int]string),
		terminateErr: make(map[int]error),
		aliveCalls:   make(chan int, 1024),
	}
}

func (b *fakeBackend) setAlive(pid int, alive bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alive[pid] = alive
}

func (b *fakeBackend) setEnumerated(pids ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enumerated = pids
}

func (b *fakeBackend) setForeground(pid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foreground = pid
}

func (b *fakeBackend) unsupportedForeground() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fgErr = ErrForegroundUnsupported
}

func (b *fakeBackend) enumerateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enumCalls
}

func (b *fakeBackend) Enumerate(_ context.Context, _ Target) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enumCalls++
	return slices.Clone(b.enumerated)
}

func (b *fakeBackend) Alive(_ context.Context, _ Target, pid int) bool {
	b.mu.Lock()
	alive := b.alive[pid]
	if b.scopeAlive != nil {
		alive = *b.scopeAlive
	}
	b.mu.Unlock()

	select {
	case b.aliveCalls <- pid:
	default:
	}
	return alive
}

func (b *fakeBackend) ProcessAlive(pid int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alive[pid]
}

func (b *fakeBackend) Terminate(_ context.Context, pid int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.terminateErr[pid]; err != nil {
		return err
	}
	b.alive[pid] = false
	b.terminated = append(b.terminated, pid)
	return nil
}

func (b *fakeBackend) ForegroundPID() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.foreground, b.fgErr
}

func (b *fakeBackend) ExecutablePath(pid int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exe, ok := b.exes[pid]
	if !ok {
		return "", errAccessDenied
	}
	return exe, nil
}

func (b *fakeBackend) VisibleWindowPIDs(pids []int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []int
	for _, pid := range pids {
		if slices.Contains(b.visible, pid) {
			out = append(out, pid)
		}
	}
	return out
}

// scopeBackend adds scope level stopping to fakeBackend.
type scopeBackend struct {
	*fakeBackend
	stopErr error
	stopped []string
}

func (b *scopeBackend) StopScope(_ context.Context, scope string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopErr != nil {
		return b.stopErr
	}
	b.stopped = append(b.stopped, scope)
	return nil
}

type emitted struct {
	payload any
	name    string
}

type recordingEmitter struct {
	err    error
	ch     chan emitted
	events []emitted
	mu     syncutil.Mutex
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{ch: make(chan emitted, 1024)}
}

func (e *recordingEmitter) Emit(name string, payload any) error {
	e.mu.Lock()
	e.events = append(e.events, emitted{name: name, payload: payload})
	err := e.err
	e.mu.Unlock()

	select {
	case e.ch <- emitted{name: name, payload: payload}:
	default:
	}
	return err
}

func (e *recordingEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.name)
	}
	return out
}

func (e *recordingEmitter) count(name string) int {
	n := 0
	for _, got := range e.names() {
		if got == name {
			n++
		}
	}
	return n
}

func (e *recordingEmitter) next(t *testing.T) emitted {
	t.Helper()
	select {
	case ev := <-e.ch:
		return ev
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for session event")
		return emitted{}
	}
}

type memoryRecorder struct {
	err     error
	records []Record
	mu      syncutil.Mutex
}

func (r *memoryRecorder) RecordSession(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func (r *memoryRecorder) all() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

func waitAliveCall(t *testing.T, b *fakeBackend) {
	t.Helper()
	select {
	case <-b.aliveCalls:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for liveness check")
	}
}
