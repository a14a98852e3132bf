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
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestSession(b Backend, target Target, opts SessionOptions) *Session {
	opts.Backend = b
	if opts.Clock == nil {
		opts.Clock = clockwork.NewFakeClock()
	}
	return NewSession(target, opts)
}

func TestSessionSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		enumerated     []int
		alive          []int
		visible        []int
		foreground     int
		initial        int
		wantBest       int
		wantCandidates []int
	}{
		{
			name:           "foreground candidate wins",
			enumerated:     []int{10, 11, 12},
			visible:        []int{11},
			foreground:     12,
			initial:        10,
			wantBest:       12,
			wantCandidates: []int{10, 11, 12},
		},
		{
			name:           "visible window beats enumeration order",
			enumerated:     []int{10, 11},
			visible:        []int{11},
			initial:        10,
			wantBest:       11,
			wantCandidates: []int{10, 11},
		},
		{
			name:           "first enumerated",
			enumerated:     []int{20, 21},
			initial:        5,
			wantBest:       20,
			wantCandidates: []int{20, 21},
		},
		{
			name:           "alive initial pid missing from enumeration is added",
			enumerated:     []int{20},
			alive:          []int{5},
			initial:        5,
			wantBest:       20,
			wantCandidates: []int{20, 5},
		},
		{
			name:           "only the initial pid",
			alive:          []int{5},
			initial:        5,
			wantBest:       5,
			wantCandidates: []int{5},
		},
		{
			name:           "dead initial pid is not added",
			enumerated:     []int{20},
			initial:        5,
			wantBest:       20,
			wantCandidates: []int{20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBackend()
			b.setEnumerated(tt.enumerated...)
			b.visible = tt.visible
			b.setForeground(tt.foreground)
			for _, pid := range tt.alive {
				b.setAlive(pid, true)
			}

			s := newTestSession(b, Target{GameID: 1, InitialPID: tt.initial}, SessionOptions{})
			s.seed(context.Background())

			assert.Equal(t, tt.wantBest, s.Candidates().Best())
			assert.Equal(t, tt.wantCandidates, s.Candidates().Snapshot())
			assert.False(t, s.assumeActive)
		})
	}
}

func TestSessionSeed_NothingFoundReportsInitialPID(t *testing.T) {
	t.Parallel()

	s := newTestSession(newFakeBackend(), Target{GameID: 1, InitialPID: 77}, SessionOptions{})
	s.seed(context.Background())

	assert.Equal(t, 0, s.Candidates().Len())
	assert.Equal(t, 77, s.bestPID())
}

func TestSessionTick_SingleFailureDoesNotRescan(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10)
	b.setAlive(10, true)
	em := newRecordingEmitter()

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{Emitter: em})
	s.seed(context.Background())
	seedCalls := b.enumerateCalls()

	b.setAlive(10, false)
	assert.True(t, s.tick(context.Background()))
	assert.Equal(t, 1, s.failures)

	b.setAlive(10, true)
	assert.True(t, s.tick(context.Background()))
	assert.Equal(t, 0, s.failures)

	assert.Equal(t, seedCalls, b.enumerateCalls(), "no rescan")
	assert.Zero(t, em.count(EventProcessSwitched))
	assert.Equal(t, 10, s.Candidates().Best())
}

func TestSessionTick_ThreeFailuresRescan(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10)
	b.setAlive(10, true)
	em := newRecordingEmitter()

	s := newTestSession(b, Target{GameID: 7}, SessionOptions{Emitter: em})
	s.seed(context.Background())

	b.setAlive(10, false)
	b.setAlive(11, true)
	b.setEnumerated(11)

	assert.True(t, s.tick(context.Background()))
	assert.True(t, s.tick(context.Background()))
	assert.Zero(t, em.count(EventProcessSwitched), "two failures are not enough")

	assert.True(t, s.tick(context.Background()))
	assert.Equal(t, 1, em.count(EventProcessSwitched))
	assert.Equal(t, 11, s.Candidates().Best())
	assert.Equal(t, 0, s.failures)
	assert.Equal(t, StateTracking, s.State())

	ev := em.next(t)
	assert.Equal(t, EventProcessSwitched, ev.name)
	assert.Equal(t, ProcessSwitched{GameID: 7, NewProcessID: 11}, ev.payload)
}

func TestSessionTick_RescanEmptyEnds(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10)
	b.setAlive(10, true)

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{})
	s.seed(context.Background())

	b.setAlive(10, false)
	b.setEnumerated()

	assert.True(t, s.tick(context.Background()))
	assert.True(t, s.tick(context.Background()))
	assert.False(t, s.tick(context.Background()))
}

func TestSessionTick_StopSignalEnds(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.setEnumerated(10)
	b.setAlive(10, true)

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{})
	s.seed(context.Background())
	s.StopSignal().Raise()

	assert.False(t, s.tick(context.Background()))
}

func TestSessionTick_CountsOnlyForegroundSeconds(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.setEnumerated(10)
	b.setAlive(10, true)

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{})
	s.seed(context.Background())
	s.detector = NewDetector(DetectorConfig{Probe: b, Candidates: s.Candidates()})

	s.tick(context.Background())
	assert.Equal(t, int64(0), s.ActiveSeconds(), "no poll yet, not foreground")

	b.setForeground(10)
	s.detector.poll()
	s.tick(context.Background())
	s.tick(context.Background())
	assert.Equal(t, int64(2), s.ActiveSeconds())

	b.setForeground(999)
	s.detector.poll()
	s.tick(context.Background())
	assert.Equal(t, int64(2), s.ActiveSeconds())
}

func TestSessionTick_PrunesDeadCandidates(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10, 11, 12)
	for _, pid := range []int{10, 11, 12} {
		b.setAlive(pid, true)
	}

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{})
	s.seed(context.Background())

	b.setAlive(11, false)
	s.tick(context.Background())

	assert.Equal(t, []int{10, 12}, s.Candidates().Snapshot())
}

func TestSessionTick_ScopeAliveRefreshesEmptySet(t *testing.T) {
	t.Parallel()

	active := true
	b := newFakeBackend()
	b.unsupportedForeground()
	b.scopeAlive = &active
	b.setEnumerated(10)
	b.setAlive(10, true)

	s := newTestSession(b, Target{GameID: 1, Scope: "reina_game_1.scope"}, SessionOptions{})
	s.seed(context.Background())

	// launcher exited, the game now runs as another process in the scope
	b.setAlive(10, false)
	b.setAlive(20, true)
	b.setEnumerated(20)

	assert.True(t, s.tick(context.Background()))
	assert.Equal(t, []int{20}, s.Candidates().Snapshot())
	assert.Equal(t, int64(1), s.ActiveSeconds())
	assert.Equal(t, 0, s.failures)
}

func TestSessionTick_TimeUpdateInterval(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10)
	b.setAlive(10, true)
	em := newRecordingEmitter()

	s := newTestSession(b, Target{GameID: 3}, SessionOptions{Emitter: em, ReportInterval: 5})
	s.seed(context.Background())

	for range 12 {
		s.tick(context.Background())
	}

	assert.Equal(t, 2, em.count(EventTimeUpdate))
	ev := em.next(t)
	update, ok := ev.payload.(TimeUpdate)
	require.True(t, ok)
	assert.Equal(t, int64(5), update.TotalSeconds)
	assert.Equal(t, int64(0), update.TotalMinutes)
	assert.Equal(t, 10, update.ProcessID)
}

func TestSessionTick_EmitFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(10)
	b.setAlive(10, true)
	em := newRecordingEmitter()
	em.err = errors.New("window closed")

	s := newTestSession(b, Target{GameID: 1}, SessionOptions{Emitter: em})
	s.seed(context.Background())

	assert.True(t, s.tick(context.Background()))
	assert.Equal(t, int64(1), s.ActiveSeconds())
}

func TestSessionTick_DebounceProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		b := newFakeBackend()
		b.unsupportedForeground()
		b.setEnumerated(10)
		b.setAlive(10, true)
		em := newRecordingEmitter()

		s := newTestSession(b, Target{GameID: 1}, SessionOptions{Emitter: em})
		s.seed(context.Background())

		pattern := rapid.SliceOfN(rapid.Bool(), 1, 50).Draw(t, "alive")
		wantRescans := 0
		failures := 0
		for _, alive := range pattern {
			b.setAlive(10, alive)
			if !s.tick(context.Background()) {
				t.Fatalf("session ended while enumeration still finds the game")
			}
			if alive {
				failures = 0
				continue
			}
			failures++
			if failures == MaxConsecutiveFailures {
				wantRescans++
				failures = 0
			}
		}

		if got := em.count(EventProcessSwitched); got != wantRescans {
			t.Fatalf("pattern %v: got %d rescans, want %d", pattern, got, wantRescans)
		}
	})
}

func TestSessionTick_ActiveNeverExceedsElapsedProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		clock := clockwork.NewFakeClock()
		b := newFakeBackend()
		b.setEnumerated(10)
		b.setAlive(10, true)

		s := newTestSession(b, Target{GameID: 1}, SessionOptions{Clock: clock})
		grace := time.Duration(rapid.IntRange(0, 10).Draw(t, "grace")) * time.Second
		clock.Advance(grace)
		s.seed(context.Background())
		s.detector = NewDetector(DetectorConfig{Probe: b, Candidates: s.Candidates()})

		steps := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 80).Draw(t, "steps")
		for _, step := range steps {
			clock.Advance(TickInterval)
			switch step {
			case 0:
				b.setForeground(10)
			case 1:
				b.setForeground(0)
			case 2:
				b.setAlive(10, !b.ProcessAlive(10))
			}
			s.detector.poll()
			s.tick(context.Background())

			elapsed := int64(clock.Since(s.startTime) / time.Second)
			if s.ActiveSeconds() > elapsed {
				t.Fatalf("active %d > elapsed %d", s.ActiveSeconds(), elapsed)
			}
		}
	})
}

func startRun(t *testing.T, s *Session) (context.CancelFunc, chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		s.Run(ctx)
	}()
	return cancel, exited
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for session to exit")
	}
}

func TestSessionRun_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	b := newFakeBackend()
	b.unsupportedForeground()
	b.setEnumerated(100)
	b.setAlive(100, true)
	em := newRecordingEmitter()
	rec := &memoryRecorder{}
	reg := NewRegistry(b)

	s := NewSession(Target{GameID: 9, InitialPID: 100}, SessionOptions{
		Backend:  b,
		Emitter:  em,
		Recorder: rec,
		Registry: reg,
		Clock:    clock,
		Grace:    3 * time.Second,
	})
	require.NoError(t, reg.Register(s))
	_, exited := startRun(t, s)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(3 * time.Second)

	started := em.next(t)
	assert.Equal(t, EventSessionStarted, started.name)
	assert.Equal(t, SessionStarted{GameID: 9, ProcessID: 100, StartTime: s.startTime.Unix()}, started.payload)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	for i := 1; i <= 5; i++ {
		clock.Advance(TickInterval)
		ev := em.next(t)
		require.Equal(t, EventTimeUpdate, ev.name)
		assert.Equal(t, int64(i), ev.payload.(TimeUpdate).TotalSeconds)
	}

	// drain the liveness checks of the ticks above
	for range 5 {
		waitAliveCall(t, b)
	}

	b.setAlive(100, false)
	b.setEnumerated()
	for range MaxConsecutiveFailures {
		clock.Advance(TickInterval)
		waitAliveCall(t, b)
	}

	ended := em.next(t)
	require.Equal(t, EventSessionEnded, ended.name)
	payload := ended.payload.(SessionEnded)
	assert.Equal(t, int64(5), payload.TotalSeconds)
	assert.Equal(t, int64(0), payload.TotalMinutes)
	assert.Equal(t, 100, payload.ProcessID)
	assert.LessOrEqual(t, payload.TotalSeconds, payload.EndTime-payload.StartTime)

	waitClosed(t, exited)
	assert.False(t, reg.Running(9))
	assert.Equal(t, StateEnded, s.State())

	records := rec.all()
	require.Len(t, records, 1)
	assert.Equal(t, Record{
		GameID:       9,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		TotalMinutes: 0,
		TotalSeconds: 5,
		FinalPID:     100,
	}, records[0])
}

func TestSessionRun_StopDuringGraceEmitsNothing(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	b := newFakeBackend()
	em := newRecordingEmitter()
	rec := &memoryRecorder{}
	reg := NewRegistry(b)

	s := NewSession(Target{GameID: 2}, SessionOptions{
		Backend:  b,
		Emitter:  em,
		Recorder: rec,
		Registry: reg,
		Clock:    clock,
		Grace:    9 * time.Second,
	})
	require.NoError(t, reg.Register(s))
	_, exited := startRun(t, s)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	_, err := reg.Stop(ctx, 2)
	require.NoError(t, err)

	waitClosed(t, exited)
	assert.Empty(t, em.names())
	assert.Empty(t, rec.all())
	assert.Equal(t, StateEnded, s.State())
}

func TestSessionRun_ContextCancelFinalizes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	b := newFakeBackend()
	b.setEnumerated(100)
	b.setAlive(100, true)
	em := newRecordingEmitter()
	rec := &memoryRecorder{}

	s := NewSession(Target{GameID: 4, InitialPID: 100}, SessionOptions{
		Backend:  b,
		Emitter:  em,
		Recorder: rec,
		Clock:    clock,
	})
	cancelRun, exited := startRun(t, s)

	started := em.next(t)
	require.Equal(t, EventSessionStarted, started.name)

	// the detector and the tick loop both wait on the clock
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	cancelRun()
	waitClosed(t, exited)

	assert.Equal(t, []string{EventSessionStarted, EventSessionEnded}, em.names())
	require.Len(t, rec.all(), 1)
	require.NotNil(t, s.detector)
	assert.True(t, s.detector.Stopped())
}
