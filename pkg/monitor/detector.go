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
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/pathutil"
)

// DefaultForegroundPoll is how often the detector samples the foreground
// window.
const DefaultForegroundPoll = 200 * time.Millisecond

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	Probe      ForegroundProbe
	Candidates *CandidateSet
	Clock      clockwork.Clock
	// OnSwitch is called from the detector goroutine whenever best changes.
	OnSwitch func(pid int)
	GameDir  string
	Interval time.Duration
}

// Detector follows the foreground window on a goroutine locked to its own
// OS thread. The loop reads the result through Foreground without making
// any syscalls.
type Detector struct {
	probe      ForegroundProbe
	candidates *CandidateSet
	clock      clockwork.Clock
	onSwitch   func(pid int)
	halt       *StopSignal
	cancel     context.CancelFunc
	done       chan struct{}
	gameDir    string
	interval   time.Duration
	selfPID    int
	foreground atomic.Bool
	started    atomic.Bool
}

// NewDetector returns a stopped detector.
func NewDetector(cfg DetectorConfig) *Detector {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultForegroundPoll
	}
	onSwitch := cfg.OnSwitch
	if onSwitch == nil {
		onSwitch = func(int) {}
	}
	return &Detector{
		probe:      cfg.Probe,
		candidates: cfg.Candidates,
		clock:      clock,
		onSwitch:   onSwitch,
		halt:       NewStopSignal(),
		done:       make(chan struct{}),
		gameDir:    cfg.GameDir,
		interval:   interval,
		selfPID:    os.Getpid(),
	}
}

// Foreground reports whether a candidate owned the foreground window at
// the last poll.
func (d *Detector) Foreground() bool {
	return d.foreground.Load()
}

// Stopped reports whether the detector's stop signal has been raised.
func (d *Detector) Stopped() bool {
	return d.halt.Raised()
}

// Start launches the poll goroutine. It runs until ctx is cancelled or Stop
// is called.
func (d *Detector) Start(ctx context.Context) {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	go d.run(ctx)
}

// Stop raises the stop signal and waits for the poll goroutine to exit.
// It is safe to call more than once and on a detector that never started.
func (d *Detector) Stop() {
	d.halt.Raise()
	if !d.started.Load() {
		return
	}
	d.cancel()
	<-d.done
}

func (d *Detector) run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("foreground detector panicked")
		}
		d.halt.Raise()
		d.foreground.Store(false)
		close(d.done)
	}()

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if d.halt.Raised() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-d.halt.Done():
			return
		case <-ticker.Chan():
			d.poll()
		}
	}
}

// poll samples the foreground window once.
func (d *Detector) poll() {
	pid, err := d.probe.ForegroundPID()
	if err != nil || pid <= 0 {
		d.foreground.Store(false)
		return
	}

	if d.candidates.Contains(pid) {
		d.foreground.Store(true)
		if d.candidates.SetBest(pid) {
			log.Debug().Int("pid", pid).Msg("foreground moved to another candidate")
			d.onSwitch(pid)
		}
		return
	}

	if pid == d.selfPID {
		d.foreground.Store(false)
		return
	}

	exe, err := d.probe.ExecutablePath(pid)
	if err != nil || !pathutil.IsWithinDir(d.gameDir, exe) {
		d.foreground.Store(false)
		return
	}

	log.Info().Int("pid", pid).Str("exe", exe).Msg("foreground process escaped candidate set, adopting")
	d.candidates.Insert(pid)
	d.candidates.SetBest(pid)
	d.foreground.Store(true)
	d.onSwitch(pid)
}
