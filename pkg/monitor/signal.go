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

import "sync"

// StopSignal is a flag that can be raised exactly once and observed from
// any goroutine, either by polling Raised or by selecting on Done.
type StopSignal struct {
	ch   chan struct{}
	once sync.Once
}

// NewStopSignal returns a lowered signal.
func NewStopSignal() *StopSignal {
	return &StopSignal{ch: make(chan struct{})}
}

// Raise sets the signal. It reports true only for the call that actually
// raised it.
func (s *StopSignal) Raise() bool {
	raised := false
	s.once.Do(func() {
		close(s.ch)
		raised = true
	})
	return raised
}

// Raised reports whether the signal has been set.
func (s *StopSignal) Raised() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done is closed when the signal is raised.
func (s *StopSignal) Done() <-chan struct{} {
	return s.ch
}
