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
	"slices"

	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
)

// CandidateSet is an insertion-ordered set of PIDs with a best PID that is
// always a member while the set is non-empty. It is shared between the
// session loop and the foreground detector. The lock only ever guards
// in-memory mutation.
type CandidateSet struct {
	pids []int
	best int
	mu   syncutil.Mutex
}

// NewCandidateSet returns a set seeded with pids. The first valid PID
// becomes best.
func NewCandidateSet(pids ...int) *CandidateSet {
	c := &CandidateSet{}
	for _, pid := range pids {
		c.Insert(pid)
	}
	return c
}

// Insert adds pid and reports whether it was new. Non-positive PIDs are
// ignored.
func (c *CandidateSet) Insert(pid int) bool {
	if pid <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.pids, pid) {
		return false
	}
	c.pids = append(c.pids, pid)
	if c.best == 0 {
		c.best = pid
	}
	return true
}

// Contains reports whether pid is a candidate.
func (c *CandidateSet) Contains(pid int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.pids, pid)
}

// Len returns the number of candidates.
func (c *CandidateSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pids)
}

// Snapshot returns a copy of the candidates in insertion order.
func (c *CandidateSet) Snapshot() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.pids)
}

// Best returns the best PID, 0 when the set is empty.
func (c *CandidateSet) Best() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.best
}

// SetBest makes pid the best PID and reports whether best changed. PIDs
// that are not candidates are ignored.
func (c *CandidateSet) SetBest(pid int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pid == c.best || !slices.Contains(c.pids, pid) {
		return false
	}
	c.best = pid
	return true
}

// Replace swaps the whole set for pids. best is used if it is one of them,
// otherwise the first PID is.
func (c *CandidateSet) Replace(pids []int, best int) {
	next := make([]int, 0, len(pids))
	for _, pid := range pids {
		if pid > 0 && !slices.Contains(next, pid) {
			next = append(next, pid)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pids = next
	switch {
	case slices.Contains(next, best):
		c.best = best
	case len(next) > 0:
		c.best = next[0]
	default:
		c.best = 0
	}
}

// RetainRunning drops every candidate for which alive returns false and
// returns the removed PIDs. alive is called without the lock held, so it
// may make OS calls. If best is removed the first survivor takes over.
func (c *CandidateSet) RetainRunning(alive func(pid int) bool) []int {
	var dead []int
	for _, pid := range c.Snapshot() {
		if !alive(pid) {
			dead = append(dead, pid)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pids = slices.DeleteFunc(c.pids, func(pid int) bool {
		return slices.Contains(dead, pid)
	})
	if !slices.Contains(c.pids, c.best) {
		c.best = 0
		if len(c.pids) > 0 {
			c.best = c.pids[0]
		}
	}
	return dead
}
