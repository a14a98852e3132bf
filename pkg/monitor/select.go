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

import "slices"

// selectBest picks the best PID from candidates: the foreground owner, then
// the first candidate with a visible window, then the first candidate.
// fallback is returned when there are no candidates.
func selectBest(probe ForegroundProbe, candidates []int, fallback int) int {
	if len(candidates) == 0 {
		return fallback
	}

	if fg, err := probe.ForegroundPID(); err == nil && fg > 0 && slices.Contains(candidates, fg) {
		return fg
	}

	visible := probe.VisibleWindowPIDs(candidates)
	for _, pid := range candidates {
		if slices.Contains(visible, pid) {
			return pid
		}
	}

	return candidates[0]
}
