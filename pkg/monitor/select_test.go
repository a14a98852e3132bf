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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		candidates []int
		visible    []int
		foreground int
		fallback   int
		want       int
	}{
		{
			name:       "foreground wins over visible",
			candidates: []int{1, 2, 3},
			visible:    []int{2},
			foreground: 3,
			want:       3,
		},
		{
			name:       "visible window when foreground is foreign",
			candidates: []int{1, 2, 3},
			visible:    []int{3, 2},
			foreground: 99,
			want:       2,
		},
		{
			name:       "first enumerated without windows",
			candidates: []int{4, 5},
			want:       4,
		},
		{
			name:     "fallback when empty",
			fallback: 42,
			want:     42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newFakeBackend()
			b.visible = tt.visible
			b.foreground = tt.foreground

			assert.Equal(t, tt.want, selectBest(b, tt.candidates, tt.fallback))
		})
	}
}

func TestSelectBest_UnsupportedForeground(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.unsupportedForeground()
	b.foreground = 2

	assert.Equal(t, 1, selectBest(b, []int{1, 2}, 0))
}
