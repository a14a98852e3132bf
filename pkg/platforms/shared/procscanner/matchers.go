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

package procscanner

import (
	"path/filepath"
	"strings"

	"github.com/wind-mask/ReinaManager/pkg/helpers/pathutil"
)

// DirMatcher matches processes whose executable lives under a directory.
type DirMatcher struct {
	dir string
}

func NewDirMatcher(dir string) *DirMatcher {
	return &DirMatcher{dir: dir}
}

func (m *DirMatcher) Match(proc ProcessInfo) bool {
	if m.dir == "" || proc.Exe == "" {
		return false
	}
	return pathutil.IsWithinDir(m.dir, proc.Exe)
}

// NameMatcher matches executable names case-insensitively, with or
// without their directory.
type NameMatcher struct {
	names map[string]bool
}

func NewNameMatcher(names ...string) *NameMatcher {
	m := &NameMatcher{
		names: make(map[string]bool, len(names)),
	}
	for _, name := range names {
		m.names[strings.ToLower(name)] = true
	}
	return m
}

func (m *NameMatcher) Match(proc ProcessInfo) bool {
	if m.names[strings.ToLower(proc.Name)] {
		return true
	}
	return proc.Exe != "" && m.names[strings.ToLower(filepath.Base(proc.Exe))]
}

type OrMatcher struct {
	matchers []Matcher
}

func NewOrMatcher(matchers ...Matcher) *OrMatcher {
	return &OrMatcher{matchers: matchers}
}

func (m *OrMatcher) Match(proc ProcessInfo) bool {
	for _, matcher := range m.matchers {
		if matcher.Match(proc) {
			return true
		}
	}
	return false
}
