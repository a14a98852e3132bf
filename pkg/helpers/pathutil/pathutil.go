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

// Package pathutil compares filesystem paths the way the process monitor
// needs to: canonical where possible, raw string matching where not.
package pathutil

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeForComparison cleans a path, converts it to forward slashes and
// lowercases it.
func NormalizeForComparison(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	return strings.ToLower(p)
}

// HasPrefix checks if path is root or within root, respecting separator
// boundaries so "c:/games2/x.exe" does not match root "c:/games".
// Comparison is case-insensitive.
func HasPrefix(path, root string) bool {
	normPath := NormalizeForComparison(path)
	normRoot := NormalizeForComparison(root)

	if normRoot == "" || normRoot == "." {
		return false
	}
	if normPath == normRoot {
		return true
	}
	if !strings.HasSuffix(normRoot, "/") {
		normRoot += "/"
	}
	return strings.HasPrefix(normPath, normRoot)
}

// Canonicalize resolves symlinks and returns an absolute, cleaned path. It
// fails for paths that no longer exist or cannot be read.
func Canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err //nolint:wrapcheck // callers only branch on failure
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err //nolint:wrapcheck // callers only branch on failure
	}
	return abs, nil
}

// IsWithinDir reports whether path is dir or lies under it. Both sides are
// canonicalized first; if either fails (permission denied, deleted file)
// the raw paths are compared with a case-insensitive prefix match that
// still respects separator boundaries.
func IsWithinDir(dir, path string) bool {
	if dir == "" || path == "" {
		return false
	}

	canonDir, dirErr := Canonicalize(dir)
	canonPath, pathErr := Canonicalize(path)
	if dirErr == nil && pathErr == nil {
		return canonicalHasPrefix(canonPath, canonDir)
	}

	return HasPrefix(path, dir)
}

func canonicalHasPrefix(path, root string) bool {
	if runtime.GOOS == "windows" {
		return HasPrefix(path, root)
	}
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
