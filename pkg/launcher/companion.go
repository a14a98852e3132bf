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

package launcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
)

// DefaultUpscalerSettle is the wait for the game window before the
// upscaler hotkey is sent.
const DefaultUpscalerSettle = time.Second

// HotkeySender injects the keyboard shortcut that makes the upscaler
// scale the foreground window.
type HotkeySender interface {
	SendUpscaleHotkey() error
}

// UpscalerCompanion starts Magpie in tray mode if needed and sends its
// activation hotkey.
type UpscalerCompanion struct {
	Exec  command.Executor
	Keys  HotkeySender
	Paths PathProvider
	Clock clockwork.Clock
	// Running reports whether a process with the given executable name is
	// running.
	Running func(name string) bool
	Settle  time.Duration
}

// Engage starts the upscaler when it is not running and sends the hotkey.
// A failed hotkey is only logged since the upscaler may already be
// scaling the window.
func (u *UpscalerCompanion) Engage(ctx context.Context) error {
	path := u.Paths.UpscalerPath()
	if path == "" {
		return ErrUpscalerNotConfigured
	}

	wasRunning := u.Running != nil && u.Running(filepath.Base(path))
	if !wasRunning {
		if err := u.Exec.Start(ctx, path, "-t"); err != nil {
			return fmt.Errorf("failed to start upscaler %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("started upscaler, waiting for game window")
	}

	clock := u.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	settle := u.Settle
	if settle <= 0 {
		settle = DefaultUpscalerSettle
	}
	select {
	case <-ctx.Done():
		return nil
	case <-clock.After(settle):
	}

	if err := u.Keys.SendUpscaleHotkey(); err != nil {
		log.Warn().Err(err).Bool("wasRunning", wasRunning).Msg("failed to send upscaler hotkey")
		return nil
	}
	log.Info().Msg("upscaler engaged")
	return nil
}
