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

// Package notifications turns session events into API notifications.
package notifications

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wind-mask/ReinaManager/pkg/api/models"
)

var ErrQueueFull = errors.New("notification queue is full")

// Emitter queues session events for broadcast. It never blocks the
// session loop.
type Emitter struct {
	ns chan<- models.Notification
}

func NewEmitter(ns chan<- models.Notification) *Emitter {
	return &Emitter{ns: ns}
}

// Emit encodes payload as the params of a notification named after the
// event. A full queue drops the event and returns ErrQueueFull.
func (e *Emitter) Emit(name string, payload any) error {
	var params json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", name, err)
		}
		params = b
	}

	select {
	case e.ns <- models.Notification{Method: name, Params: params}:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrQueueFull, name)
	}
}
