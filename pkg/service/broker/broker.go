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

// Package broker fans session notifications out to several consumers
// without letting a slow consumer block the sessions.
package broker

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
)

// Broker reads from one source channel and copies each notification to
// every subscriber.
type Broker struct {
	source      <-chan models.Notification
	subscribers map[int]chan models.Notification
	mu          syncutil.RWMutex
	nextID      int
	closed      bool
}

func NewBroker(source <-chan models.Notification) *Broker {
	return &Broker{
		source:      source,
		subscribers: make(map[int]chan models.Notification),
	}
}

// Run broadcasts until the source closes or ctx is cancelled, then closes
// every subscriber channel.
func (b *Broker) Run(ctx context.Context) {
	defer b.closeAll()
	for {
		select {
		case notif, ok := <-b.source:
			if !ok {
				log.Debug().Msg("broker: source channel closed")
				return
			}
			b.broadcast(notif)
		case <-ctx.Done():
			log.Debug().Msg("broker: context cancelled, shutting down")
			return
		}
	}
}

// broadcast drops the notification for subscribers whose buffer is full.
func (b *Broker) broadcast(notif models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- notif:
		default:
			log.Warn().
				Int("subscriber", id).
				Str("method", notif.Method).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

// Subscribe returns a channel buffered to bufferSize and a function that
// ends the subscription. Subscribing after Run has returned yields a closed
// channel.
func (b *Broker) Subscribe(bufferSize int) (<-chan models.Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Notification, bufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	log.Debug().Int("subscriber", id).Int("buffer", bufferSize).Msg("new subscriber registered")

	return ch, func() { b.unsubscribe(id) }
}

func (b *Broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Len returns the number of subscribers.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	b.closed = true
}
