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

package helpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/require"
	"github.com/wind-mask/ReinaManager/pkg/config"
)

// WebSocketTestServer is a bare melody server on the API path, used to test
// clients without the real method handlers.
type WebSocketTestServer struct {
	Server *httptest.Server
	Melody *melody.Melody
}

// NewWebSocketTestServer starts a server that passes every text message to
// handler. A nil handler ignores messages.
func NewWebSocketTestServer(t *testing.T, path string, handler func(*melody.Session, []byte)) *WebSocketTestServer {
	t.Helper()
	m := melody.New()
	if handler != nil {
		m.HandleMessage(handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if err := m.HandleRequest(w, r); err != nil {
			t.Logf("websocket request failed: %v", err)
		}
	})

	wsts := &WebSocketTestServer{
		Server: httptest.NewServer(mux),
		Melody: m,
	}
	t.Cleanup(wsts.Close)
	return wsts
}

// Port returns the port the server listens on.
func (wsts *WebSocketTestServer) Port(t *testing.T) int {
	t.Helper()
	u, err := url.Parse(wsts.Server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

// Dial connects a websocket client to path on the server.
func (wsts *WebSocketTestServer) Dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	return DialWebSocket(t, wsts.Server, path)
}

// Close shuts down the test server.
func (wsts *WebSocketTestServer) Close() {
	_ = wsts.Melody.Close()
	wsts.Server.Close()
}

// DialWebSocket connects to path on an httptest server.
func DialWebSocket(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = path

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// NewTestConfig creates a config backed by a file in a temp dir.
func NewTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

// NewTestConfigWithPort creates a test config whose API port is port.
func NewTestConfigWithPort(t *testing.T, port int) *config.Instance {
	t.Helper()
	cfg := NewTestConfig(t)
	cfg.SetAPIPort(port)
	return cfg
}
