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

package client

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/olahol/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wind-mask/ReinaManager/pkg/testing/helpers"
)

func echoResult(result any) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		var request map[string]any
		if err := json.Unmarshal(msg, &request); err != nil {
			return
		}
		data, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"result":  result,
			"id":      request["id"],
		})
		_ = session.Write(data)
	}
}

// unusedPort returns a port with nothing listening on it.
func unusedPort(t *testing.T) int {
	t.Helper()
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestLocalClient_ValidRequest(t *testing.T) {
	t.Parallel()

	type received struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	requests := make(chan received, 1)
	server := helpers.NewWebSocketTestServer(t, APIPath, func(session *melody.Session, msg []byte) {
		var req received
		_ = json.Unmarshal(msg, &req)
		requests <- req
		echoResult(map[string]any{"success": true, "processId": 77})(session, msg)
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "launch", `{"gameId":1}`)
	require.NoError(t, err)

	req := <-requests
	assert.Equal(t, "launch", req.Method)
	assert.JSONEq(t, `{"gameId":1}`, string(req.Params))
	assert.JSONEq(t, `{"success":true,"processId":77}`, result)
}

func TestLocalClient_EmptyParams(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, func(session *melody.Session, msg []byte) {
		var request map[string]any
		_ = json.Unmarshal(msg, &request)
		_, hasParams := request["params"]
		echoResult(hasParams)(session, msg)
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "sessions", "")
	require.NoError(t, err)
	assert.Equal(t, "false", result)
}

func TestLocalClient_InvalidParams(t *testing.T) {
	t.Parallel()

	cfg := helpers.NewTestConfigWithPort(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, "launch", "not valid json")
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestLocalClient_ErrorResponse(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, func(session *melody.Session, msg []byte) {
		var request map[string]any
		_ = json.Unmarshal(msg, &request)
		data, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"id":      request["id"],
			"error":   map[string]any{"code": -32000, "message": "no such session: 4"},
		})
		_ = session.Write(data)
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	_, err := LocalClient(context.Background(), cfg, "stop", `{"gameId":4}`)
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "no such session: 4", err.Error())
}

func TestLocalClient_IgnoresMismatchedIDs(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, func(session *melody.Session, msg []byte) {
		wrong, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"id":      "00000000-0000-0000-0000-000000000001",
			"result":  "wrong",
		})
		_ = session.Write(wrong)
		oldVersion, _ := json.Marshal(map[string]any{"jsonrpc": "1.0", "result": "old"})
		_ = session.Write(oldVersion)
		echoResult("right")(session, msg)
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "version", "")
	require.NoError(t, err)
	assert.Equal(t, `"right"`, result)
}

func TestLocalClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := LocalClient(ctx, cfg, "version", "")
	require.Error(t, err)
}

func TestLocalClient_ConnectionFailure(t *testing.T) {
	t.Parallel()

	cfg := helpers.NewTestConfigWithPort(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, "version", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestWaitNotification_ReceivesMatchingMethod(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	go func() {
		// wait for the client connection before broadcasting
		for server.Melody.Len() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		other, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"method":  "time-update",
			"params":  map[string]any{"gameId": 1},
		})
		_ = server.Melody.Broadcast(other)
		ended, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0",
			"method":  "session-ended",
			"params":  map[string]any{"gameId": 1, "totalMinutes": 2},
		})
		_ = server.Melody.Broadcast(ended)
	}()

	result, err := WaitNotification(context.Background(), 5*time.Second, cfg, "session-ended")
	require.NoError(t, err)
	assert.JSONEq(t, `{"gameId":1,"totalMinutes":2}`, result)
}

func TestWaitNotification_Timeout(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	_, err := WaitNotification(context.Background(), 50*time.Millisecond, cfg, "session-ended")
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestWaitNotification_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := WaitNotification(ctx, -1, cfg, "session-ended")
	require.ErrorIs(t, err, ErrRequestCancelled)
}

func TestLocalAPIClient_Call(t *testing.T) {
	t.Parallel()

	server := helpers.NewWebSocketTestServer(t, APIPath, echoResult(map[string]any{"version": "1.0.0"}))
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	var c APIClient = NewLocalAPIClient(cfg)
	result, err := c.Call(context.Background(), "version", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0"}`, result)
}
