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

// Package api serves the JSON-RPC websocket API used by the frontend to
// launch games and receive session events.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/api/client"
	"github.com/wind-mask/ReinaManager/pkg/api/methods"
	"github.com/wind-mask/ReinaManager/pkg/api/middleware"
	"github.com/wind-mask/ReinaManager/pkg/api/models"
	"github.com/wind-mask/ReinaManager/pkg/api/models/requests"
	"github.com/wind-mask/ReinaManager/pkg/api/validation"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/platforms"
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}

var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}

var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}

var JSONRPCErrorInvalidParams = models.ErrorObject{
	Code:    -32602,
	Message: "Invalid params",
}

var JSONRPCErrorInternalError = models.ErrorObject{
	Code:    -32603,
	Message: "Internal error",
}

var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

var errUnknownMethod = errors.New("unknown method")

const shutdownTimeout = 5 * time.Second

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	models.MethodLaunch:          methods.HandleLaunch,
	models.MethodStop:            methods.HandleStop,
	models.MethodSessions:        methods.HandleSessions,
	models.MethodSessionsHistory: methods.HandleSessionsHistory,
	models.MethodVersion:         methods.HandleVersion,
}

// Services are the dependencies method handlers are given.
type Services struct {
	Platform platforms.Platform
	Config   *config.Instance
	Sessions requests.Sessions
	// History may be nil when play history is disabled.
	History requests.History
	// Limiter may be nil to disable rate limiting.
	Limiter *middleware.IPRateLimiter
}

// Server routes websocket connections to the method handlers and
// broadcasts notifications to every connected client.
type Server struct {
	ctx    context.Context //nolint:containedctx // service lifetime
	svc    Services
	melody *melody.Melody
	router chi.Router
}

//nolint:gocritic // services struct copied once at startup
func NewServer(ctx context.Context, svc Services) *Server {
	s := &Server{
		ctx:    ctx,
		svc:    svc,
		melody: melody.New(),
	}
	s.melody.Upgrader.CheckOrigin = s.checkOrigin
	s.melody.HandleMessage(s.handleWSMessage)
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(s.svc.Config.AllowedIPs())))
	if s.svc.Limiter != nil {
		r.Use(middleware.HTTPRateLimitMiddleware(s.svc.Limiter))
	}
	r.Use(chimiddleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{},
	}))

	handleWS := func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("handling websocket request")
		}
	}
	r.Get("/api", handleWS)
	r.Get(client.APIPath, handleWS)

	return r
}

// allowedOrigins always includes the desktop webview origins.
func (s *Server) allowedOrigins() []string {
	origins := []string{
		"http://localhost:*",
		"http://127.0.0.1:*",
		"tauri://localhost",
		"http://tauri.localhost",
		"https://tauri.localhost",
	}
	return append(origins, s.svc.Config.AllowedOrigins()...)
}

// checkOrigin accepts clients without an Origin header, such as the CLI,
// and browsers on an allowed origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins() {
		if matchOrigin(allowed, origin) {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("rejected websocket origin")
	return false
}

func matchOrigin(pattern, origin string) bool {
	if pattern == "*" || strings.EqualFold(pattern, origin) {
		return true
	}
	prefix, suffix, ok := strings.Cut(pattern, "*")
	if !ok {
		return false
	}
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) &&
		strings.HasSuffix(origin, suffix)
}

func maybeUUID(req models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

func (s *Server) handleRequest(env requests.RequestEnv, req models.RequestObject) (any, error) {
	log.Debug().Str("method", req.Method).RawJSON("params", nonEmptyJSON(req.Params)).Msg("received request")

	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownMethod, req.Method)
	}

	env.ID = *req.ID
	env.Params = req.Params

	return fn(env)
}

func nonEmptyJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

// errorObject maps a handler error to a JSON-RPC error carrying the
// error text.
func errorObject(err error) models.ErrorObject {
	var verr *validation.Error
	switch {
	case errors.Is(err, errUnknownMethod):
		return models.ErrorObject{Code: JSONRPCErrorMethodNotFound.Code, Message: err.Error()}
	case errors.As(err, &verr),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: err.Error()}
	default:
		return models.ErrorObject{Code: JSONRPCErrorServerError.Code, Message: err.Error()}
	}
}

func sendResponse(session *melody.Session, id uuid.UUID, result any) error {
	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}

	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}

func sendError(session *melody.Session, id uuid.UUID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}

	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}
	return nil
}

// Broadcast sends every notification to all connected clients until ctx
// is cancelled.
func (s *Server) Broadcast(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("stopping notification broadcast")
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}

			if err := s.melody.Broadcast(data); err != nil {
				log.Error().Err(err).Str("method", notif.Method).Msg("broadcasting notification")
			}
		}
	}
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// ping command for heartbeat operation
	if bytes.Equal(msg, []byte("ping")) {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	if s.svc.Limiter != nil && !s.svc.Limiter.Allow(session.Request.RemoteAddr) {
		log.Warn().Str("addr", session.Request.RemoteAddr).Msg("websocket rate limit exceeded")
		errObj := models.ErrorObject{Code: JSONRPCErrorServerError.Code, Message: "Rate limit exceeded"}
		if err := sendError(session, uuid.Nil, errObj); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if !json.Valid(msg) {
		log.Error().Msg("data not valid json")
		if err := sendError(session, uuid.Nil, JSONRPCErrorParseError); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil || req.Method == "" {
		log.Error().Err(err).Msg("message is not a request")
		if err := sendError(session, maybeUUID(req), JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.JSONRPC != "2.0" {
		log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
		if err := sendError(session, maybeUUID(req), JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.ID == nil {
		log.Info().Str("method", req.Method).Msg("received notification, ignoring")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, config.APIRequestTimeout)
	defer cancel()

	resp, err := s.handleRequest(requests.RequestEnv{
		Ctx:      ctx,
		Platform: s.svc.Platform,
		Config:   s.svc.Config,
		Sessions: s.svc.Sessions,
		History:  s.svc.History,
		IsLocal:  middleware.IsLoopbackAddr(session.Request.RemoteAddr),
	}, req)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("request failed")
		if err := sendError(session, *req.ID, errorObject(err)); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if err := sendResponse(session, *req.ID, resp); err != nil {
		log.Error().Err(err).Msg("error sending response")
	}
}

// Close disconnects every websocket client.
func (s *Server) Close() error {
	if err := s.melody.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
		return fmt.Errorf("failed to close websocket sessions: %w", err)
	}
	return nil
}

// Start serves the API on the configured address until ctx is cancelled.
func Start(
	ctx context.Context,
	svc Services, //nolint:gocritic // services struct copied once at startup
	notifications <-chan models.Notification,
) error {
	srv := NewServer(ctx, svc)

	if svc.Limiter != nil {
		svc.Limiter.StartCleanup(ctx)
	}
	go srv.Broadcast(ctx, notifications)

	var lc net.ListenConfig
	addr := svc.Config.APIListen()
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: config.APIRequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("starting API server")
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	log.Debug().Msg("shutting down API server")
	if err := srv.Close(); err != nil {
		log.Warn().Err(err).Msg("closing websocket sessions")
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}
