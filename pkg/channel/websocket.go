// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/log"
)

const writeTimeout = 10 * time.Second

// RequestHandler consumes one inbound request envelope and produces the
// response envelope for it.
type RequestHandler interface {
	HandleRequest(ctx context.Context, msg codec.Message) codec.Message
}

// WebSocketServer is the websocket end of the bridge channel. It serves
// the channel endpoint, accepts one logical listener at a time (a new
// connection replaces the previous one), forwards inbound requests to
// the handler, and implements Channel for outbound events.
type WebSocketServer struct {
	codec   codec.Codec
	handler RequestHandler
	log     log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	session string
}

// NewWebSocketServer creates a server speaking the given codec
func NewWebSocketServer(c codec.Codec, handler RequestHandler, logger log.Logger) *WebSocketServer {
	return &WebSocketServer{
		codec:   c,
		handler: handler,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SetHandler installs the request handler. The bridge is constructed
// on top of the channel, so the handler is attached after the fact.
func (s *WebSocketServer) SetHandler(handler RequestHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// ServeHTTP upgrades the connection and runs the read loop until the
// listener disconnects.
func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if name := r.Header.Get(HeaderName); name != "" && name != Name {
		s.log.Warn(fmt.Sprintf("rejecting listener for unknown channel %q", name))
		http.Error(w, "unknown channel", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(fmt.Sprintf("channel upgrade failed: %v", err))
		return
	}

	session := uuid.NewString()

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.session = session
	s.mu.Unlock()

	s.log.Info(fmt.Sprintf("channel listener connected (session %s)", session))
	s.readLoop(r.Context(), conn, session)
}

func (s *WebSocketServer) readLoop(ctx context.Context, conn *websocket.Conn, session string) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
			s.session = ""
		}
		s.mu.Unlock()
		conn.Close()
		s.log.Info(fmt.Sprintf("channel listener disconnected (session %s)", session))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := s.codec.Decode(data)
		if err != nil {
			s.log.Warn(fmt.Sprintf("dropping undecodable inbound message: %v", err))
			continue
		}

		// Responses and fire-and-forget calls from the listener side are
		// not part of the inbound surface; only requests are routed.
		if msg.ID == nil || msg.Method == "" {
			s.log.Warn(fmt.Sprintf("dropping non-request inbound message (method %q)", msg.Method))
			continue
		}

		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()
		if handler == nil {
			s.log.Warn("dropping request: no handler installed")
			continue
		}

		resp := handler.HandleRequest(ctx, msg)
		if err := s.write(conn, resp); err != nil {
			s.log.Warn(fmt.Sprintf("failed to write response: %v", err))
			return
		}
	}
}

// Invoke sends one envelope to the connected listener
func (s *WebSocketServer) Invoke(msg codec.Message) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNoListener
	}
	return s.write(conn, msg)
}

func (s *WebSocketServer) write(conn *websocket.Conn, msg codec.Message) error {
	data, err := s.codec.Encode(msg)
	if err != nil {
		return err
	}

	// gorilla connections allow one concurrent writer; serialize under
	// the same mutex that guards the conn itself.
	s.mu.Lock()
	defer s.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Connected reports whether a listener is currently attached
func (s *WebSocketServer) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}
