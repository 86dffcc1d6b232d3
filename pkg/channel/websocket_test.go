// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/log"
)

// echoHandler responds to every request with its method as the result
type echoHandler struct{}

func (echoHandler) HandleRequest(ctx context.Context, msg codec.Message) codec.Message {
	resp, _ := codec.Success(*msg.ID, msg.Method)
	return resp
}

func dialTestServer(t *testing.T, srv *WebSocketServer) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, srv *WebSocketServer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !srv.Connected() {
		if time.Now().After(deadline) {
			t.Fatal("listener never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequestResponseRoundTrip(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())
	conn := dialTestServer(t, srv)

	require.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"id":3,"method":"loadBannerAd","args":{}}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(err)

	msg, err := codec.Standard{}.Decode(data)
	require.NoError(err)
	require.NotNil(msg.ID)
	require.Equal(int64(3), *msg.ID)
	require.JSONEq(`"loadBannerAd"`, string(msg.Result))
}

func TestInvokeReachesListener(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())
	conn := dialTestServer(t, srv)
	waitConnected(t, srv)

	require.NoError(srv.Invoke(codec.Call("onAdEvent", map[string]any{
		"adId":      int64(1),
		"eventName": "onAdLoaded",
	})))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(err)

	msg, err := codec.Standard{}.Decode(data)
	require.NoError(err)
	require.Nil(msg.ID)
	require.Equal("onAdEvent", msg.Method)
	require.Equal("onAdLoaded", msg.Args["eventName"])
}

func TestInvokeWithoutListener(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())
	require.ErrorIs(srv.Invoke(codec.Call("onAdEvent", nil)), ErrNoListener)
}

func TestNonRequestMessagesIgnored(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())
	conn := dialTestServer(t, srv)

	// An event-shaped message (no id) and a response-shaped message
	// (no method) must not produce replies.
	require.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"method":"onAdEvent","args":{}}`)))
	require.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"id":9,"result":true}`)))
	require.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"id":10,"method":"ping","args":{}}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(err)

	msg, err := codec.Standard{}.Decode(data)
	require.NoError(err)
	require.Equal(int64(10), *msg.ID)
}

func TestChannelNameEnforced(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	// A listener naming a different channel is refused before the upgrade.
	hdr := http.Header{}
	hdr.Set(HeaderName, "plugins.flutter.io/something_else")
	_, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.Error(err)
	require.NotNil(resp)
	require.Equal(http.StatusBadRequest, resp.StatusCode)
	require.False(srv.Connected())

	// Naming the right channel connects.
	hdr.Set(HeaderName, Name)
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(err)
	t.Cleanup(func() { conn.Close() })
	waitConnected(t, srv)
}

func TestNewConnectionReplacesOld(t *testing.T) {
	require := require.New(t)
	srv := NewWebSocketServer(codec.Standard{}, echoHandler{}, log.NoOp())

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(err)
	t.Cleanup(func() { first.Close() })
	waitConnected(t, srv)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(err)
	t.Cleanup(func() { second.Close() })

	// The first connection is closed server-side when the second one
	// attaches; its read failing proves the handoff completed.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = first.ReadMessage()
	require.Error(err)

	require.NoError(srv.Invoke(codec.Call("onAdEvent", map[string]any{"adId": int64(1)})))

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := second.ReadMessage()
	require.NoError(err)
	require.Contains(string(data), "onAdEvent")
}
