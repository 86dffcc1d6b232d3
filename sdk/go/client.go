// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridgesdk is a Go client for the adbridge event channel. It
// plays the embedder side of the bridge: it issues load, show, and
// dispose requests, allocates ad identifiers, and surfaces onAdEvent
// notifications through a callback.
package bridgesdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adxyz/adbridge/pkg/channel"
)

// ErrClosed is returned for calls made after Close
var ErrClosed = errors.New("bridgesdk: client closed")

// EventHandler receives onAdEvent notifications. Fields carries the
// event payload minus adId and eventName.
type EventHandler func(adID int64, eventName string, fields map[string]any)

// RemoteError is a structured failure returned by the bridge
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type envelope struct {
	ID     *int64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Args   map[string]any  `json:"args,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RemoteError    `json:"error,omitempty"`
}

// Client is a connected bridge client
type Client struct {
	conn    *websocket.Conn
	onEvent EventHandler

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan envelope
	closed  bool

	nextCallID atomic.Int64
	nextAdID   atomic.Int64

	done chan struct{}
}

// Dial connects to the bridge channel endpoint and starts the read
// loop. onEvent may be nil; events are then discarded.
func Dial(ctx context.Context, url string, onEvent EventHandler) (*Client, error) {
	hdr := http.Header{}
	hdr.Set(channel.HeaderName, channel.Name)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, hdr)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:    conn,
		onEvent: onEvent,
		pending: make(map[int64]chan envelope),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// NextAdID allocates a fresh ad identifier. Identifiers are unique per
// client and the bridge rejects reuse while an ad is tracked.
func (c *Client) NextAdID() int64 {
	return c.nextAdID.Add(1) - 1
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.failPending()
			return
		}
		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch {
		case msg.ID != nil:
			c.mu.Lock()
			ch, ok := c.pending[*msg.ID]
			if ok {
				delete(c.pending, *msg.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
		case msg.Method == "onAdEvent":
			c.dispatchEvent(msg.Args)
		}
	}
}

func (c *Client) dispatchEvent(args map[string]any) {
	if c.onEvent == nil || args == nil {
		return
	}
	adID, ok := args["adId"].(float64)
	if !ok {
		return
	}
	name, ok := args["eventName"].(string)
	if !ok {
		return
	}
	fields := make(map[string]any, len(args))
	for k, v := range args {
		if k == "adId" || k == "eventName" {
			continue
		}
		fields[k] = v
	}
	c.onEvent(int64(adID), name, fields)
}

// failPending closes every in-flight call when the connection drops
func (c *Client) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]chan envelope)
	c.closed = true
	c.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

// Call issues a raw method call and decodes the result into out when
// out is non-nil.
func (c *Client) Call(ctx context.Context, method string, args map[string]any, out any) error {
	id := c.nextCallID.Add(1)
	ch := make(chan envelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	req := envelope{ID: &id, Method: method, Args: args}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out != nil && len(resp.Result) > 0 {
			return json.Unmarshal(resp.Result, out)
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	}
}

// Initialize starts the underlying advertising SDK
func (c *Client) Initialize(ctx context.Context) error {
	return c.Call(ctx, "MobileAds#initialize", map[string]any{}, nil)
}

// SetAppMuted mutes or unmutes ad audio app-wide
func (c *Client) SetAppMuted(ctx context.Context, muted bool) error {
	return c.Call(ctx, "MobileAds#setAppMuted", map[string]any{"muted": muted}, nil)
}

// AdRequest is the targeting payload attached to a load call
type AdRequest struct {
	Keywords                  []string `json:"keywords,omitempty"`
	ContentURL                string   `json:"contentUrl,omitempty"`
	NonPersonalizedAds        bool     `json:"nonPersonalizedAds,omitempty"`
	NeighboringContentURLs    []string `json:"neighboringContentUrls,omitempty"`
	MediationExtrasIdentifier string   `json:"mediationExtrasIdentifier,omitempty"`
}

func requestMap(req *AdRequest) map[string]any {
	if req == nil {
		return nil
	}
	data, _ := json.Marshal(req)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	return m
}

// LoadBannerAd loads a banner and returns its ad identifier
func (c *Client) LoadBannerAd(ctx context.Context, adUnitID string, width, height int, req *AdRequest) (int64, error) {
	adID := c.NextAdID()
	args := map[string]any{
		"adId":     adID,
		"adUnitId": adUnitID,
		"size":     map[string]any{"width": width, "height": height},
		"request":  requestMap(req),
	}
	if err := c.Call(ctx, "loadBannerAd", args, nil); err != nil {
		return 0, err
	}
	return adID, nil
}

// LoadNativeAd loads a native ad through a registered factory
func (c *Client) LoadNativeAd(ctx context.Context, adUnitID, factoryID string, req *AdRequest, customOptions map[string]any) (int64, error) {
	adID := c.NextAdID()
	args := map[string]any{
		"adId":      adID,
		"adUnitId":  adUnitID,
		"factoryId": factoryID,
		"request":   requestMap(req),
	}
	if customOptions != nil {
		args["customOptions"] = customOptions
	}
	if err := c.Call(ctx, "loadNativeAd", args, nil); err != nil {
		return 0, err
	}
	return adID, nil
}

// LoadInterstitialAd loads an interstitial and returns its identifier
func (c *Client) LoadInterstitialAd(ctx context.Context, adUnitID string, req *AdRequest) (int64, error) {
	adID := c.NextAdID()
	args := map[string]any{
		"adId":     adID,
		"adUnitId": adUnitID,
		"request":  requestMap(req),
	}
	if err := c.Call(ctx, "loadInterstitialAd", args, nil); err != nil {
		return 0, err
	}
	return adID, nil
}

// LoadRewardedAd loads a rewarded ad and returns its identifier
func (c *Client) LoadRewardedAd(ctx context.Context, adUnitID string, req *AdRequest) (int64, error) {
	adID := c.NextAdID()
	args := map[string]any{
		"adId":     adID,
		"adUnitId": adUnitID,
		"request":  requestMap(req),
	}
	if err := c.Call(ctx, "loadRewardedAd", args, nil); err != nil {
		return 0, err
	}
	return adID, nil
}

// ShowAdWithoutView presents a loaded full-screen ad
func (c *Client) ShowAdWithoutView(ctx context.Context, adID int64) error {
	return c.Call(ctx, "showAdWithoutView", map[string]any{"adId": adID}, nil)
}

// DisposeAd releases the ad with the given identifier
func (c *Client) DisposeAd(ctx context.Context, adID int64) error {
	return c.Call(ctx, "disposeAd", map[string]any{"adId": adID}, nil)
}

// AnchoredAdaptiveBannerHeight asks the bridge for the adaptive banner
// height for a width, in density-independent pixels. A nil result means
// the platform cannot size that width.
func (c *Client) AnchoredAdaptiveBannerHeight(ctx context.Context, orientation string, width int) (*int, error) {
	var height *int
	args := map[string]any{"orientation": orientation, "width": width}
	if err := c.Call(ctx, "AdSize#getAnchoredAdaptiveBannerAdSize", args, &height); err != nil {
		return nil, err
	}
	return height, nil
}

// Close tears down the connection. In-flight calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}
