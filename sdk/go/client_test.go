// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridgesdk

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/bridge"
	"github.com/adxyz/adbridge/pkg/channel"
	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/event"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
	"github.com/adxyz/adbridge/pkg/sim"
)

type receivedEvent struct {
	adID   int64
	name   string
	fields map[string]any
}

// eventSink collects onAdEvent callbacks and lets tests wait for them
type eventSink struct {
	mu     sync.Mutex
	events []receivedEvent
}

func (s *eventSink) handler() EventHandler {
	return func(adID int64, eventName string, fields map[string]any) {
		s.mu.Lock()
		s.events = append(s.events, receivedEvent{adID, eventName, fields})
		s.mu.Unlock()
	}
}

func (s *eventSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.name
	}
	return out
}

func (s *eventSink) waitFor(t *testing.T, name string) receivedEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, ev := range s.events {
			if ev.name == name {
				s.mu.Unlock()
				return ev
			}
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("event %s never arrived", name)
	return receivedEvent{}
}

// startBridge stands up a full bridge on the simulator and returns a
// connected client.
func startBridge(t *testing.T, cfg sim.Config) (*Client, *eventSink) {
	t.Helper()
	logger := log.NoOp()
	metrics := metric.NoOp()

	reg := registry.NewAdRegistry(logger, metrics)
	srv := channel.NewWebSocketServer(codec.Standard{}, nil, logger)
	dispatcher := event.NewDispatcher(reg, srv, logger, metrics, nil)

	factories := bridge.NewFactoryRegistry(logger)
	factories.Register("default", sim.Factory{})
	srv.SetHandler(bridge.New(sim.New(cfg, logger), reg, dispatcher, factories, logger, metrics))

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	sink := &eventSink{}
	client, err := Dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"), sink.handler())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, sink
}

func TestLoadBannerAdEndToEnd(t *testing.T) {
	require := require.New(t)
	client, sink := startBridge(t, sim.Config{})
	ctx := context.Background()

	adID, err := client.LoadBannerAd(ctx, "unit-banner", 320, 50, &AdRequest{Keywords: []string{"games"}})
	require.NoError(err)

	loaded := sink.waitFor(t, "onAdLoaded")
	require.Equal(adID, loaded.adID)
	require.Contains(loaded.fields, "responseInfo")

	sink.waitFor(t, "onAdImpression")
	require.NoError(client.DisposeAd(ctx, adID))
}

func TestRewardedAdEndToEnd(t *testing.T) {
	require := require.New(t)
	client, sink := startBridge(t, sim.Config{RewardAmount: 10, RewardType: "coins"})
	ctx := context.Background()

	adID, err := client.LoadRewardedAd(ctx, "unit-rewarded", &AdRequest{})
	require.NoError(err)
	sink.waitFor(t, "onAdLoaded")

	require.NoError(client.ShowAdWithoutView(ctx, adID))

	reward := sink.waitFor(t, "onRewardedAdUserEarnedReward")
	require.Equal(adID, reward.adID)
	item, ok := reward.fields["rewardItem"].(map[string]any)
	require.True(ok)
	require.EqualValues(10, item["amount"])
	require.Equal("coins", item["type"])

	sink.waitFor(t, "onAdDismissedFullScreenContent")
}

func TestLoadFailureSurfacesAsEvent(t *testing.T) {
	require := require.New(t)
	client, sink := startBridge(t, sim.Config{FailUnits: map[string]ads.LoadAdError{
		"unit-bad": {Code: 3, Message: "no fill", Domain: "sim"},
	}})
	ctx := context.Background()

	// The request itself succeeds; the failure arrives on the event
	// channel.
	_, err := client.LoadInterstitialAd(ctx, "unit-bad", &AdRequest{})
	require.NoError(err)

	failed := sink.waitFor(t, "onAdFailedToLoad")
	loadErr, ok := failed.fields["loadAdError"].(map[string]any)
	require.True(ok)
	require.EqualValues(3, loadErr["code"])
	require.Equal("no fill", loadErr["message"])
}

func TestRemoteErrors(t *testing.T) {
	require := require.New(t)
	client, _ := startBridge(t, sim.Config{})
	ctx := context.Background()

	// Unknown native ad factory.
	_, err := client.LoadNativeAd(ctx, "unit-native", "missing", &AdRequest{}, nil)
	var remote *RemoteError
	require.ErrorAs(err, &remote)
	require.Equal("NativeAdError", remote.Code)

	// Showing an identifier nothing is tracked under.
	err = client.ShowAdWithoutView(ctx, 99)
	require.ErrorAs(err, &remote)
	require.Equal("AdShowError", remote.Code)

	// A method outside the request set.
	err = client.Call(ctx, "noSuchMethod", nil, nil)
	require.ErrorAs(err, &remote)
	require.Equal("notImplemented", remote.Code)
}

func TestAnchoredAdaptiveBannerHeight(t *testing.T) {
	require := require.New(t)
	client, _ := startBridge(t, sim.Config{})
	ctx := context.Background()

	height, err := client.AnchoredAdaptiveBannerHeight(ctx, "portrait", 320)
	require.NoError(err)
	require.NotNil(height)
	require.Equal(50, *height)

	height, err = client.AnchoredAdaptiveBannerHeight(ctx, "portrait", 0)
	require.NoError(err)
	require.Nil(height)
}

func TestCallAfterClose(t *testing.T) {
	require := require.New(t)
	client, _ := startBridge(t, sim.Config{})

	require.NoError(client.Close())
	err := client.Call(context.Background(), "MobileAds#initialize", nil, nil)
	require.True(errors.Is(err, ErrClosed))
}
