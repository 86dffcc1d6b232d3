// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/channel"
	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
)

type stubAd struct {
	unit string
}

func (s *stubAd) Format() ads.AdFormat           { return ads.FormatBanner }
func (s *stubAd) AdUnitID() string               { return s.unit }
func (s *stubAd) Load(ctx context.Context) error { return nil }
func (s *stubAd) Dispose()                       {}

func newTestDispatcher(t *testing.T) (*Dispatcher, *registry.AdRegistry, *channel.Recorder) {
	t.Helper()
	reg := registry.NewAdRegistry(log.NoOp(), metric.NoOp())
	rec := channel.NewRecorder()
	d := NewDispatcher(reg, rec, log.NoOp(), metric.NoOp(), nil)
	return d, reg, rec
}

func TestEventEnvelopeShape(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 42))

	d.OnAdImpression(ad)

	msg, ok := rec.Last()
	require.True(ok)
	require.Nil(msg.ID)
	require.Equal(MethodOnAdEvent, msg.Method)
	require.Equal(int64(42), msg.Args["adId"])
	require.Equal(AdImpression, msg.Args["eventName"])
	require.Len(msg.Args, 2)
}

func TestUntrackedAdDroppedSilently(t *testing.T) {
	require := require.New(t)
	d, _, rec := newTestDispatcher(t)

	d.OnAdLoaded(&stubAd{unit: "unit-1"}, ads.ResponseInfo{})
	require.Empty(rec.Calls())
}

func TestEventsAfterUntrackAreDropped(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	d.OnAdImpression(ad)
	require.Len(rec.Calls(), 1)

	reg.Untrack(1)

	// Late presentation callbacks after disposal vanish.
	d.OnAdClosed(ad)
	d.OnPaidEvent(ad, ads.AdValue{Micros: 1000})
	require.Len(rec.Calls(), 1)
}

func TestLoadedCarriesResponseInfo(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	info := ads.ResponseInfo{ResponseID: "resp-9", MediationAdapterClassName: "TestAdapter"}
	d.OnAdLoaded(ad, info)

	msg, ok := rec.Last()
	require.True(ok)
	require.Equal(AdLoaded, msg.Args["eventName"])
	require.Equal(info, msg.Args["responseInfo"])
}

func TestFailedToLoadCarriesError(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	loadErr := ads.LoadAdError{Code: 3, Message: "no fill", Domain: "sim"}
	d.OnAdFailedToLoad(ad, loadErr)

	msg, ok := rec.Last()
	require.True(ok)
	require.Equal(AdFailedToLoad, msg.Args["eventName"])
	require.Equal(loadErr, msg.Args["loadAdError"])
}

func TestAppEventPayload(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	d.OnAppEvent(ad, "color", "red")

	msg, ok := rec.Last()
	require.True(ok)
	require.Equal(AppEvent, msg.Args["eventName"])
	require.Equal("color", msg.Args["name"])
	require.Equal("red", msg.Args["data"])
}

func TestRewardPayload(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	d.OnUserEarnedReward(ad, ads.RewardItem{Amount: 1, Type: "type"})

	msg, ok := rec.Last()
	require.True(ok)
	require.Equal(RewardedAdUserEarnedReward, msg.Args["eventName"])
	require.Equal(ads.RewardItem{Amount: 1, Type: "type"}, msg.Args["rewardItem"])
}

func TestShowFailureUsesErrorField(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	showErr := ads.LoadAdError{Code: 1, Message: "not ready", Domain: "sim"}
	d.OnAdFailedToShowFullScreenContent(ad, showErr)

	msg, ok := rec.Last()
	require.True(ok)
	require.Equal(AdFailedToShowFullScreenContent, msg.Args["eventName"])
	require.Equal(showErr, msg.Args["error"])
}

func TestInterleavedAdsKeepTheirIdentifiers(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	a := &stubAd{unit: "unit-a"}
	b := &stubAd{unit: "unit-b"}
	require.NoError(reg.Track(a, 1))
	require.NoError(reg.Track(b, 2))

	d.OnAdImpression(a)
	d.OnAdImpression(b)
	d.OnAdClosed(a)

	calls := rec.Calls()
	require.Len(calls, 3)
	require.Equal(int64(1), calls[0].Args["adId"])
	require.Equal(int64(2), calls[1].Args["adId"])
	require.Equal(int64(1), calls[2].Args["adId"])
	require.Equal(AdClosed, calls[2].Args["eventName"])
}

func TestDispatchRacesDisposal(t *testing.T) {
	require := require.New(t)
	d, reg, rec := newTestDispatcher(t)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 9))

	// Impressions keep arriving from callback threads while the caller
	// disposes the ad; late ones are dropped, never misdelivered.
	const callbacks = 4
	const fires = 500

	var wg sync.WaitGroup
	for g := 0; g < callbacks; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < fires; i++ {
				d.OnAdImpression(ad)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		reg.Untrack(9)
	}()
	wg.Wait()

	for _, msg := range rec.Calls() {
		require.Equal(int64(9), msg.Args["adId"])
		require.Equal(AdImpression, msg.Args["eventName"])
	}

	// Once untracked, nothing further leaves the channel.
	before := len(rec.Calls())
	d.OnAdImpression(ad)
	require.Len(rec.Calls(), before)
}

type failingChannel struct{}

func (failingChannel) Invoke(codec.Message) error { return errors.New("send failed") }

func TestSendFailureDoesNotPanic(t *testing.T) {
	require := require.New(t)
	reg := registry.NewAdRegistry(log.NoOp(), metric.NoOp())
	d := NewDispatcher(reg, failingChannel{}, log.NoOp(), metric.NoOp(), nil)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))
	d.OnAdImpression(ad)
}

type recordingObserver struct {
	events []Event
}

func (o *recordingObserver) Observe(ev Event) { o.events = append(o.events, ev) }

func TestObserverSeesDispatchedEvents(t *testing.T) {
	require := require.New(t)
	reg := registry.NewAdRegistry(log.NoOp(), metric.NoOp())
	obs := &recordingObserver{}
	d := NewDispatcher(reg, channel.NewRecorder(), log.NoOp(), metric.NoOp(), obs)

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 7))

	d.OnAdImpression(ad)
	d.OnPaidEvent(ad, ads.AdValue{CurrencyCode: "USD", Micros: 2500})

	require.Len(obs.events, 2)
	require.Equal(int64(7), obs.events[0].AdID)
	require.Equal(AdImpression, obs.events[0].Name)
	require.Equal(PaidEvent, obs.events[1].Name)
	require.Equal(ads.AdValue{CurrencyCode: "USD", Micros: 2500}, obs.events[1].Fields["adValue"])

	// Dropped events never reach the observer.
	reg.Untrack(7)
	d.OnAdClosed(ad)
	require.Len(obs.events, 2)
}
