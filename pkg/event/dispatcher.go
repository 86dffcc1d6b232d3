// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"fmt"
	"time"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/channel"
	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
)

// Dispatcher receives native SDK lifecycle callbacks for tracked ads and
// forwards them as onAdEvent envelopes on the channel. It is stateless
// between calls: no deduplication, no ordering buffer.
//
// A callback may fire after its ad has been disposed; the registry
// lookup then misses and the event is dropped silently. That drop is the
// only failure path, and it never propagates back into the SDK's
// callback goroutine.
type Dispatcher struct {
	registry *registry.AdRegistry
	channel  channel.Channel
	log      log.Logger
	metrics  *metric.Metrics
	observer Observer
}

// NewDispatcher creates a dispatcher bound to the given registry and
// channel. The observer may be nil.
func NewDispatcher(reg *registry.AdRegistry, ch channel.Channel, logger log.Logger, metrics *metric.Metrics, observer Observer) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		channel:  ch,
		log:      logger,
		metrics:  metrics,
		observer: observer,
	}
}

// encodeAndSend is the single chokepoint every event funnels through.
// extra may be nil for events with no payload beyond adId and eventName.
func (d *Dispatcher) encodeAndSend(eventName string, ad ads.Ad, extra map[string]any) {
	adID, ok := d.registry.IdentifierFor(ad)
	if !ok {
		// Ad disposed before this callback arrived.
		d.metrics.EventsDropped.Inc()
		d.log.Debug(fmt.Sprintf("dropping %s for untracked ad (%s)", eventName, ad.AdUnitID()))
		return
	}

	args := map[string]any{
		"adId":      adID,
		"eventName": eventName,
	}
	for k, v := range extra {
		args[k] = v
	}

	start := time.Now()
	if err := d.channel.Invoke(codec.Call(MethodOnAdEvent, args)); err != nil {
		d.log.Warn(fmt.Sprintf("failed to send %s for ad %d: %v", eventName, adID, err))
		return
	}
	d.metrics.DispatchLatency.Observe(time.Since(start).Seconds())
	d.metrics.EventsDispatched.WithLabelValues(eventName).Inc()

	if d.observer != nil {
		d.observer.Observe(Event{AdID: adID, Name: eventName, Fields: extra})
	}
}

// OnAdLoaded implements ads.ViewListener and ads.FullScreenListener
func (d *Dispatcher) OnAdLoaded(ad ads.Ad, info ads.ResponseInfo) {
	d.encodeAndSend(AdLoaded, ad, map[string]any{"responseInfo": info})
}

// OnAdFailedToLoad forwards the normalized error descriptor
func (d *Dispatcher) OnAdFailedToLoad(ad ads.Ad, err ads.LoadAdError) {
	d.encodeAndSend(AdFailedToLoad, ad, map[string]any{"loadAdError": err})
}

func (d *Dispatcher) OnAdOpened(ad ads.Ad) {
	d.encodeAndSend(AdOpened, ad, nil)
}

func (d *Dispatcher) OnAdImpression(ad ads.Ad) {
	d.encodeAndSend(AdImpression, ad, nil)
}

func (d *Dispatcher) OnAdClosed(ad ads.Ad) {
	d.encodeAndSend(AdClosed, ad, nil)
}

func (d *Dispatcher) OnAdWillDismissScreen(ad ads.Ad) {
	d.encodeAndSend(AdWillDismissScreen, ad, nil)
}

func (d *Dispatcher) OnAdShowedFullScreenContent(ad ads.Ad) {
	d.encodeAndSend(AdShowedFullScreenContent, ad, nil)
}

// OnAdFailedToShowFullScreenContent is the one presentation event that
// carries an error descriptor.
func (d *Dispatcher) OnAdFailedToShowFullScreenContent(ad ads.Ad, err ads.LoadAdError) {
	d.encodeAndSend(AdFailedToShowFullScreenContent, ad, map[string]any{"error": err})
}

func (d *Dispatcher) OnAdWillDismissFullScreenContent(ad ads.Ad) {
	d.encodeAndSend(AdWillDismissFullScreenContent, ad, nil)
}

func (d *Dispatcher) OnAdDismissedFullScreenContent(ad ads.Ad) {
	d.encodeAndSend(AdDismissedFullScreenContent, ad, nil)
}

// OnAppEvent forwards a publisher-defined signal; name and data are
// opaque to the dispatcher.
func (d *Dispatcher) OnAppEvent(ad ads.Ad, name, data string) {
	d.encodeAndSend(AppEvent, ad, map[string]any{"name": name, "data": data})
}

func (d *Dispatcher) OnNativeAdClicked(ad ads.Ad) {
	d.encodeAndSend(NativeAdClicked, ad, nil)
}

func (d *Dispatcher) OnNativeAdImpression(ad ads.Ad) {
	d.encodeAndSend(NativeAdImpression, ad, nil)
}

func (d *Dispatcher) OnNativeAdWillPresentScreen(ad ads.Ad) {
	d.encodeAndSend(NativeAdWillPresentScreen, ad, nil)
}

func (d *Dispatcher) OnNativeAdDidDismissScreen(ad ads.Ad) {
	d.encodeAndSend(NativeAdDidDismissScreen, ad, nil)
}

func (d *Dispatcher) OnNativeAdWillDismissScreen(ad ads.Ad) {
	d.encodeAndSend(NativeAdWillDismissScreen, ad, nil)
}

// OnUserEarnedReward forwards the normalized reward payload
func (d *Dispatcher) OnUserEarnedReward(ad ads.Ad, reward ads.RewardItem) {
	d.encodeAndSend(RewardedAdUserEarnedReward, ad, map[string]any{"rewardItem": reward})
}

// OnPaidEvent forwards the revenue payload
func (d *Dispatcher) OnPaidEvent(ad ads.Ad, value ads.AdValue) {
	d.encodeAndSend(PaidEvent, ad, map[string]any{"adValue": value})
}

// The dispatcher is the one listener every tracked ad reports into.
var (
	_ ads.ViewListener       = (*Dispatcher)(nil)
	_ ads.FullScreenListener = (*Dispatcher)(nil)
	_ ads.NativeListener     = (*Dispatcher)(nil)
	_ ads.AppEventListener   = (*Dispatcher)(nil)
	_ ads.RewardListener     = (*Dispatcher)(nil)
	_ ads.PaidListener       = (*Dispatcher)(nil)
)
