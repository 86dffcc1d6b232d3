// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"sync"

	"github.com/adxyz/adbridge/pkg/ads"
)

// simAd is the platform-side half of a simulated ad
type simAd struct {
	sdk  *SDK
	ev   ads.LoadEvents
	unit string

	mu       sync.Mutex
	loaded   bool
	disposed bool
	view     ads.NativeAdView
}

func (a *simAd) markLoaded() {
	a.mu.Lock()
	a.loaded = true
	a.mu.Unlock()
}

func (a *simAd) ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded && !a.disposed
}

func (a *simAd) destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

func (a *simAd) attachView(view ads.NativeAdView) {
	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
}

func (a *simAd) Destroy() {
	a.mu.Lock()
	a.disposed = true
	view := a.view
	a.view = nil
	a.mu.Unlock()
	if view != nil {
		view.Destroy()
	}
}

// simFullScreenAd adds presentation to a simulated ad
type simFullScreenAd struct {
	simAd
	reward   *ads.RewardItem
	appEvent string
}

// Show runs the full presentation lifecycle inline: present,
// impression, paid, reward for rewarded formats, then dismissal.
func (a *simFullScreenAd) Show() error {
	if !a.ready() {
		return ErrNotReady
	}
	ev := a.ev
	if ev.Showed != nil {
		ev.Showed()
	}
	if ev.Impression != nil {
		ev.Impression()
	}
	if a.appEvent != "" {
		ev.EmitAppEvent("sim", a.appEvent)
	}
	if value, ok := a.sdk.paidValue(); ok {
		ev.EmitPaid(value)
	}
	if a.reward != nil {
		ev.EmitUserEarnedReward(*a.reward)
	}
	if ev.WillDismiss != nil {
		ev.WillDismiss()
	}
	if ev.Dismissed != nil {
		ev.Dismissed()
	}
	return nil
}

var (
	_ ads.PlatformAd           = (*simAd)(nil)
	_ ads.PlatformFullScreenAd = (*simFullScreenAd)(nil)
)

// Factory is a stand-in native ad factory that keeps the assets it was
// handed. The daemon registers one under the "default" factory id.
type Factory struct{}

func (Factory) CreateNativeAdView(assets map[string]any, customOptions map[string]any) (ads.NativeAdView, error) {
	return &simView{assets: assets}, nil
}

type simView struct {
	mu     sync.Mutex
	assets map[string]any
}

func (v *simView) Destroy() {
	v.mu.Lock()
	v.assets = nil
	v.mu.Unlock()
}

var _ ads.NativeAdFactory = Factory{}
