// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ads models the ad handles the bridge tracks and the contract
// of the native SDK behind them.
package ads

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotLoaded     = errors.New("ad not loaded")
	ErrAlreadyLoaded = errors.New("ad already loaded")
)

// Ad is the minimal capability surface every tracked ad exposes:
// an opaque load trigger and a dispose hook. Handles are compared by
// identity, never by value, so every implementation is a pointer type.
type Ad interface {
	Format() AdFormat
	AdUnitID() string
	Load(ctx context.Context) error
	Dispose()
}

// FullScreenAd is an Ad that is presented without a view (interstitial
// and rewarded formats).
type FullScreenAd interface {
	Ad
	Show() error
}

// platformSlot guards the live platform object shared between Load,
// Show and Dispose, which may run on different goroutines.
type platformSlot struct {
	mu sync.Mutex
	ad PlatformAd
}

func (s *platformSlot) set(p PlatformAd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ad != nil {
		return ErrAlreadyLoaded
	}
	s.ad = p
	return nil
}

func (s *platformSlot) get() PlatformAd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ad
}

// take clears the slot and returns what was in it
func (s *platformSlot) take() PlatformAd {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ad
	s.ad = nil
	return p
}

// BannerAd is a tracked banner ad handle
type BannerAd struct {
	sdk      SDK
	adUnitID string
	size     AdSize
	request  AdRequest
	view     ViewListener
	paid     PaidListener
	slot     platformSlot
}

// NewBannerAd creates an untracked banner handle. The paid listener may
// be nil.
func NewBannerAd(sdk SDK, adUnitID string, size AdSize, request AdRequest, view ViewListener, paid PaidListener) *BannerAd {
	return &BannerAd{
		sdk:      sdk,
		adUnitID: adUnitID,
		size:     size,
		request:  request,
		view:     view,
		paid:     paid,
	}
}

func (a *BannerAd) Format() AdFormat { return FormatBanner }
func (a *BannerAd) AdUnitID() string { return a.adUnitID }

// Size returns the requested banner size
func (a *BannerAd) Size() AdSize { return a.size }

// Request returns the load request parameters
func (a *BannerAd) Request() AdRequest { return a.request }

func (a *BannerAd) Load(ctx context.Context) error {
	ev := LoadEvents{
		Loaded:            func(info ResponseInfo) { a.view.OnAdLoaded(a, info) },
		FailedToLoad:      func(err LoadAdError) { a.view.OnAdFailedToLoad(a, err) },
		Opened:            func() { a.view.OnAdOpened(a) },
		Impression:        func() { a.view.OnAdImpression(a) },
		Closed:            func() { a.view.OnAdClosed(a) },
		WillDismissScreen: func() { a.view.OnAdWillDismissScreen(a) },
	}
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	p, err := a.sdk.LoadBannerAd(ctx, BannerSpec{AdUnitID: a.adUnitID, Size: a.size, Request: a.request}, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *BannerAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}

// NativeAdConfig collects the parameters of a native ad load
type NativeAdConfig struct {
	AdUnitID         string
	Factory          NativeAdFactory
	Request          *AdRequest
	AdManagerRequest *AdManagerAdRequest
	CustomOptions    map[string]any
}

// NativeAd is a tracked native ad handle
type NativeAd struct {
	sdk      SDK
	cfg      NativeAdConfig
	listener NativeListener
	paid     PaidListener
	slot     platformSlot
}

// NewNativeAd creates an untracked native ad handle
func NewNativeAd(sdk SDK, cfg NativeAdConfig, listener NativeListener, paid PaidListener) *NativeAd {
	return &NativeAd{sdk: sdk, cfg: cfg, listener: listener, paid: paid}
}

func (a *NativeAd) Format() AdFormat { return FormatNative }
func (a *NativeAd) AdUnitID() string { return a.cfg.AdUnitID }

func (a *NativeAd) Load(ctx context.Context) error {
	ev := LoadEvents{
		Loaded:                  func(info ResponseInfo) { a.listener.OnAdLoaded(a, info) },
		FailedToLoad:            func(err LoadAdError) { a.listener.OnAdFailedToLoad(a, err) },
		Opened:                  func() { a.listener.OnAdOpened(a) },
		Impression:              func() { a.listener.OnAdImpression(a) },
		Closed:                  func() { a.listener.OnAdClosed(a) },
		WillDismissScreen:       func() { a.listener.OnAdWillDismissScreen(a) },
		NativeClicked:           func() { a.listener.OnNativeAdClicked(a) },
		NativeImpression:        func() { a.listener.OnNativeAdImpression(a) },
		NativeWillPresentScreen: func() { a.listener.OnNativeAdWillPresentScreen(a) },
		NativeDidDismissScreen:  func() { a.listener.OnNativeAdDidDismissScreen(a) },
		NativeWillDismissScreen: func() { a.listener.OnNativeAdWillDismissScreen(a) },
	}
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	spec := NativeSpec{
		AdUnitID:         a.cfg.AdUnitID,
		Factory:          a.cfg.Factory,
		Request:          a.cfg.Request,
		AdManagerRequest: a.cfg.AdManagerRequest,
		CustomOptions:    a.cfg.CustomOptions,
	}
	p, err := a.sdk.LoadNativeAd(ctx, spec, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *NativeAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}

// fullScreenEvents builds the callback set shared by all full-screen handles
func fullScreenEvents(ad Ad, fs FullScreenListener) LoadEvents {
	return LoadEvents{
		Loaded:       func(info ResponseInfo) { fs.OnAdLoaded(ad, info) },
		FailedToLoad: func(err LoadAdError) { fs.OnAdFailedToLoad(ad, err) },
		Showed:       func() { fs.OnAdShowedFullScreenContent(ad) },
		FailedToShow: func(err LoadAdError) { fs.OnAdFailedToShowFullScreenContent(ad, err) },
		Impression:   func() { fs.OnAdImpression(ad) },
		WillDismiss:  func() { fs.OnAdWillDismissFullScreenContent(ad) },
		Dismissed:    func() { fs.OnAdDismissedFullScreenContent(ad) },
	}
}

// InterstitialAd is a tracked interstitial handle
type InterstitialAd struct {
	sdk      SDK
	adUnitID string
	request  AdRequest
	fs       FullScreenListener
	paid     PaidListener
	slot     platformSlot
}

// NewInterstitialAd creates an untracked interstitial handle
func NewInterstitialAd(sdk SDK, adUnitID string, request AdRequest, fs FullScreenListener, paid PaidListener) *InterstitialAd {
	return &InterstitialAd{sdk: sdk, adUnitID: adUnitID, request: request, fs: fs, paid: paid}
}

func (a *InterstitialAd) Format() AdFormat { return FormatInterstitial }
func (a *InterstitialAd) AdUnitID() string { return a.adUnitID }

func (a *InterstitialAd) Load(ctx context.Context) error {
	ev := fullScreenEvents(a, a.fs)
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	p, err := a.sdk.LoadInterstitialAd(ctx, InterstitialSpec{AdUnitID: a.adUnitID, Request: a.request}, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *InterstitialAd) Show() error {
	p := a.slot.get()
	if p == nil {
		return ErrNotLoaded
	}
	return p.(PlatformFullScreenAd).Show()
}

func (a *InterstitialAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}

// RewardedAdConfig collects the parameters of a rewarded ad load
type RewardedAdConfig struct {
	AdUnitID         string
	Request          *AdRequest
	AdManagerRequest *AdManagerAdRequest
	SSV              *ServerSideVerificationOptions
}

// RewardedAd is a tracked rewarded ad handle
type RewardedAd struct {
	sdk    SDK
	cfg    RewardedAdConfig
	fs     FullScreenListener
	reward RewardListener
	paid   PaidListener
	slot   platformSlot
}

// NewRewardedAd creates an untracked rewarded ad handle
func NewRewardedAd(sdk SDK, cfg RewardedAdConfig, fs FullScreenListener, reward RewardListener, paid PaidListener) *RewardedAd {
	return &RewardedAd{sdk: sdk, cfg: cfg, fs: fs, reward: reward, paid: paid}
}

func (a *RewardedAd) Format() AdFormat { return FormatRewarded }
func (a *RewardedAd) AdUnitID() string { return a.cfg.AdUnitID }

func (a *RewardedAd) Load(ctx context.Context) error {
	ev := fullScreenEvents(a, a.fs)
	ev.UserEarnedReward = func(r RewardItem) { a.reward.OnUserEarnedReward(a, r) }
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	spec := RewardedSpec{
		AdUnitID:         a.cfg.AdUnitID,
		Request:          a.cfg.Request,
		AdManagerRequest: a.cfg.AdManagerRequest,
		SSV:              a.cfg.SSV,
	}
	p, err := a.sdk.LoadRewardedAd(ctx, spec, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *RewardedAd) Show() error {
	p := a.slot.get()
	if p == nil {
		return ErrNotLoaded
	}
	return p.(PlatformFullScreenAd).Show()
}

func (a *RewardedAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}

// AdManagerBannerAd is a tracked Ad Manager banner handle. It emits app
// events in addition to the view lifecycle.
type AdManagerBannerAd struct {
	sdk      SDK
	adUnitID string
	sizes    []AdSize
	request  AdManagerAdRequest
	view     ViewListener
	appEvent AppEventListener
	paid     PaidListener
	slot     platformSlot
}

// NewAdManagerBannerAd creates an untracked Ad Manager banner handle
func NewAdManagerBannerAd(sdk SDK, adUnitID string, sizes []AdSize, request AdManagerAdRequest, view ViewListener, appEvent AppEventListener, paid PaidListener) *AdManagerBannerAd {
	return &AdManagerBannerAd{
		sdk:      sdk,
		adUnitID: adUnitID,
		sizes:    sizes,
		request:  request,
		view:     view,
		appEvent: appEvent,
		paid:     paid,
	}
}

func (a *AdManagerBannerAd) Format() AdFormat { return FormatAdManagerBanner }
func (a *AdManagerBannerAd) AdUnitID() string { return a.adUnitID }

// Sizes returns the requested banner sizes
func (a *AdManagerBannerAd) Sizes() []AdSize { return a.sizes }

func (a *AdManagerBannerAd) Load(ctx context.Context) error {
	ev := LoadEvents{
		Loaded:            func(info ResponseInfo) { a.view.OnAdLoaded(a, info) },
		FailedToLoad:      func(err LoadAdError) { a.view.OnAdFailedToLoad(a, err) },
		Opened:            func() { a.view.OnAdOpened(a) },
		Impression:        func() { a.view.OnAdImpression(a) },
		Closed:            func() { a.view.OnAdClosed(a) },
		WillDismissScreen: func() { a.view.OnAdWillDismissScreen(a) },
		AppEvent:          func(name, data string) { a.appEvent.OnAppEvent(a, name, data) },
	}
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	spec := AdManagerBannerSpec{AdUnitID: a.adUnitID, Sizes: a.sizes, Request: a.request}
	p, err := a.sdk.LoadAdManagerBannerAd(ctx, spec, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *AdManagerBannerAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}

// AdManagerInterstitialAd is a tracked Ad Manager interstitial handle
type AdManagerInterstitialAd struct {
	sdk      SDK
	adUnitID string
	request  AdManagerAdRequest
	fs       FullScreenListener
	appEvent AppEventListener
	paid     PaidListener
	slot     platformSlot
}

// NewAdManagerInterstitialAd creates an untracked Ad Manager interstitial handle
func NewAdManagerInterstitialAd(sdk SDK, adUnitID string, request AdManagerAdRequest, fs FullScreenListener, appEvent AppEventListener, paid PaidListener) *AdManagerInterstitialAd {
	return &AdManagerInterstitialAd{
		sdk:      sdk,
		adUnitID: adUnitID,
		request:  request,
		fs:       fs,
		appEvent: appEvent,
		paid:     paid,
	}
}

func (a *AdManagerInterstitialAd) Format() AdFormat { return FormatAdManagerInterstitial }
func (a *AdManagerInterstitialAd) AdUnitID() string { return a.adUnitID }

func (a *AdManagerInterstitialAd) Load(ctx context.Context) error {
	ev := fullScreenEvents(a, a.fs)
	ev.AppEvent = func(name, data string) { a.appEvent.OnAppEvent(a, name, data) }
	if a.paid != nil {
		ev.Paid = func(v AdValue) { a.paid.OnPaidEvent(a, v) }
	}

	spec := AdManagerInterstitialSpec{AdUnitID: a.adUnitID, Request: a.request}
	p, err := a.sdk.LoadAdManagerInterstitialAd(ctx, spec, ev)
	if err != nil {
		return err
	}
	return a.slot.set(p)
}

func (a *AdManagerInterstitialAd) Show() error {
	p := a.slot.get()
	if p == nil {
		return ErrNotLoaded
	}
	return p.(PlatformFullScreenAd).Show()
}

func (a *AdManagerInterstitialAd) Dispose() {
	if p := a.slot.take(); p != nil {
		p.Destroy()
	}
}
