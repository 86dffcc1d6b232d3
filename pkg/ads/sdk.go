// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

import "context"

// SDK is the native advertising SDK the bridge fronts. Load calls return
// a platform handle synchronously; load outcome and everything after it
// arrive through the LoadEvents callbacks, possibly on a different
// goroutine than the one that issued the load.
type SDK interface {
	LoadBannerAd(ctx context.Context, spec BannerSpec, ev LoadEvents) (PlatformAd, error)
	LoadNativeAd(ctx context.Context, spec NativeSpec, ev LoadEvents) (PlatformAd, error)
	LoadInterstitialAd(ctx context.Context, spec InterstitialSpec, ev LoadEvents) (PlatformFullScreenAd, error)
	LoadRewardedAd(ctx context.Context, spec RewardedSpec, ev LoadEvents) (PlatformFullScreenAd, error)
	LoadAdManagerBannerAd(ctx context.Context, spec AdManagerBannerSpec, ev LoadEvents) (PlatformAd, error)
	LoadAdManagerInterstitialAd(ctx context.Context, spec AdManagerInterstitialSpec, ev LoadEvents) (PlatformFullScreenAd, error)

	Initialize(ctx context.Context) (InitializationStatus, error)
	UpdateRequestConfiguration(cfg RequestConfiguration) error
	SetAppMuted(muted bool) error

	// AnchoredAdaptiveBannerSize computes the adaptive banner size for the
	// given orientation ("portrait", "landscape" or "") and width. The
	// second return is false when the SDK reports an invalid size.
	AnchoredAdaptiveBannerSize(orientation string, width int) (AdSize, bool)
}

// PlatformAd is a live native ad object owned by the SDK
type PlatformAd interface {
	Destroy()
}

// PlatformFullScreenAd is a live full-screen ad that can be presented
type PlatformFullScreenAd interface {
	PlatformAd
	Show() error
}

// NativeAdView is an opaque rendered native ad view
type NativeAdView interface {
	Destroy()
}

// NativeAdFactory binds loaded native ad assets to a platform view.
// Factories are registered by the host application under a factory id.
type NativeAdFactory interface {
	CreateNativeAdView(assets map[string]any, customOptions map[string]any) (NativeAdView, error)
}

// BannerSpec describes a banner load
type BannerSpec struct {
	AdUnitID string
	Size     AdSize
	Request  AdRequest
}

// NativeSpec describes a native ad load. Exactly one of Request or
// AdManagerRequest is set.
type NativeSpec struct {
	AdUnitID         string
	Factory          NativeAdFactory
	Request          *AdRequest
	AdManagerRequest *AdManagerAdRequest
	CustomOptions    map[string]any
}

// InterstitialSpec describes an interstitial load
type InterstitialSpec struct {
	AdUnitID string
	Request  AdRequest
}

// RewardedSpec describes a rewarded ad load. Exactly one of Request or
// AdManagerRequest is set.
type RewardedSpec struct {
	AdUnitID         string
	Request          *AdRequest
	AdManagerRequest *AdManagerAdRequest
	SSV              *ServerSideVerificationOptions
}

// AdManagerBannerSpec describes an Ad Manager banner load
type AdManagerBannerSpec struct {
	AdUnitID string
	Sizes    []AdSize
	Request  AdManagerAdRequest
}

// AdManagerInterstitialSpec describes an Ad Manager interstitial load
type AdManagerInterstitialSpec struct {
	AdUnitID string
	Request  AdManagerAdRequest
}

// RequestConfiguration is the global SDK request configuration
type RequestConfiguration struct {
	MaxAdContentRating           string
	TagForChildDirectedTreatment *int
	TagForUnderAgeOfConsent      *int
	TestDeviceIDs                []string
}

// AdapterState reports one mediation adapter's initialization state
type AdapterState int

const (
	AdapterNotReady AdapterState = iota
	AdapterReady
)

// AdapterStatus describes one adapter in an InitializationStatus
type AdapterStatus struct {
	State         AdapterState `json:"state"`
	Description   string       `json:"description"`
	LatencyMillis int64        `json:"latencyMillis"`
}

// InitializationStatus maps adapter class names to their status
type InitializationStatus struct {
	AdapterStatuses map[string]AdapterStatus `json:"adapterStatuses"`
}

// LoadEvents is the callback surface the SDK fires for one load. Every
// field is optional; the Emit helpers are nil-safe. The bridge binds each
// callback to the owning ad handle before handing the set to the SDK.
type LoadEvents struct {
	Loaded       func(info ResponseInfo)
	FailedToLoad func(err LoadAdError)

	// View-based lifecycle
	Opened            func()
	Impression        func()
	Closed            func()
	WillDismissScreen func()

	// Full-screen lifecycle
	Showed       func()
	FailedToShow func(err LoadAdError)
	WillDismiss  func()
	Dismissed    func()

	// Native-only lifecycle
	NativeClicked           func()
	NativeImpression        func()
	NativeWillPresentScreen func()
	NativeDidDismissScreen  func()
	NativeWillDismissScreen func()

	// Publisher-defined app events (Ad Manager formats)
	AppEvent func(name, data string)

	// Rewarded
	UserEarnedReward func(reward RewardItem)

	// Revenue
	Paid func(value AdValue)
}

// EmitLoaded fires the Loaded callback if set
func (e LoadEvents) EmitLoaded(info ResponseInfo) {
	if e.Loaded != nil {
		e.Loaded(info)
	}
}

// EmitFailedToLoad fires the FailedToLoad callback if set
func (e LoadEvents) EmitFailedToLoad(err LoadAdError) {
	if e.FailedToLoad != nil {
		e.FailedToLoad(err)
	}
}

// EmitAppEvent fires the AppEvent callback if set
func (e LoadEvents) EmitAppEvent(name, data string) {
	if e.AppEvent != nil {
		e.AppEvent(name, data)
	}
}

// EmitUserEarnedReward fires the UserEarnedReward callback if set
func (e LoadEvents) EmitUserEarnedReward(reward RewardItem) {
	if e.UserEarnedReward != nil {
		e.UserEarnedReward(reward)
	}
}

// EmitPaid fires the Paid callback if set
func (e LoadEvents) EmitPaid(value AdValue) {
	if e.Paid != nil {
		e.Paid(value)
	}
}
