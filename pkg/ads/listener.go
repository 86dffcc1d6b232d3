// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

// Listener interfaces are flat capability sets, one per ad category.
// A receiver that handles every ad format (the event dispatcher)
// implements all of them; a test double implements only what it needs.

// ViewListener receives lifecycle callbacks for view-based ads
// (banner and native formats).
type ViewListener interface {
	OnAdLoaded(ad Ad, info ResponseInfo)
	OnAdFailedToLoad(ad Ad, err LoadAdError)
	OnAdOpened(ad Ad)
	OnAdImpression(ad Ad)
	OnAdClosed(ad Ad)
	OnAdWillDismissScreen(ad Ad)
}

// FullScreenListener receives lifecycle callbacks for full-screen ads
// (interstitial and rewarded formats).
type FullScreenListener interface {
	OnAdLoaded(ad Ad, info ResponseInfo)
	OnAdFailedToLoad(ad Ad, err LoadAdError)
	OnAdShowedFullScreenContent(ad Ad)
	OnAdFailedToShowFullScreenContent(ad Ad, err LoadAdError)
	OnAdImpression(ad Ad)
	OnAdWillDismissFullScreenContent(ad Ad)
	OnAdDismissedFullScreenContent(ad Ad)
}

// NativeListener adds the native-only callbacks on top of the view set.
type NativeListener interface {
	ViewListener
	OnNativeAdClicked(ad Ad)
	OnNativeAdImpression(ad Ad)
	OnNativeAdWillPresentScreen(ad Ad)
	OnNativeAdDidDismissScreen(ad Ad)
	OnNativeAdWillDismissScreen(ad Ad)
}

// AppEventListener receives publisher-defined app events (Ad Manager formats).
// Name and data are opaque strings, not interpreted by the bridge.
type AppEventListener interface {
	OnAppEvent(ad Ad, name, data string)
}

// RewardListener receives earned rewards for rewarded ads.
type RewardListener interface {
	OnUserEarnedReward(ad Ad, reward RewardItem)
}

// PaidListener receives paid (revenue) events.
type PaidListener interface {
	OnPaidEvent(ad Ad, value AdValue)
}
