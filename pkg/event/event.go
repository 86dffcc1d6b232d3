// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event translates native SDK lifecycle callbacks into tagged
// onAdEvent messages on the bridge channel.
package event

// MethodOnAdEvent is the method name of every outbound event envelope.
const MethodOnAdEvent = "onAdEvent"

// Event names form a fixed closed set.
const (
	AdLoaded            = "onAdLoaded"
	AdFailedToLoad      = "onAdFailedToLoad"
	AdOpened            = "onAdOpened"
	AdImpression        = "onAdImpression"
	AdClosed            = "onAdClosed"
	AdWillDismissScreen = "onAdWillDismissScreen"

	AdShowedFullScreenContent       = "onAdShowedFullScreenContent"
	AdFailedToShowFullScreenContent = "onAdFailedToShowFullScreenContent"
	AdWillDismissFullScreenContent  = "onAdWillDismissFullScreenContent"
	AdDismissedFullScreenContent    = "onAdDismissedFullScreenContent"

	AppEvent = "onAppEvent"

	NativeAdClicked           = "onNativeAdClicked"
	NativeAdImpression        = "onNativeAdImpression"
	NativeAdWillPresentScreen = "onNativeAdWillPresentScreen"
	NativeAdDidDismissScreen  = "onNativeAdDidDismissScreen"
	NativeAdWillDismissScreen = "onNativeAdWillDismissScreen"

	RewardedAdUserEarnedReward = "onRewardedAdUserEarnedReward"

	PaidEvent = "onPaidEvent"
)

// Event is one dispatched ad event: the identifier of the ad it
// concerns, the event name, and event-specific named fields.
type Event struct {
	AdID   int64
	Name   string
	Fields map[string]any
}

// Observer is an optional tap on the dispatch stream, invoked after an
// event has been sent. Used by analytics.
type Observer interface {
	Observe(ev Event)
}
