// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ads

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AdFormat identifies one of the supported ad formats
type AdFormat string

const (
	FormatBanner                AdFormat = "banner"
	FormatNative                AdFormat = "native"
	FormatInterstitial          AdFormat = "interstitial"
	FormatRewarded              AdFormat = "rewarded"
	FormatAdManagerBanner       AdFormat = "adManagerBanner"
	FormatAdManagerInterstitial AdFormat = "adManagerInterstitial"
)

// AdSize is a width/height pair in density-independent pixels
type AdSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s AdSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Common IAB sizes
var (
	SizeBanner      = AdSize{Width: 320, Height: 50}
	SizeLargeBanner = AdSize{Width: 320, Height: 100}
	SizeMediumRect  = AdSize{Width: 300, Height: 250}
	SizeFullBanner  = AdSize{Width: 468, Height: 60}
	SizeLeaderboard = AdSize{Width: 728, Height: 90}
)

// AdRequest carries publisher targeting for a single load
type AdRequest struct {
	Keywords                  []string `json:"keywords,omitempty"`
	ContentURL                string   `json:"contentUrl,omitempty"`
	NonPersonalizedAds        bool     `json:"nonPersonalizedAds,omitempty"`
	NeighboringContentURLs    []string `json:"neighboringContentUrls,omitempty"`
	RequestAgent              string   `json:"requestAgent,omitempty"`
	HTTPTimeoutMillis         int      `json:"httpTimeoutMillis,omitempty"`
	MediationExtrasIdentifier string   `json:"mediationExtrasIdentifier,omitempty"`
}

// AdManagerAdRequest extends AdRequest with Ad Manager specific targeting
type AdManagerAdRequest struct {
	AdRequest
	CustomTargeting      map[string]string   `json:"customTargeting,omitempty"`
	CustomTargetingLists map[string][]string `json:"customTargetingLists,omitempty"`
	PublisherProvidedID  string              `json:"publisherProvidedId,omitempty"`
}

// ServerSideVerificationOptions carry SSV parameters for rewarded ads
type ServerSideVerificationOptions struct {
	UserID       string `json:"userId,omitempty"`
	CustomReward string `json:"customData,omitempty"`
}

// LoadAdError is the normalized {code, message, domain} error descriptor
// forwarded on the event channel regardless of the native error's shape.
type LoadAdError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Domain  string `json:"domain"`
}

func (e LoadAdError) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Domain, e.Message, e.Code)
}

// AdapterResponseInfo describes one mediation adapter's part of a response
type AdapterResponseInfo struct {
	AdapterClassName   string `json:"adapterClassName"`
	LatencyMillis      int64  `json:"latencyMillis"`
	Description        string `json:"description,omitempty"`
	CredentialsSummary string `json:"credentialsSummary,omitempty"`
}

// ResponseInfo is the load metadata attached to onAdLoaded events
type ResponseInfo struct {
	ResponseID                string                `json:"responseId,omitempty"`
	MediationAdapterClassName string                `json:"mediationAdapterClassName,omitempty"`
	AdapterResponses          []AdapterResponseInfo `json:"adapterResponses,omitempty"`
}

// RewardItem is the normalized {amount, type} reward payload
type RewardItem struct {
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
}

// PrecisionType qualifies how precise a paid-event value is
type PrecisionType int

const (
	PrecisionUnknown PrecisionType = iota
	PrecisionEstimated
	PrecisionPublisherProvided
	PrecisionPrecise
)

// AdValue is the revenue associated with a paid event, in micro-units
// of the given currency.
type AdValue struct {
	CurrencyCode string        `json:"currencyCode"`
	Precision    PrecisionType `json:"precision"`
	Micros       int64         `json:"valueMicros"`
}

// Value returns the ad value in whole currency units.
func (v AdValue) Value() decimal.Decimal {
	return decimal.New(v.Micros, -6)
}
