// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sim is an in-process stand-in for the native advertising SDK.
// Loads succeed (or fail, for configured ad units) after an optional
// delay, presentation runs a canned lifecycle, and paid events are
// derived from a configured eCPM. The daemon runs on it by default and
// the integration tests drive the bridge through it.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/log"
)

var ErrNotReady = errors.New("sim: ad not ready")

const adapterClass = "com.adxyz.sim.SimAdapter"

// Config tunes the simulated SDK
type Config struct {
	// LoadDelay is how long a load takes. Zero means callbacks fire
	// inline on the calling goroutine, which is what the tests want.
	LoadDelay time.Duration

	// FailUnits maps ad unit ids to the load error they produce.
	FailUnits map[string]ads.LoadAdError

	// ECPM is revenue per thousand impressions in whole currency
	// units; zero disables paid events.
	ECPM decimal.Decimal

	// Reward granted when a rewarded ad finishes.
	RewardAmount int64
	RewardType   string
}

// DefaultConfig returns the configuration the daemon starts with
func DefaultConfig() Config {
	return Config{
		ECPM:         decimal.NewFromFloat(2.50),
		RewardAmount: 10,
		RewardType:   "coins",
	}
}

// SDK implements ads.SDK
type SDK struct {
	cfg Config
	log log.Logger

	mu        sync.Mutex
	reqConfig ads.RequestConfiguration
	appMuted  bool
}

// New creates a simulated SDK
func New(cfg Config, logger log.Logger) *SDK {
	if cfg.RewardType == "" {
		cfg.RewardType = "coins"
	}
	return &SDK{cfg: cfg, log: logger}
}

// paidValue converts the configured eCPM into one impression's value
func (s *SDK) paidValue() (ads.AdValue, bool) {
	if s.cfg.ECPM.IsZero() {
		return ads.AdValue{}, false
	}
	micros := s.cfg.ECPM.Shift(6).Div(decimal.NewFromInt(1000)).IntPart()
	return ads.AdValue{
		CurrencyCode: "USD",
		Precision:    ads.PrecisionEstimated,
		Micros:       micros,
	}, true
}

// deliver runs fn after the configured load delay, inline when the
// delay is zero.
func (s *SDK) deliver(fn func()) {
	if s.cfg.LoadDelay == 0 {
		fn()
		return
	}
	go func() {
		time.Sleep(s.cfg.LoadDelay)
		fn()
	}()
}

func (s *SDK) completeLoad(adUnitID string, ev ads.LoadEvents, ad *simAd) {
	s.completeLoadThen(adUnitID, ev, ad, nil)
}

func (s *SDK) LoadBannerAd(ctx context.Context, spec ads.BannerSpec, ev ads.LoadEvents) (ads.PlatformAd, error) {
	ad := &simAd{sdk: s, ev: ev, unit: spec.AdUnitID}
	// A banner renders as soon as it fills, so the impression and paid
	// event follow the load directly.
	s.completeLoadThen(spec.AdUnitID, ev, ad, func() {
		if ev.Impression != nil {
			ev.Impression()
		}
		if value, ok := s.paidValue(); ok {
			ev.EmitPaid(value)
		}
	})
	return ad, nil
}

func (s *SDK) LoadNativeAd(ctx context.Context, spec ads.NativeSpec, ev ads.LoadEvents) (ads.PlatformAd, error) {
	if spec.Factory == nil {
		return nil, fmt.Errorf("sim: native load without a factory (unit %s)", spec.AdUnitID)
	}
	ad := &simAd{sdk: s, ev: ev, unit: spec.AdUnitID}
	s.completeLoadThen(spec.AdUnitID, ev, ad, func() {
		assets := map[string]any{
			"headline": "Simulated native ad",
			"body":     "adbridge simulator fill",
			"adUnit":   spec.AdUnitID,
		}
		view, err := spec.Factory.CreateNativeAdView(assets, spec.CustomOptions)
		if err != nil {
			s.log.Warn(fmt.Sprintf("sim: native factory failed for %s: %v", spec.AdUnitID, err))
			return
		}
		ad.attachView(view)
		if ev.NativeImpression != nil {
			ev.NativeImpression()
		}
		if value, ok := s.paidValue(); ok {
			ev.EmitPaid(value)
		}
	})
	return ad, nil
}

func (s *SDK) LoadInterstitialAd(ctx context.Context, spec ads.InterstitialSpec, ev ads.LoadEvents) (ads.PlatformFullScreenAd, error) {
	ad := &simFullScreenAd{simAd: simAd{sdk: s, ev: ev, unit: spec.AdUnitID}}
	s.completeLoad(spec.AdUnitID, ev, &ad.simAd)
	return ad, nil
}

func (s *SDK) LoadRewardedAd(ctx context.Context, spec ads.RewardedSpec, ev ads.LoadEvents) (ads.PlatformFullScreenAd, error) {
	ad := &simFullScreenAd{
		simAd:  simAd{sdk: s, ev: ev, unit: spec.AdUnitID},
		reward: &ads.RewardItem{Amount: s.cfg.RewardAmount, Type: s.cfg.RewardType},
	}
	s.completeLoad(spec.AdUnitID, ev, &ad.simAd)
	return ad, nil
}

func (s *SDK) LoadAdManagerBannerAd(ctx context.Context, spec ads.AdManagerBannerSpec, ev ads.LoadEvents) (ads.PlatformAd, error) {
	ad := &simAd{sdk: s, ev: ev, unit: spec.AdUnitID}
	s.completeLoadThen(spec.AdUnitID, ev, ad, func() {
		if ev.Impression != nil {
			ev.Impression()
		}
		// Ad Manager creatives may raise publisher app events.
		ev.EmitAppEvent("sim", spec.AdUnitID)
		if value, ok := s.paidValue(); ok {
			ev.EmitPaid(value)
		}
	})
	return ad, nil
}

func (s *SDK) LoadAdManagerInterstitialAd(ctx context.Context, spec ads.AdManagerInterstitialSpec, ev ads.LoadEvents) (ads.PlatformFullScreenAd, error) {
	ad := &simFullScreenAd{
		simAd:    simAd{sdk: s, ev: ev, unit: spec.AdUnitID},
		appEvent: spec.AdUnitID,
	}
	s.completeLoad(spec.AdUnitID, ev, &ad.simAd)
	return ad, nil
}

// completeLoadThen completes the load and, on success, runs next on the
// same delivery.
func (s *SDK) completeLoadThen(adUnitID string, ev ads.LoadEvents, ad *simAd, next func()) {
	if loadErr, ok := s.cfg.FailUnits[adUnitID]; ok {
		s.deliver(func() {
			ev.EmitFailedToLoad(loadErr)
		})
		return
	}

	info := ads.ResponseInfo{
		ResponseID:                uuid.NewString(),
		MediationAdapterClassName: adapterClass,
		AdapterResponses: []ads.AdapterResponseInfo{{
			AdapterClassName: adapterClass,
			LatencyMillis:    s.cfg.LoadDelay.Milliseconds(),
			Description:      "simulated fill",
		}},
	}

	s.deliver(func() {
		if ad.destroyed() {
			return
		}
		ad.markLoaded()
		ev.EmitLoaded(info)
		if next != nil {
			next()
		}
	})
}

func (s *SDK) Initialize(ctx context.Context) (ads.InitializationStatus, error) {
	return ads.InitializationStatus{
		AdapterStatuses: map[string]ads.AdapterStatus{
			adapterClass: {State: ads.AdapterReady, Description: "Ready", LatencyMillis: 0},
		},
	}, nil
}

func (s *SDK) UpdateRequestConfiguration(cfg ads.RequestConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqConfig = cfg
	return nil
}

// RequestConfiguration returns the last applied configuration
func (s *SDK) RequestConfiguration() ads.RequestConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqConfig
}

func (s *SDK) SetAppMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appMuted = muted
	return nil
}

// AppMuted reports whether app-level ad audio is muted
func (s *SDK) AppMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appMuted
}

func (s *SDK) AnchoredAdaptiveBannerSize(orientation string, width int) (ads.AdSize, bool) {
	if width <= 0 {
		return ads.AdSize{}, false
	}
	height := width * 15 / 100
	if height < 50 {
		height = 50
	}
	if height > 90 {
		height = 90
	}
	if orientation == "landscape" {
		height = 50
	}
	return ads.AdSize{Width: width, Height: height}, true
}

var _ ads.SDK = (*SDK)(nil)
