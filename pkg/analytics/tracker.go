// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics aggregates the bridge's dispatched events into
// in-memory counters for the admin API.
package analytics

import (
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/event"
)

// Tracker tallies dispatched ad events. It taps the dispatch stream via
// event.Observer and is safe for concurrent use.
type Tracker struct {
	// Real-time counters
	LoadsSucceeded atomic.Uint64
	LoadsFailed    atomic.Uint64
	Impressions    atomic.Uint64
	Clicks         atomic.Uint64
	RewardsEarned  atomic.Uint64
	AppEvents      atomic.Uint64
	ShowFailures   atomic.Uint64

	// Paid-event revenue in microcents
	RevenueMicros atomic.Int64

	mu       sync.RWMutex
	byEvent  map[string]uint64
	rewarded int64 // total reward amount across all reward events
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		byEvent: make(map[string]uint64),
	}
}

// Observe implements event.Observer
func (t *Tracker) Observe(ev event.Event) {
	switch ev.Name {
	case event.AdLoaded:
		t.LoadsSucceeded.Add(1)
	case event.AdFailedToLoad:
		t.LoadsFailed.Add(1)
	case event.AdImpression, event.NativeAdImpression:
		t.Impressions.Add(1)
	case event.NativeAdClicked:
		t.Clicks.Add(1)
	case event.AdFailedToShowFullScreenContent:
		t.ShowFailures.Add(1)
	case event.AppEvent:
		t.AppEvents.Add(1)
	case event.RewardedAdUserEarnedReward:
		t.RewardsEarned.Add(1)
		t.addReward(ev)
	case event.PaidEvent:
		t.addRevenue(ev)
	}

	t.mu.Lock()
	t.byEvent[ev.Name]++
	t.mu.Unlock()
}

func (t *Tracker) addReward(ev event.Event) {
	if item, ok := ev.Fields["rewardItem"].(ads.RewardItem); ok {
		t.mu.Lock()
		t.rewarded += item.Amount
		t.mu.Unlock()
	}
}

func (t *Tracker) addRevenue(ev event.Event) {
	if value, ok := ev.Fields["adValue"].(ads.AdValue); ok {
		t.RevenueMicros.Add(value.Micros)
	}
}

// Snapshot is a point-in-time view of the tracker
type Snapshot struct {
	LoadsSucceeded uint64            `json:"loadsSucceeded"`
	LoadsFailed    uint64            `json:"loadsFailed"`
	Impressions    uint64            `json:"impressions"`
	Clicks         uint64            `json:"clicks"`
	RewardsEarned  uint64            `json:"rewardsEarned"`
	AppEvents      uint64            `json:"appEvents"`
	ShowFailures   uint64            `json:"showFailures"`
	RewardAmount   int64             `json:"rewardAmount"`
	Revenue        decimal.Decimal   `json:"revenue"`
	ECPM           decimal.Decimal   `json:"ecpm"`
	ByEvent        map[string]uint64 `json:"byEvent"`
}

// Snapshot returns current totals. ECPM is revenue per thousand
// impressions in whole currency units.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	byEvent := make(map[string]uint64, len(t.byEvent))
	for k, v := range t.byEvent {
		byEvent[k] = v
	}
	rewarded := t.rewarded
	t.mu.RUnlock()

	revenue := decimal.New(t.RevenueMicros.Load(), -6)
	impressions := t.Impressions.Load()

	ecpm := decimal.Zero
	if impressions > 0 {
		ecpm = revenue.Mul(decimal.NewFromInt(1000)).
			Div(decimal.NewFromInt(int64(impressions)))
	}

	return Snapshot{
		LoadsSucceeded: t.LoadsSucceeded.Load(),
		LoadsFailed:    t.LoadsFailed.Load(),
		Impressions:    impressions,
		Clicks:         t.Clicks.Load(),
		RewardsEarned:  t.RewardsEarned.Load(),
		AppEvents:      t.AppEvents.Load(),
		ShowFailures:   t.ShowFailures.Load(),
		RewardAmount:   rewarded,
		Revenue:        revenue,
		ECPM:           ecpm,
		ByEvent:        byEvent,
	}
}

var _ event.Observer = (*Tracker)(nil)
