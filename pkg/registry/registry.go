// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry tracks live ad handles by caller-assigned identifier.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
)

var (
	ErrIdentifierTracked = errors.New("identifier already tracked")
	ErrHandleTracked     = errors.New("handle already tracked")
)

// AdRegistry is the bidirectional mapping between ad identifiers and
// live ad handles. Handles are keyed by identity: every ads.Ad
// implementation is a pointer type, so the reverse map is unambiguous.
//
// The mutex is held only for the duration of a single map operation.
// Dispose hooks run outside the lock so a slow SDK teardown never blocks
// a native callback thread doing a lookup.
type AdRegistry struct {
	mu   sync.RWMutex
	byID map[int64]ads.Ad
	byAd map[ads.Ad]int64

	log     log.Logger
	metrics *metric.Metrics
}

// NewAdRegistry creates an empty registry
func NewAdRegistry(logger log.Logger, metrics *metric.Metrics) *AdRegistry {
	return &AdRegistry{
		byID:    make(map[int64]ads.Ad),
		byAd:    make(map[ads.Ad]int64),
		log:     logger,
		metrics: metrics,
	}
}

// Track registers the bidirectional mapping. It rejects an identifier or
// handle that is already tracked; silent overwrite would orphan the old
// entry and leave its reverse mapping dangling.
func (r *AdRegistry) Track(ad ads.Ad, id int64) error {
	if ad == nil {
		return errors.New("cannot track nil ad")
	}
	if id < 0 {
		return fmt.Errorf("invalid ad identifier %d", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("%w: %d", ErrIdentifierTracked, id)
	}
	if prev, exists := r.byAd[ad]; exists {
		return fmt.Errorf("%w: under identifier %d", ErrHandleTracked, prev)
	}

	r.byID[id] = ad
	r.byAd[ad] = id
	r.metrics.AdsTracked.Set(float64(len(r.byID)))

	r.log.Debug(fmt.Sprintf("tracked %s ad %d (%s)", ad.Format(), id, ad.AdUnitID()))
	return nil
}

// HandleFor returns the handle tracked under id
func (r *AdRegistry) HandleFor(id int64) (ads.Ad, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ad, ok := r.byID[id]
	return ad, ok
}

// IdentifierFor returns the identifier the handle is tracked under
func (r *AdRegistry) IdentifierFor(ad ads.Ad) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byAd[ad]
	return id, ok
}

// Untrack removes both directions of the mapping and invokes the
// handle's dispose hook. Untracking an unknown identifier is a no-op, so
// disposal stays idempotent and safe to call from cleanup paths.
func (r *AdRegistry) Untrack(id int64) {
	r.mu.Lock()
	ad, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		delete(r.byAd, ad)
		r.metrics.AdsTracked.Set(float64(len(r.byID)))
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	ad.Dispose()
	r.metrics.AdsDisposed.Inc()
	r.log.Debug(fmt.Sprintf("untracked ad %d", id))
}

// UntrackAll removes every tracked ad and disposes each one. Used when
// the embedding environment signals a full reset, e.g. a hot restart.
// Disposal order is unspecified.
func (r *AdRegistry) UntrackAll() {
	r.mu.Lock()
	dropped := r.byID
	r.byID = make(map[int64]ads.Ad)
	r.byAd = make(map[ads.Ad]int64)
	r.metrics.AdsTracked.Set(0)
	r.mu.Unlock()

	for _, ad := range dropped {
		ad.Dispose()
		r.metrics.AdsDisposed.Inc()
	}

	if n := len(dropped); n > 0 {
		r.log.Info(fmt.Sprintf("untracked all ads (%d disposed)", n))
	}
}

// Len returns the number of currently tracked ads
func (r *AdRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Snapshot returns a copy of the current identifier to handle mapping,
// for the admin API.
func (r *AdRegistry) Snapshot() map[int64]ads.Ad {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]ads.Ad, len(r.byID))
	for id, ad := range r.byID {
		out[id] = ad
	}
	return out
}
