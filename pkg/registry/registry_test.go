// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
)

// stubAd is the minimal ads.Ad used by the registry tests
type stubAd struct {
	unit     string
	disposed int
}

func (s *stubAd) Format() ads.AdFormat           { return ads.FormatBanner }
func (s *stubAd) AdUnitID() string               { return s.unit }
func (s *stubAd) Load(ctx context.Context) error { return nil }
func (s *stubAd) Dispose()                       { s.disposed++ }

func newTestRegistry() *AdRegistry {
	return NewAdRegistry(log.NoOp(), metric.NoOp())
}

func TestTrackAndLookup(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 0))
	require.Equal(1, reg.Len())

	got, ok := reg.HandleFor(0)
	require.True(ok)
	require.Same(ad, got)

	id, ok := reg.IdentifierFor(ad)
	require.True(ok)
	require.Equal(int64(0), id)
}

func TestTrackRejectsDuplicateIdentifier(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	first := &stubAd{unit: "unit-1"}
	second := &stubAd{unit: "unit-2"}
	require.NoError(reg.Track(first, 7))

	err := reg.Track(second, 7)
	require.ErrorIs(err, ErrIdentifierTracked)

	// The original mapping is untouched.
	got, ok := reg.HandleFor(7)
	require.True(ok)
	require.Same(first, got)
	_, ok = reg.IdentifierFor(second)
	require.False(ok)
}

func TestTrackRejectsDuplicateHandle(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 1))

	err := reg.Track(ad, 2)
	require.ErrorIs(err, ErrHandleTracked)
	require.Equal(1, reg.Len())
}

func TestTrackRejectsNilAndNegative(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	require.Error(reg.Track(nil, 1))
	require.Error(reg.Track(&stubAd{}, -1))
	require.Equal(0, reg.Len())
}

func TestDistinctHandlesSameUnit(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	// Two loads of the same ad unit are distinct handles and must map
	// to their own identifiers.
	first := &stubAd{unit: "unit-1"}
	second := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(first, 1))
	require.NoError(reg.Track(second, 2))

	id, ok := reg.IdentifierFor(second)
	require.True(ok)
	require.Equal(int64(2), id)
}

func TestUntrackDisposesOnce(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 3))

	reg.Untrack(3)
	require.Equal(1, ad.disposed)
	require.Equal(0, reg.Len())

	_, ok := reg.HandleFor(3)
	require.False(ok)
	_, ok = reg.IdentifierFor(ad)
	require.False(ok)

	// Second untrack is a no-op.
	reg.Untrack(3)
	require.Equal(1, ad.disposed)
}

func TestUntrackUnknownIsNoOp(t *testing.T) {
	reg := newTestRegistry()
	reg.Untrack(99)
}

func TestIdentifierReusableAfterUntrack(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	first := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(first, 5))
	reg.Untrack(5)

	second := &stubAd{unit: "unit-2"}
	require.NoError(reg.Track(second, 5))

	got, ok := reg.HandleFor(5)
	require.True(ok)
	require.Same(second, got)
}

func TestUntrackAll(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	ads := []*stubAd{{unit: "a"}, {unit: "b"}, {unit: "c"}}
	for i, ad := range ads {
		require.NoError(reg.Track(ad, int64(i)))
	}

	reg.UntrackAll()
	require.Equal(0, reg.Len())
	for _, ad := range ads {
		require.Equal(1, ad.disposed)
	}

	// Identifiers are free for reuse afterwards.
	require.NoError(reg.Track(&stubAd{unit: "d"}, 0))
}

func TestConcurrentAccess(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	// Native callback threads track, look up, and untrack concurrently
	// while hot-restart resets and admin snapshots race them.
	const workers = 8
	const cycles = 200

	tracked := make([][]*stubAd, workers)
	var wg sync.WaitGroup
	for g := range tracked {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < cycles; i++ {
				id := int64(g*cycles + i)
				ad := &stubAd{unit: "unit-conc"}
				tracked[g] = append(tracked[g], ad)
				if err := reg.Track(ad, id); err != nil {
					t.Errorf("track %d: %v", id, err)
					return
				}
				if got, ok := reg.HandleFor(id); ok && got != ad {
					t.Errorf("identifier %d mapped to a different handle", id)
					return
				}
				reg.IdentifierFor(ad)
				reg.Untrack(id)
			}
		}(g)
	}

	resets := make(chan struct{})
	go func() {
		defer close(resets)
		for i := 0; i < 50; i++ {
			reg.UntrackAll()
			reg.Snapshot()
		}
	}()

	wg.Wait()
	<-resets

	// Whichever side won each race, every ad was disposed exactly once.
	reg.UntrackAll()
	require.Equal(0, reg.Len())
	for _, ads := range tracked {
		for _, ad := range ads {
			require.Equal(1, ad.disposed)
		}
	}
}

func TestSnapshot(t *testing.T) {
	require := require.New(t)
	reg := newTestRegistry()

	ad := &stubAd{unit: "unit-1"}
	require.NoError(reg.Track(ad, 10))

	snap := reg.Snapshot()
	require.Len(snap, 1)
	require.Same(ad, snap[10])

	// Mutating the snapshot does not touch the registry.
	delete(snap, 10)
	require.Equal(1, reg.Len())
}
