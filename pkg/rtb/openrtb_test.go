// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/sim"
)

func testSDK() ads.SDK {
	return sim.New(sim.Config{}, log.NoOp())
}

func TestBannerBidRequest(t *testing.T) {
	require := require.New(t)

	ad := ads.NewBannerAd(testSDK(), "unit-banner", ads.SizeBanner, ads.AdRequest{
		Keywords:   []string{"games", "sports"},
		ContentURL: "https://example.com/article",
	}, nil, nil)

	req := BuildBidRequest(7, ad)
	require.Equal("7", req.ID)
	require.Len(req.Imp, 1)

	imp := req.Imp[0]
	require.Equal("7", imp.ID)
	require.Equal("unit-banner", imp.TagID)
	require.EqualValues(0, imp.Instl)
	require.EqualValues(0, imp.Rwdd)
	require.NotNil(imp.Banner)
	require.EqualValues(320, *imp.Banner.W)
	require.EqualValues(50, *imp.Banner.H)

	require.NotNil(req.App)
	require.Equal("games,sports", req.App.Keywords)
	require.NotNil(req.App.Content)
	require.Equal("https://example.com/article", req.App.Content.URL)
	require.Nil(req.Regs)
}

func TestNonPersonalizedAdsSetRegs(t *testing.T) {
	require := require.New(t)

	ad := ads.NewBannerAd(testSDK(), "unit-banner", ads.SizeBanner, ads.AdRequest{
		NonPersonalizedAds: true,
	}, nil, nil)

	req := BuildBidRequest(1, ad)
	require.NotNil(req.Regs)
	require.JSONEq(`{"npa":1}`, string(req.Regs.Ext))
}

func TestInterstitialBidRequest(t *testing.T) {
	require := require.New(t)

	ad := ads.NewInterstitialAd(testSDK(), "unit-int", ads.AdRequest{}, nil, nil)
	req := BuildBidRequest(2, ad)

	imp := req.Imp[0]
	require.EqualValues(1, imp.Instl)
	require.EqualValues(0, imp.Rwdd)
	require.NotNil(imp.Banner)
}

func TestRewardedBidRequest(t *testing.T) {
	require := require.New(t)

	ad := ads.NewRewardedAd(testSDK(), ads.RewardedAdConfig{
		AdUnitID: "unit-rewarded",
		Request:  &ads.AdRequest{},
	}, nil, nil, nil)
	req := BuildBidRequest(3, ad)

	imp := req.Imp[0]
	require.EqualValues(1, imp.Instl)
	require.EqualValues(1, imp.Rwdd)
}

func TestNativeBidRequest(t *testing.T) {
	require := require.New(t)

	ad := ads.NewNativeAd(testSDK(), ads.NativeAdConfig{
		AdUnitID: "unit-native",
		Factory:  sim.Factory{},
	}, nil, nil)
	req := BuildBidRequest(4, ad)

	imp := req.Imp[0]
	require.Nil(imp.Banner)
	require.NotNil(imp.Native)
	require.Equal("1.2", imp.Native.Ver)
}

func TestMultiSizeBannerFormats(t *testing.T) {
	require := require.New(t)

	sizes := []ads.AdSize{ads.SizeBanner, ads.SizeMediumRect, ads.SizeLeaderboard}
	ad := ads.NewAdManagerBannerAd(testSDK(), "unit-gam", sizes, ads.AdManagerAdRequest{}, nil, nil, nil)
	req := BuildBidRequest(5, ad)

	imp := req.Imp[0]
	require.NotNil(imp.Banner)
	require.EqualValues(320, *imp.Banner.W)
	require.Len(imp.Banner.Format, 3)
	require.EqualValues(300, imp.Banner.Format[1].W)
	require.EqualValues(250, imp.Banner.Format[1].H)
}
