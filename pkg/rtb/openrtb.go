// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rtb renders a tracked ad's load parameters as an OpenRTB bid
// request, for the admin diagnostics endpoint. The bridge never bids;
// this is the request an exchange-side debugger would see.
package rtb

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/adxyz/adbridge/pkg/ads"
)

// BuildBidRequest maps one tracked ad handle to an OpenRTB 2.x request.
// The identifier doubles as the request and impression id.
func BuildBidRequest(id int64, ad ads.Ad) *openrtb2.BidRequest {
	imp := openrtb2.Imp{
		ID:    strconv.FormatInt(id, 10),
		TagID: ad.AdUnitID(),
		Instl: instl(ad.Format()),
		Rwdd:  rwdd(ad.Format()),
	}

	var req ads.AdRequest
	switch a := ad.(type) {
	case *ads.BannerAd:
		req = a.Request()
		imp.Banner = banner(a.Size())
	case *ads.AdManagerBannerAd:
		imp.Banner = multiSizeBanner(a.Sizes())
	case *ads.NativeAd:
		imp.Native = &openrtb2.Native{Ver: "1.2"}
	default:
		// Full-screen formats render as an interstitial banner imp.
		imp.Banner = &openrtb2.Banner{}
	}

	out := &openrtb2.BidRequest{
		ID:  strconv.FormatInt(id, 10),
		Imp: []openrtb2.Imp{imp},
	}

	if len(req.Keywords) > 0 || req.ContentURL != "" {
		out.App = &openrtb2.App{
			Keywords: strings.Join(req.Keywords, ","),
		}
		if req.ContentURL != "" {
			out.App.Content = &openrtb2.Content{URL: req.ContentURL}
		}
	}

	if req.NonPersonalizedAds {
		out.Regs = &openrtb2.Regs{Ext: json.RawMessage(`{"npa":1}`)}
	}

	return out
}

func banner(size ads.AdSize) *openrtb2.Banner {
	w := int64(size.Width)
	h := int64(size.Height)
	return &openrtb2.Banner{W: &w, H: &h}
}

func multiSizeBanner(sizes []ads.AdSize) *openrtb2.Banner {
	if len(sizes) == 0 {
		return &openrtb2.Banner{}
	}
	b := banner(sizes[0])
	for _, s := range sizes {
		b.Format = append(b.Format, openrtb2.Format{W: int64(s.Width), H: int64(s.Height)})
	}
	return b
}

func instl(format ads.AdFormat) int8 {
	switch format {
	case ads.FormatInterstitial, ads.FormatRewarded, ads.FormatAdManagerInterstitial:
		return 1
	default:
		return 0
	}
}

func rwdd(format ads.AdFormat) int8 {
	if format == ads.FormatRewarded {
		return 1
	}
	return 0
}
