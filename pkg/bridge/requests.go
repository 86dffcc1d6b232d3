// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/codec"
)

// Inbound method names, fixed by the channel protocol.
const (
	methodInit                        = "_init"
	methodInitialize                  = "MobileAds#initialize"
	methodUpdateRequestConfiguration  = "MobileAds#updateRequestConfiguration"
	methodSetAppMuted                 = "MobileAds#setAppMuted"
	methodLoadBannerAd                = "loadBannerAd"
	methodLoadNativeAd                = "loadNativeAd"
	methodLoadInterstitialAd          = "loadInterstitialAd"
	methodLoadRewardedAd              = "loadRewardedAd"
	methodLoadAdManagerBannerAd       = "loadAdManagerBannerAd"
	methodLoadAdManagerInterstitialAd = "loadAdManagerInterstitialAd"
	methodDisposeAd                   = "disposeAd"
	methodShowAdWithoutView           = "showAdWithoutView"
	methodAnchoredAdaptiveBannerSize  = "AdSize#getAnchoredAdaptiveBannerAdSize"
)

// ErrUnknownMethod marks an inbound method outside the request set.
var ErrUnknownMethod = errors.New("unknown method")

// Request is the closed set of inbound bridge requests. Parsing turns a
// raw method call into exactly one of the variants below, so the handler
// is a type switch with no stringly default fallthrough.
type Request interface {
	isRequest()
}

type LoadBannerAd struct {
	AdID     int64
	AdUnitID string
	Size     ads.AdSize
	Request  ads.AdRequest
}

type LoadNativeAd struct {
	AdID             int64
	AdUnitID         string
	FactoryID        string
	Request          *ads.AdRequest
	AdManagerRequest *ads.AdManagerAdRequest
	CustomOptions    map[string]any
}

type LoadInterstitialAd struct {
	AdID     int64
	AdUnitID string
	Request  ads.AdRequest
}

type LoadRewardedAd struct {
	AdID             int64
	AdUnitID         string
	Request          *ads.AdRequest
	AdManagerRequest *ads.AdManagerAdRequest
	SSV              *ads.ServerSideVerificationOptions
}

type LoadAdManagerBannerAd struct {
	AdID     int64
	AdUnitID string
	Sizes    []ads.AdSize
	Request  ads.AdManagerAdRequest
}

type LoadAdManagerInterstitialAd struct {
	AdID     int64
	AdUnitID string
	Request  ads.AdManagerAdRequest
}

type DisposeAd struct {
	AdID int64
}

// DisposeAllAds is the hot-restart reset request
type DisposeAllAds struct{}

type ShowAdWithoutView struct {
	AdID int64
}

type Initialize struct{}

type UpdateRequestConfiguration struct {
	Config ads.RequestConfiguration
}

type SetAppMuted struct {
	Muted bool
}

type AnchoredAdaptiveBannerSize struct {
	Orientation string
	Width       int
}

func (LoadBannerAd) isRequest()                {}
func (LoadNativeAd) isRequest()                {}
func (LoadInterstitialAd) isRequest()          {}
func (LoadRewardedAd) isRequest()              {}
func (LoadAdManagerBannerAd) isRequest()       {}
func (LoadAdManagerInterstitialAd) isRequest() {}
func (DisposeAd) isRequest()                   {}
func (DisposeAllAds) isRequest()               {}
func (ShowAdWithoutView) isRequest()           {}
func (Initialize) isRequest()                  {}
func (UpdateRequestConfiguration) isRequest()  {}
func (SetAppMuted) isRequest()                 {}
func (AnchoredAdaptiveBannerSize) isRequest()  {}

// ParseRequest decodes one inbound envelope into its request variant.
// A method outside the set yields ErrUnknownMethod; a method inside the
// set with bad arguments yields a codec.ErrMalformed-wrapped error.
func ParseRequest(msg codec.Message) (Request, error) {
	args := msg.Args

	switch msg.Method {
	case methodInit:
		return DisposeAllAds{}, nil

	case methodInitialize:
		return Initialize{}, nil

	case methodUpdateRequestConfiguration:
		var req UpdateRequestConfiguration
		rating, err := codec.OptStringArg(args, "maxAdContentRating")
		if err != nil {
			return nil, err
		}
		req.Config.MaxAdContentRating = rating
		if n, ok, err := codec.OptIntArg(args, "tagForChildDirectedTreatment"); err != nil {
			return nil, err
		} else if ok {
			req.Config.TagForChildDirectedTreatment = &n
		}
		if n, ok, err := codec.OptIntArg(args, "tagForUnderAgeOfConsent"); err != nil {
			return nil, err
		} else if ok {
			req.Config.TagForUnderAgeOfConsent = &n
		}
		devices, err := codec.StringSliceArg(args, "testDeviceIds")
		if err != nil {
			return nil, err
		}
		req.Config.TestDeviceIDs = devices
		return req, nil

	case methodSetAppMuted:
		muted, err := codec.BoolArg(args, "muted")
		if err != nil {
			return nil, err
		}
		return SetAppMuted{Muted: muted}, nil

	case methodLoadBannerAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		size, err := decodeSize(args, "size")
		if err != nil {
			return nil, err
		}
		request, err := decodeAdRequest(args, "request")
		if err != nil {
			return nil, err
		}
		return LoadBannerAd{AdID: adID, AdUnitID: adUnitID, Size: size, Request: request}, nil

	case methodLoadNativeAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		factoryID, err := codec.StringArg(args, "factoryId")
		if err != nil {
			return nil, err
		}
		request, amRequest, err := decodeEitherRequest(args)
		if err != nil {
			return nil, err
		}
		custom, err := codec.MapArg(args, "customOptions")
		if err != nil {
			return nil, err
		}
		return LoadNativeAd{
			AdID:             adID,
			AdUnitID:         adUnitID,
			FactoryID:        factoryID,
			Request:          request,
			AdManagerRequest: amRequest,
			CustomOptions:    custom,
		}, nil

	case methodLoadInterstitialAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		request, err := decodeAdRequest(args, "request")
		if err != nil {
			return nil, err
		}
		return LoadInterstitialAd{AdID: adID, AdUnitID: adUnitID, Request: request}, nil

	case methodLoadRewardedAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		request, amRequest, err := decodeEitherRequest(args)
		if err != nil {
			return nil, err
		}
		ssv, err := decodeSSV(args)
		if err != nil {
			return nil, err
		}
		return LoadRewardedAd{
			AdID:             adID,
			AdUnitID:         adUnitID,
			Request:          request,
			AdManagerRequest: amRequest,
			SSV:              ssv,
		}, nil

	case methodLoadAdManagerBannerAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		sizes, err := decodeSizes(args, "sizes")
		if err != nil {
			return nil, err
		}
		request, err := decodeAdManagerRequest(args, "request")
		if err != nil {
			return nil, err
		}
		return LoadAdManagerBannerAd{AdID: adID, AdUnitID: adUnitID, Sizes: sizes, Request: request}, nil

	case methodLoadAdManagerInterstitialAd:
		adID, adUnitID, err := adIDAndUnit(args)
		if err != nil {
			return nil, err
		}
		request, err := decodeAdManagerRequest(args, "request")
		if err != nil {
			return nil, err
		}
		return LoadAdManagerInterstitialAd{AdID: adID, AdUnitID: adUnitID, Request: request}, nil

	case methodDisposeAd:
		adID, err := codec.Int64Arg(args, "adId")
		if err != nil {
			return nil, err
		}
		return DisposeAd{AdID: adID}, nil

	case methodShowAdWithoutView:
		adID, err := codec.Int64Arg(args, "adId")
		if err != nil {
			return nil, err
		}
		return ShowAdWithoutView{AdID: adID}, nil

	case methodAnchoredAdaptiveBannerSize:
		orientation, err := codec.OptStringArg(args, "orientation")
		if err != nil {
			return nil, err
		}
		width, ok, err := codec.OptIntArg(args, "width")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: missing required argument %q", codec.ErrMalformed, "width")
		}
		return AnchoredAdaptiveBannerSize{Orientation: orientation, Width: width}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, msg.Method)
	}
}

func adIDAndUnit(args map[string]any) (int64, string, error) {
	adID, err := codec.Int64Arg(args, "adId")
	if err != nil {
		return 0, "", err
	}
	adUnitID, err := codec.StringArg(args, "adUnitId")
	if err != nil {
		return 0, "", err
	}
	return adID, adUnitID, nil
}

// remarshal round-trips a decoded argument object into a typed struct
func remarshal(m map[string]any, out any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	return nil
}

func decodeSize(args map[string]any, key string) (ads.AdSize, error) {
	m, err := codec.MapArg(args, key)
	if err != nil {
		return ads.AdSize{}, err
	}
	if m == nil {
		return ads.AdSize{}, fmt.Errorf("%w: missing required argument %q", codec.ErrMalformed, key)
	}
	var size ads.AdSize
	if err := remarshal(m, &size); err != nil {
		return ads.AdSize{}, err
	}
	return size, nil
}

func decodeSizes(args map[string]any, key string) ([]ads.AdSize, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing required argument %q", codec.ErrMalformed, key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: argument %q has unexpected type %T", codec.ErrMalformed, key, v)
	}
	sizes := make([]ads.AdSize, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: argument %q has a non-object element", codec.ErrMalformed, key)
		}
		var size ads.AdSize
		if err := remarshal(m, &size); err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func decodeAdRequest(args map[string]any, key string) (ads.AdRequest, error) {
	m, err := codec.MapArg(args, key)
	if err != nil || m == nil {
		return ads.AdRequest{}, err
	}
	var req ads.AdRequest
	if err := remarshal(m, &req); err != nil {
		return ads.AdRequest{}, err
	}
	return req, nil
}

func decodeAdManagerRequest(args map[string]any, key string) (ads.AdManagerAdRequest, error) {
	m, err := codec.MapArg(args, key)
	if err != nil || m == nil {
		return ads.AdManagerAdRequest{}, err
	}
	var req ads.AdManagerAdRequest
	if err := remarshal(m, &req); err != nil {
		return ads.AdManagerAdRequest{}, err
	}
	return req, nil
}

// decodeEitherRequest returns whichever of "request" and
// "adManagerRequest" is present; both may be absent.
func decodeEitherRequest(args map[string]any) (*ads.AdRequest, *ads.AdManagerAdRequest, error) {
	if m, err := codec.MapArg(args, "request"); err != nil {
		return nil, nil, err
	} else if m != nil {
		var req ads.AdRequest
		if err := remarshal(m, &req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	if m, err := codec.MapArg(args, "adManagerRequest"); err != nil {
		return nil, nil, err
	} else if m != nil {
		var req ads.AdManagerAdRequest
		if err := remarshal(m, &req); err != nil {
			return nil, nil, err
		}
		return nil, &req, nil
	}

	return nil, nil, nil
}

func decodeSSV(args map[string]any) (*ads.ServerSideVerificationOptions, error) {
	m, err := codec.MapArg(args, "serverSideVerificationOptions")
	if err != nil || m == nil {
		return nil, err
	}
	var ssv ads.ServerSideVerificationOptions
	if err := remarshal(m, &ssv); err != nil {
		return nil, err
	}
	return &ssv, nil
}
