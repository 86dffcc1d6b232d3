// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge routes inbound channel requests to the registry, the
// ad handles and the native SDK.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/event"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
)

// Error codes surfaced in failed responses.
const (
	CodeInvalidRequest = "InvalidRequest"
	CodeNativeAdError  = "NativeAdError"
	CodeAdShowError    = "AdShowError"
	CodeNotImplemented = "notImplemented"
	CodeInternal       = "InternalError"
)

// Error is a caller-facing request failure
type Error struct {
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Bridge wires the inbound request surface to the registry, dispatcher
// and SDK. One Bridge exists per embedding session; DisposeAllAds tears
// its tracked state down on session reset.
type Bridge struct {
	sdk        ads.SDK
	registry   *registry.AdRegistry
	dispatcher *event.Dispatcher
	factories  *FactoryRegistry
	log        log.Logger
	metrics    *metric.Metrics
}

// New creates a bridge
func New(sdk ads.SDK, reg *registry.AdRegistry, dispatcher *event.Dispatcher, factories *FactoryRegistry, logger log.Logger, metrics *metric.Metrics) *Bridge {
	return &Bridge{
		sdk:        sdk,
		registry:   reg,
		dispatcher: dispatcher,
		factories:  factories,
		log:        logger,
		metrics:    metrics,
	}
}

// Registry exposes the registry for the admin API
func (b *Bridge) Registry() *registry.AdRegistry { return b.registry }

// Factories exposes the native ad factory registry
func (b *Bridge) Factories() *FactoryRegistry { return b.factories }

// HandleRequest implements channel.RequestHandler: parse, execute,
// envelope. Request failures are returned as structured error results
// on the same correlation id, never pushed onto the event stream.
func (b *Bridge) HandleRequest(ctx context.Context, msg codec.Message) codec.Message {
	id := *msg.ID

	req, err := ParseRequest(msg)
	if err != nil {
		b.metrics.RequestsProcessed.WithLabelValues(msg.Method, "error").Inc()
		if errors.Is(err, ErrUnknownMethod) {
			return codec.Failure(id, CodeNotImplemented, err.Error(), nil)
		}
		return codec.Failure(id, CodeInvalidRequest, err.Error(), nil)
	}

	result, herr := b.Handle(ctx, req)
	if herr != nil {
		b.metrics.RequestsProcessed.WithLabelValues(msg.Method, "error").Inc()
		b.log.Warn(fmt.Sprintf("%s failed: %s", msg.Method, herr.Message))
		return codec.Failure(id, herr.Code, herr.Message, herr.Details)
	}

	b.metrics.RequestsProcessed.WithLabelValues(msg.Method, "ok").Inc()

	resp, encErr := codec.Success(id, result)
	if encErr != nil {
		return codec.Failure(id, CodeInternal, encErr.Error(), nil)
	}
	return resp
}

// Handle executes one parsed request. The type switch is exhaustive
// over the closed request set.
func (b *Bridge) Handle(ctx context.Context, req Request) (any, *Error) {
	switch r := req.(type) {
	case DisposeAllAds:
		b.registry.UntrackAll()
		return nil, nil

	case Initialize:
		status, err := b.sdk.Initialize(ctx)
		if err != nil {
			return nil, &Error{Code: CodeInternal, Message: err.Error()}
		}
		return status, nil

	case UpdateRequestConfiguration:
		if err := b.sdk.UpdateRequestConfiguration(r.Config); err != nil {
			return nil, &Error{Code: CodeInternal, Message: err.Error()}
		}
		return nil, nil

	case SetAppMuted:
		if err := b.sdk.SetAppMuted(r.Muted); err != nil {
			return nil, &Error{Code: CodeInternal, Message: err.Error()}
		}
		return nil, nil

	case LoadBannerAd:
		ad := ads.NewBannerAd(b.sdk, r.AdUnitID, r.Size, r.Request, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case LoadNativeAd:
		factory, ok := b.factories.Lookup(r.FactoryID)
		if !ok {
			return nil, &Error{
				Code:    CodeNativeAdError,
				Message: fmt.Sprintf("can't find NativeAdFactory with id: %s", r.FactoryID),
			}
		}
		ad := ads.NewNativeAd(b.sdk, ads.NativeAdConfig{
			AdUnitID:         r.AdUnitID,
			Factory:          factory,
			Request:          r.Request,
			AdManagerRequest: r.AdManagerRequest,
			CustomOptions:    r.CustomOptions,
		}, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case LoadInterstitialAd:
		ad := ads.NewInterstitialAd(b.sdk, r.AdUnitID, r.Request, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case LoadRewardedAd:
		if r.Request == nil && r.AdManagerRequest == nil {
			return nil, invalid("a null or invalid ad request was provided")
		}
		ad := ads.NewRewardedAd(b.sdk, ads.RewardedAdConfig{
			AdUnitID:         r.AdUnitID,
			Request:          r.Request,
			AdManagerRequest: r.AdManagerRequest,
			SSV:              r.SSV,
		}, b.dispatcher, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case LoadAdManagerBannerAd:
		ad := ads.NewAdManagerBannerAd(b.sdk, r.AdUnitID, r.Sizes, r.Request, b.dispatcher, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case LoadAdManagerInterstitialAd:
		ad := ads.NewAdManagerInterstitialAd(b.sdk, r.AdUnitID, r.Request, b.dispatcher, b.dispatcher, b.dispatcher)
		return nil, b.trackAndLoad(ctx, ad, r.AdID)

	case DisposeAd:
		b.registry.Untrack(r.AdID)
		return nil, nil

	case ShowAdWithoutView:
		ad, ok := b.registry.HandleFor(r.AdID)
		if !ok {
			return nil, &Error{Code: CodeAdShowError, Message: "ad failed to show"}
		}
		fullScreen, ok := ad.(ads.FullScreenAd)
		if !ok {
			return nil, &Error{Code: CodeAdShowError, Message: "ad failed to show"}
		}
		if err := fullScreen.Show(); err != nil {
			return nil, &Error{Code: CodeAdShowError, Message: "ad failed to show", Details: err.Error()}
		}
		return nil, nil

	case AnchoredAdaptiveBannerSize:
		size, ok := b.sdk.AnchoredAdaptiveBannerSize(r.Orientation, r.Width)
		if !ok {
			return nil, nil
		}
		return size.Height, nil
	}

	// Unreachable: ParseRequest only produces the variants above.
	return nil, &Error{Code: CodeNotImplemented, Message: "unhandled request variant"}
}

// trackAndLoad registers the handle then triggers the load. A handle
// whose load cannot even be issued is untracked again so its identifier
// is free for reuse.
func (b *Bridge) trackAndLoad(ctx context.Context, ad ads.Ad, adID int64) *Error {
	if err := b.registry.Track(ad, adID); err != nil {
		return invalid("%v", err)
	}
	if err := ad.Load(ctx); err != nil {
		b.registry.Untrack(adID)
		return &Error{Code: CodeInternal, Message: fmt.Sprintf("load failed: %v", err)}
	}
	return nil
}
