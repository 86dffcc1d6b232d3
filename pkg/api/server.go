// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the admin surface of the bridge daemon: tracked
// ad inventory, analytics totals, Prometheus metrics, and diagnostic
// OpenRTB mappings of live ads.
package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adxyz/adbridge/pkg/analytics"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
	"github.com/adxyz/adbridge/pkg/rtb"
)

// Server is the admin HTTP API
type Server struct {
	registry *registry.AdRegistry
	tracker  *analytics.Tracker
	metrics  *metric.Metrics
	log      log.Logger
	version  string
}

// New creates the admin API server
func New(reg *registry.AdRegistry, tracker *analytics.Tracker, metrics *metric.Metrics, logger log.Logger, version string) *Server {
	return &Server{
		registry: reg,
		tracker:  tracker,
		metrics:  metrics,
		log:      logger,
		version:  version,
	}
}

// Router builds the gin engine serving the admin routes
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/ads", s.listAds)
		api.GET("/ads/:id/bidrequest", s.bidRequest)
		api.GET("/stats", s.stats)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "adbridge-admin",
		"version": s.version,
	})
}

type adSummary struct {
	AdID     int64  `json:"adId"`
	Format   string `json:"format"`
	AdUnitID string `json:"adUnitId"`
}

func (s *Server) listAds(c *gin.Context) {
	snapshot := s.registry.Snapshot()
	ads := make([]adSummary, 0, len(snapshot))
	for id, ad := range snapshot {
		ads = append(ads, adSummary{
			AdID:     id,
			Format:   string(ad.Format()),
			AdUnitID: ad.AdUnitID(),
		})
	}
	sort.Slice(ads, func(i, j int) bool { return ads[i].AdID < ads[j].AdID })

	c.JSON(http.StatusOK, gin.H{
		"count": len(ads),
		"ads":   ads,
	})
}

// bidRequest renders a tracked ad as the OpenRTB bid request an
// exchange-facing integration would emit for it.
func (s *Server) bidRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad id"})
		return
	}
	ad, ok := s.registry.HandleFor(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not tracked"})
		return
	}
	c.JSON(http.StatusOK, rtb.BuildBidRequest(id, ad))
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}
