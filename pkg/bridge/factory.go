// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"
	"sync"

	"github.com/adxyz/adbridge/pkg/ads"
	"github.com/adxyz/adbridge/pkg/log"
)

// FactoryRegistry holds the native ad factories registered by the host
// application, keyed by factory id.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories map[string]ads.NativeAdFactory
	log       log.Logger
}

// NewFactoryRegistry creates an empty factory registry
func NewFactoryRegistry(logger log.Logger) *FactoryRegistry {
	return &FactoryRegistry{
		factories: make(map[string]ads.NativeAdFactory),
		log:       logger,
	}
}

// Register adds a factory under the given id. Returns false when the id
// is already taken; the existing factory is kept.
func (r *FactoryRegistry) Register(factoryID string, factory ads.NativeAdFactory) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[factoryID]; exists {
		r.log.Error(fmt.Sprintf("a NativeAdFactory with the following factoryId already exists: %s", factoryID))
		return false
	}

	r.factories[factoryID] = factory
	return true
}

// Unregister removes and returns the factory under id, nil when absent
func (r *FactoryRegistry) Unregister(factoryID string) ads.NativeAdFactory {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory := r.factories[factoryID]
	delete(r.factories, factoryID)
	return factory
}

// Lookup returns the factory under id
func (r *FactoryRegistry) Lookup(factoryID string) (ads.NativeAdFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[factoryID]
	return factory, ok
}
