// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package channel carries bridge envelopes to and from the single
// logical listener on the other side of the runtime boundary.
package channel

import (
	"errors"
	"sync"

	"github.com/adxyz/adbridge/pkg/codec"
)

// Name is the logical channel identifier shared with the listening side.
const Name = "plugins.flutter.io/google_mobile_ads"

// HeaderName is the handshake header a connecting listener uses to name
// the channel it expects. A mismatch is rejected before the upgrade.
const HeaderName = "X-Channel-Name"

// ErrNoListener is returned when a send is attempted with nobody
// connected on the other side.
var ErrNoListener = errors.New("no listener connected on channel")

// Channel is the outbound half of the bridge: fire-and-forget delivery
// of one encoded envelope to the current listener.
type Channel interface {
	Invoke(msg codec.Message) error
}

// Recorder is an in-memory Channel that records every invocation.
// Test double for the dispatcher and bridge.
type Recorder struct {
	mu    sync.Mutex
	calls []codec.Message
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Invoke(msg codec.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, msg)
	return nil
}

// Calls returns a snapshot of everything invoked so far
func (r *Recorder) Calls() []codec.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]codec.Message, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last returns the most recent invocation
func (r *Recorder) Last() (codec.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return codec.Message{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset discards all recorded invocations
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
