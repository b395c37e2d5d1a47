// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit provides admission control for outbound generation
// calls. Every call to an external capability (script, image, speech,
// transcription) must pass through a RateLimiterSet before it is issued.
//
// Why this is important:
//   - The external providers enforce per-model quotas. Exceeding them turns
//     into avoidable 429 responses and burned retry budget.
//   - The limits reflect provider quotas, not per-run quotas, so a single
//     RateLimiterSet is shared by every concurrent run in the process. It
//     is an explicitly constructed, injectable value rather than a package
//     singleton so tests can use fresh state.
//
// Two tiers of token buckets are maintained: one global bucket shared by
// all outbound calls, and optional per-capability buckets. Acquire always
// takes a global token first, then a capability token if the capability has
// a bucket configured. Both waits are FIFO (golang.org/x/time/rate queues
// waiters in arrival order), so a caller stalled on its capability bucket
// does not starve callers of other capabilities.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Capability identifies a class of outbound generation call with its own
// provider-side quota.
type Capability string

const (
	CapabilityScript        Capability = "script-generation"
	CapabilityImage         Capability = "image-generation"
	CapabilitySpeech        Capability = "speech-synthesis"
	CapabilityTranscription Capability = "transcription"
)

// RateLimiterSet is the two-tier token bucket gate. The zero value is not
// usable; construct it with New.
type RateLimiterSet struct {
	global       *rate.Limiter
	capabilities map[Capability]*rate.Limiter
}

// New creates a RateLimiterSet with a global bucket refilling at
// globalPerSecond tokens per second (burst equal to the refill rate, so a
// quiet limiter admits a full second of traffic at once, matching the
// provider's per-second accounting).
//
// Inputs:
//   - globalPerSecond: The refill rate of the global bucket. Values < 1 are
//     treated as 1.
//
// Outputs:
//   - *RateLimiterSet: The constructed set with no capability buckets yet.
func New(globalPerSecond int) *RateLimiterSet {
	if globalPerSecond < 1 {
		globalPerSecond = 1
	}
	return &RateLimiterSet{
		global:       rate.NewLimiter(rate.Limit(globalPerSecond), globalPerSecond),
		capabilities: make(map[Capability]*rate.Limiter),
	}
}

// WithCapability adds (or replaces) a per-capability bucket refilling at
// perSecond tokens per second and returns the set for fluent chaining.
func (s *RateLimiterSet) WithCapability(capability Capability, perSecond int) *RateLimiterSet {
	if perSecond < 1 {
		perSecond = 1
	}
	s.capabilities[capability] = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	return s
}

// Acquire blocks until one global token and, when the capability has a
// configured bucket, one capability token are available. There is no upper
// bound on the wait besides the caller's context; cancellation or deadline
// expiry aborts the wait and returns the context error.
//
// An empty capability acquires only the global token.
func (s *RateLimiterSet) Acquire(ctx context.Context, capability Capability) error {
	if err := s.global.Wait(ctx); err != nil {
		return err
	}
	if limiter, ok := s.capabilities[capability]; ok {
		return limiter.Wait(ctx)
	}
	return nil
}
