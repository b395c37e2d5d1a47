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

// Package ratelimit_test contains the test suite for the ratelimit
// package.
package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/ratelimit"
)

// TestAcquireBurstThenWaits verifies the token bucket contract: a burst
// equal to the configured rate is admitted immediately, and the next
// acquisition has to wait for at least one refill interval.
func TestAcquireBurstThenWaits(t *testing.T) {
	set := ratelimit.New(1000).WithCapability(ratelimit.CapabilityImage, 5)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		assert.NoError(t, set.Acquire(ctx, ratelimit.CapabilityImage))
	}
	burstElapsed := time.Since(start)
	assert.Less(t, burstElapsed, 100*time.Millisecond, "burst should be admitted without waiting")

	assert.NoError(t, set.Acquire(ctx, ratelimit.CapabilityImage))
	totalElapsed := time.Since(start)
	// Refill interval at 5/s is 200ms; allow generous slack below it but
	// require a real wait happened.
	assert.GreaterOrEqual(t, totalElapsed, 100*time.Millisecond, "acquisition past the burst must wait for a refill")
}

// TestAcquireUnknownCapabilityUsesGlobalOnly verifies that a capability
// without its own bucket is gated by the global bucket alone.
func TestAcquireUnknownCapabilityUsesGlobalOnly(t *testing.T) {
	set := ratelimit.New(1000)

	start := time.Now()
	for i := 0; i < 10; i++ {
		assert.NoError(t, set.Acquire(context.Background(), ratelimit.CapabilityScript))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

// TestAcquireHonorsContextDeadline verifies that a caller stuck waiting
// on an exhausted bucket is released by its context instead of blocking
// for the full refill.
func TestAcquireHonorsContextDeadline(t *testing.T) {
	set := ratelimit.New(1)
	assert.NoError(t, set.Acquire(context.Background(), ratelimit.CapabilityScript))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := set.Acquire(ctx, ratelimit.CapabilityScript)
	assert.Error(t, err)
}

// TestSharedAcrossCapabilities verifies the global bucket is shared: the
// same set gates calls regardless of which capability asks.
func TestSharedAcrossCapabilities(t *testing.T) {
	set := ratelimit.New(2).
		WithCapability(ratelimit.CapabilityImage, 1000).
		WithCapability(ratelimit.CapabilitySpeech, 1000)

	ctx := context.Background()
	assert.NoError(t, set.Acquire(ctx, ratelimit.CapabilityImage))
	assert.NoError(t, set.Acquire(ctx, ratelimit.CapabilitySpeech))

	// Global burst of 2 is spent; a third acquisition from either
	// capability must wait on the global refill.
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, set.Acquire(waitCtx, ratelimit.CapabilityImage))
}
