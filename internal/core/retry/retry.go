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

// Package retry wraps fallible operations with bounded exponential backoff.
// It replaces the ad-hoc retry loops that otherwise accumulate at every
// call site that talks to an external provider: each generator declares a
// Spec (attempt budget, initial delay, retryability predicate) and hands
// its operation to Do.
//
// Backoff between attempt n and n+1 is initialDelay * 2^n plus a uniform
// random jitter of up to one second to avoid thundering-herd retries
// against a recovering provider.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// maxJitter bounds the random component added to every backoff sleep.
const maxJitter = time.Second

// Spec describes the retry policy for one class of operation.
type Spec struct {
	// MaxAttempts is the total number of invocations, including the first.
	// Values < 1 are treated as a single attempt.
	MaxAttempts int
	// InitialDelay is the sleep before the first retry; it doubles after
	// every failed attempt.
	InitialDelay time.Duration
	// Retryable narrows which failures are worth retrying. A nil predicate
	// retries unconditionally. A non-retryable error propagates on first
	// occurrence regardless of the remaining attempt budget.
	Retryable func(error) bool
}

// Do executes op up to spec.MaxAttempts times, sleeping between attempts
// with exponential backoff and jitter. The sleep honors ctx: cancellation
// during a backoff wait returns the context error immediately.
//
// On success the operation's value is returned. On exhausting the budget
// the LAST observed failure is returned, never a synthetic "retries
// exhausted" error, because callers need the original diagnostic.
func Do[T any](ctx context.Context, spec Spec, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := spec.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := spec.InitialDelay
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(rand.Int63n(int64(maxJitter)))
			select {
			case <-time.After(delay + jitter):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			delay *= 2
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if spec.Retryable != nil && !spec.Retryable(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
