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

// Package cloud provides components for interacting with external
// generation providers. This file classifies provider failures for the
// retry policy. The classification is deliberately centralized here: the
// cloud package is the only place that knows each provider's wire-level
// error shapes, so generators pass cloud.IsTransient as their retryability
// predicate instead of re-implementing the checks per call site.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// RateLimitError marks a provider response that signaled quota exhaustion
// (HTTP 429 or equivalent). It is always retryable.
type RateLimitError struct {
	Operation string
	Err       error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Operation, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// transientMessageMarkers are substrings of provider error messages that
// indicate a recoverable condition worth retrying: throttling, account
// quota refresh, or a model still warming up.
var transientMessageMarkers = []string{
	"rate limit",
	"Account limits",
	"Model is deploying",
}

// classifyProviderError converts provider-specific throttling signals into
// *RateLimitError and leaves every other failure untouched.
func classifyProviderError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return &RateLimitError{Operation: operation, Err: err}
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) && genaiErr.Code == 429 {
		return &RateLimitError{Operation: operation, Err: err}
	}
	return err
}

// IsTransient reports whether a generation failure is worth retrying:
// rate limiting, per-attempt timeouts, network failures, provider 5xx
// responses, or messages indicating a service that is still starting.
// Validation-style failures (4xx other than 429, malformed input) return
// false and must propagate on first occurrence.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	// A per-attempt deadline counts as transient; cancellation of the whole
	// run does not.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		switch genaiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}

	msg := err.Error()
	for _, marker := range transientMessageMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
