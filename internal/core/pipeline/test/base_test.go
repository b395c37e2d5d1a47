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

// Package pipeline_test contains the test suite for the pipeline
// package. This file provides the shared setup for the suite: a named
// tracer and an OpenTelemetry-bridged logger handed to every
// orchestrator under test. With no telemetry SDK configured in tests,
// both are no-ops, which keeps test output clean.
package pipeline_test

import (
	"os"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const tName = "github.com/jaycherian/gcp-go-slideshow-maker/tests/pipeline"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// TestMain is the entry point for the suite.
func TestMain(m *testing.M) {
	_ = tracer
	os.Exit(m.Run())
}
