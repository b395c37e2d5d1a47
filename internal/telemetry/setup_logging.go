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

// Package telemetry provides utilities for setting up and configuring
// application observability, including logging, tracing, and metrics.
// This file handles structured logging compatible with Google Cloud
// Logging, with OpenTelemetry trace correlation injected into every
// record.
package telemetry

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// spanContextLogHandler wraps another slog.Handler and injects the
// OpenTelemetry trace and span IDs from the context into each record,
// using the field names Cloud Logging recognizes for log/trace
// correlation.
type spanContextLogHandler struct {
	slog.Handler
}

func handlerWithSpanContext(handler slog.Handler) *spanContextLogHandler {
	return &spanContextLogHandler{Handler: handler}
}

// Handle adds the trace correlation attributes when the context carries a
// valid span, then delegates to the wrapped handler.
// See: https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
func (t *spanContextLogHandler) Handle(ctx context.Context, record slog.Record) error {
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		record.AddAttrs(
			slog.Any("logging.googleapis.com/trace", s.TraceID()),
		)
		record.AddAttrs(
			slog.Any("logging.googleapis.com/spanId", s.SpanID()),
		)
		record.AddAttrs(
			slog.Bool("logging.googleapis.com/trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	return t.Handler.Handle(ctx, record)
}

// replacer renames slog's default attribute keys to the keys Cloud
// Logging expects ("severity", "timestamp", "message") so entries are
// parsed with the proper severity in the console.
func replacer(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		// Cloud Logging uses WARNING where slog uses WARN.
		if level := a.Value.Any().(slog.Level); level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// SetupLogging initializes logging for the entire application: a JSON
// slog handler writing to both stdout and app.log, with trace context
// injection, installed as the global default. The standard log package is
// pointed at the same writer so third-party log output lands in the same
// place.
func SetupLogging() {
	file, _ := os.Create("app.log")
	multiWriter := io.MultiWriter(os.Stdout, file)

	log.SetOutput(multiWriter)
	log.SetPrefix("[INFO] ")
	log.SetFlags(log.Ldate | log.Ltime)

	jsonHandler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{ReplaceAttr: replacer})
	instrumentedHandler := handlerWithSpanContext(jsonHandler)
	slog.SetDefault(slog.New(instrumentedHandler))
	slog.SetLogLoggerLevel(slog.LevelInfo)
}
