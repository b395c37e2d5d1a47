// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the slideshow maker server.
//
// This application sets up and runs a web server using the Gin framework.
// It exposes a REST API that accepts a topic and returns the manifest of a
// fully generated narrated slideshow video, and serves the generated
// artifact tree statically so clients can fetch the finished files. The
// server is instrumented with OpenTelemetry for logging, tracing, and
// metrics.
//
// Functions:
//   - main: Sets up the server, configures routes, initializes services,
//     and handles graceful shutdown.
//   - VideoRouter: Registers the video generation endpoint and maps
//     pipeline failures to HTTP statuses.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/pipeline"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/core/script"
	"github.com/jaycherian/gcp-go-slideshow-maker/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Add OpenTelemetry middleware to trace incoming requests.
	r.Use(otelgin.Middleware("slideshow-maker-server"))

	// Permissive CORS, suitable for local development with a separate
	// frontend origin.
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The generated artifact tree is served as-is; manifest paths under
	// the public base resolve against this route.
	r.Static(config.Storage.PublicBasePath, config.Storage.OutputDir)

	apiV1 := r.Group("/api/v1")
	{
		VideoRouter(apiV1)
		Dashboard(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
		// A run makes dozens of provider calls plus two encodes, so the
		// write timeout has to cover the whole render.
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Wait for an interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// generateRequest is the request body for the video generation endpoint.
type generateRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// VideoRouter sets up the video generation API.
//
// Inputs:
//   - r: The *gin.RouterGroup the routes are registered under.
//
// This function defines the following endpoint:
//   - POST /videos: Runs the full generation pipeline for the topic in
//     the request body and returns the resulting manifest. Responds 400
//     for a rejected topic, 422 when the generated script could not be
//     parsed, and 500 with the failing stage for everything else.
func VideoRouter(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		videos.POST("", func(c *gin.Context) {
			var req generateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
				return
			}

			manifest, err := state.orchestrator.Run(c.Request.Context(), req.Topic)
			if err != nil {
				var validationErr *pipeline.ValidationError
				if errors.As(err, &validationErr) {
					c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
					return
				}
				var parseErr *script.ScriptParseError
				if errors.As(err, &parseErr) {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "generated script could not be parsed"})
					return
				}
				var pipelineErr *pipeline.PipelineError
				if errors.As(err, &pipelineErr) {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": "video generation failed",
						"stage": string(pipelineErr.Stage),
					})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "video generation failed"})
				return
			}

			c.JSON(http.StatusOK, manifest)
		})
	}
}
