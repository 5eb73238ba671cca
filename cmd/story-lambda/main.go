// Package main provides the Lambda entry point for the story viewer.
//
// The same router as story-web runs behind API Gateway (HTTP API, payload
// v2). At cold start the App-Token is read from SSM Parameter Store unless
// APP_TOKEN is set:
//   - /story-viewer/prod/app-token (override with SSM_APP_TOKEN_PARAM)
//
// Render metrics are written as CloudWatch EMF lines. API Gateway HTTP APIs
// cannot upgrade to WebSocket, so /player/ws is only served by story-web.
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/config"
	"github.com/fpang/story-viewer/internal/httpx"
	"github.com/fpang/story-viewer/internal/lambdaboot"
	"github.com/fpang/story-viewer/internal/logging"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/metrics"
	"github.com/fpang/story-viewer/internal/render"
	"github.com/fpang/story-viewer/internal/storyhttp"
)

var handler *storyhttp.Handler

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	clients, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AWS")
	}
	if err := lambdaboot.LoadAppToken(ctx, clients.SSM, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to load App-Token")
	}

	// Warm containers keep their cache between invocations.
	cache := collections.NewMemoryCache()
	client := collections.NewClient(cfg.APIBaseURL, cfg.AppToken,
		collections.WithHTTPClient(httpx.NewClient(cfg.UpstreamTimeout, cfg.UpstreamRetries)),
		collections.WithCache(cache, cfg.CacheTTL),
	)
	resolver := media.NewResolver(cfg.MediaBaseURL)

	handler = storyhttp.NewHandler(storyhttp.Options{
		Renderer:   render.New(client, resolver),
		Lister:     client,
		Resolver:   resolver,
		BaseURL:    cfg.BaseURL,
		Observer:   metrics.NewRenderObserver(),

		TrustForwardedHeaders: cfg.TrustProxy,
		DisablePlayer:         true,
	})

	lambdaboot.StartupLog("story-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		SSMParam("appToken", cfg.SSMAppTokenParam).
		Config("apiBase", cfg.APIBaseURL).
		Config("mediaBase", cfg.MediaBaseURL).
		Config("baseURL", cfg.BaseURL).
		Config("cacheTTL", cfg.CacheTTL.String()).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
