package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"thirdcoast.systems/dramahub/cmd/web/handlers/api/proxy_api"
	"thirdcoast.systems/dramahub/cmd/web/internal/web"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/catalog"
	"thirdcoast.systems/dramahub/internal/config"
	"thirdcoast.systems/dramahub/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := upstream.NewClient(upstream.Options{
		BaseURL:   conf.UpstreamBaseURL,
		Timeout:   conf.UpstreamTimeout,
		RateLimit: conf.UpstreamRateLimit,
		MaxBody:   conf.UpstreamMaxBodyBytes,
	})

	templates.SiteURL = conf.SiteURL
	if conf.PlaceholderImageURL != "" {
		templates.PlaceholderImage = conf.PlaceholderImageURL
	}

	agg := aggregator.New(client, aggregator.Options{
		SectionLimit: conf.HomeSectionLimit,
		PageSize:     conf.PageSize,
		Mapper:       catalog.Mapper{Placeholder: conf.PlaceholderImageURL},
		Resolver:     catalog.Resolver{PreferredQuality: conf.StreamPreferredQuality},
	})

	proxy := proxy_api.NewProxy(proxy_api.Options{
		ImageFallbackURL: conf.ImageProxyFallbackURL,
	})

	e, err := web.NewWebserver(ctx, agg, proxy)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr, "upstream", client.BaseURL())
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
