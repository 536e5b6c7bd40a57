package web

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"thirdcoast.systems/dramahub/cmd/web/ctxkeys"
	"thirdcoast.systems/dramahub/cmd/web/handlers/api/catalog_api"
	"thirdcoast.systems/dramahub/cmd/web/handlers/api/proxy_api"
	"thirdcoast.systems/dramahub/cmd/web/handlers/content"
	staticpkg "thirdcoast.systems/dramahub/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/metrics"
	"thirdcoast.systems/dramahub/pkg/utils/language"
)

type Webserver struct {
	*echo.Echo
	aggregator  *aggregator.Aggregator
	proxy       *proxy_api.Proxy
	staticCache *staticpkg.StaticCache
}

func NewWebserver(ctx context.Context, agg *aggregator.Aggregator, proxy *proxy_api.Proxy) (*Webserver, error) {
	e := echo.New()

	// Initialize static cache
	staticCache, err := staticpkg.NewStaticCache()
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:        e,
		aggregator:  agg,
		proxy:       proxy,
		staticCache: staticCache,
	}

	if err = webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err = webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

// isMediaProxyPath reports whether path is relayed media, which is neither
// gzipped nor logged per request.
func isMediaProxyPath(path string) bool {
	return strings.HasPrefix(path, "/api/proxy/")
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit("2M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Range responses and SSE must not be buffered by gzip.
			return isMediaProxyPath(c.Path()) || c.Path() == "/api/catalog/sections"
		},
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return isMediaProxyPath(c.Path())
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	s.Use(metricsMiddleware)

	// Negotiate the page language and store it, with the request URI, in the context for templates
	s.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := language.Code(language.Negotiate(c.Request().Header.Get("Accept-Language")))
			ctx := context.WithValue(c.Request().Context(), ctxkeys.Language, lang)
			ctx = context.WithValue(ctx, ctxkeys.RequestURI, c.Request().URL.RequestURI())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	return nil
}

// metricsMiddleware records request counts and latency by route template so
// path parameters do not explode label cardinality.
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method
		metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (s *Webserver) registerRoutes() error {
	apiGroup := s.Group("/api")
	apiGroup.GET("/catalog/sections", catalog_api.HandleSections(s.aggregator))
	apiGroup.GET("/stream/:platform/:id", catalog_api.HandleStream(s.aggregator))
	apiGroup.GET("/proxy/image", s.proxy.HandleImage())
	apiGroup.GET("/proxy/stream", s.proxy.HandleStream())

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	// Prometheus scrape endpoint
	s.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Static file serving
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))

	// Content routes
	s.GET("/category/:slug", content.HandleCategoryPage(s.aggregator))
	s.GET("/search", content.HandleSearchPage(s.aggregator))
	s.GET("/watch/:platform/:id", content.HandleWatchPage(s.aggregator))
	s.GET("/", content.HandleHomePage())

	return nil
}
