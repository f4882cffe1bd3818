// Package web serves the browser form and the JSON API over gin.
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/icebreaker/internal/icebreaker"
	"github.com/Laisky/icebreaker/library/log"
)

const shutdownTimeout = 10 * time.Second

// Generator is the pipeline capability the handlers need.
type Generator interface {
	GenerateDetailed(ctx context.Context, name, company string) (*icebreaker.Result, error)
}

// Options configures NewEngine.
type Options struct {
	// AllowedOriginHosts lists hosts allowed for CORS, a leading dot matches subdomains.
	AllowedOriginHosts []string
	// MCPHandler is mounted at /mcp when not nil.
	MCPHandler http.Handler
	// EnableMetrics exposes prometheus metrics and pprof.
	EnableMetrics bool
	Logger        logSDK.Logger
}

// NewEngine builds the gin engine with the form, the JSON API and the
// health route.
func NewEngine(gen Generator, opts Options) (*gin.Engine, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Logger
	}

	server := gin.New()
	// handlers pass *gin.Context down as context.Context
	server.ContextWithFallback = true
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logger.Level().String()),
			gmw.WithLogger(logger.Named("gin")),
		),
		allowCORS(opts.AllowedOriginHosts),
	)

	if opts.EnableMetrics {
		if err := gmw.EnableMetric(server); err != nil {
			return nil, errors.Wrap(err, "enable metric server")
		}
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	registerFormRoutes(server, gen)
	registerAPIRoutes(server, gen)

	if opts.MCPHandler != nil {
		server.Any("/mcp", gin.WrapH(opts.MCPHandler))
	}

	return server, nil
}

// RunServer serves engine on addr until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, addr string, engine http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server exit")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Logger.Info("shutting down http server", zap.String("addr", addr))
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}

func allowCORS(allowedHosts []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		allowedOrigin := ""

		if origin != "" {
			parsedOriginURL, err := url.Parse(origin)
			if err == nil && originHostAllowed(strings.ToLower(parsedOriginURL.Hostname()), allowedHosts) {
				allowedOrigin = origin
			}
		}

		if allowedOrigin != "" {
			ctx.Header("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Mcp-Session-Id")
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// preflight from a disallowed origin
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}

func originHostAllowed(host string, allowedHosts []string) bool {
	if host == "" {
		return false
	}
	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		switch {
		case allowed == "":
			continue
		case strings.HasPrefix(allowed, "."):
			if strings.HasSuffix(host, allowed) || host == strings.TrimPrefix(allowed, ".") {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}
