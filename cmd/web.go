package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/icebreaker/internal/icebreaker"
	"github.com/Laisky/icebreaker/internal/mcp"
	"github.com/Laisky/icebreaker/internal/web"
	"github.com/Laisky/icebreaker/library/config"
	"github.com/Laisky/icebreaker/library/log"
)

var webCMD = &cobra.Command{
	Use:   "web",
	Short: "Serve the web form, JSON API and MCP endpoint",
	Long: `Serve the icebreaker over HTTP.

Routes:
  GET  /                 HTML form
  POST /                 form submit
  POST /api/icebreaker   JSON {"name": "...", "company": "..."}
  GET  /health           liveness
  ANY  /mcp              MCP streamable HTTP endpoint`,
	Args: gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Get()
		if err != nil {
			return errors.Errorf("Configuration Error: %v", err)
		}

		return runWeb(cmd.Context(), settings)
	},
}

func init() {
	webCMD.Flags().String("listen", "localhost:7860", "like `localhost:7860`")
	rootCMD.AddCommand(webCMD)
}

func runWeb(ctx context.Context, settings *config.Settings) error {
	logger := log.Logger.Named("web")

	svc, err := icebreaker.NewServiceFromSettings(settings)
	if err != nil {
		return errors.Errorf("Configuration Error: %v", err)
	}

	mcpServer, err := mcp.NewServer(svc, logger)
	if err != nil {
		return errors.Wrap(err, "new mcp server")
	}

	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := web.NewEngine(svc, web.Options{
		AllowedOriginHosts: gconfig.Shared.GetStringSlice(keyWebAllowedOrigins),
		MCPHandler:         mcpServer.Handler(),
		EnableMetrics:      gconfig.Shared.GetBool(keyWebEnableMetrics),
		Logger:             logger,
	})
	if err != nil {
		return errors.Wrap(err, "new web engine")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listen := gconfig.Shared.GetString("listen")
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return web.RunServer(gctx, listen, engine)
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("web server stopping", zap.Error(context.Cause(gctx)))
		return nil
	})

	return group.Wait()
}
