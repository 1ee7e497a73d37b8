package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/simple-api-demo/internal/api"
	"github.com/sirosfoundation/simple-api-demo/internal/server"
	"github.com/sirosfoundation/simple-api-demo/pkg/config"
	"github.com/sirosfoundation/simple-api-demo/pkg/logging"
)

var (
	configFile = flag.String("config", "", "Path to an optional YAML configuration file")
	helpEnv    = flag.Bool("help-env", false, "Print the supported environment variables and exit")
	buildTime  = "unknown"
)

func main() {
	flag.Parse()

	if *helpEnv {
		if err := config.Usage(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to print usage: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFile, config.FromEnviron(os.Environ()))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting simple-api-demo",
		zap.String("version", api.Version),
		zap.String("build_time", buildTime),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers := api.NewHandlers()
	mgr := server.NewManager(cfg.Server, logger,
		server.NewMainProvider(handlers),
		server.NewAppProvider(handlers),
	)

	if err := mgr.Run(ctx); err != nil {
		logger.Error("Server terminated with error", zap.Error(err))
		return fmt.Errorf("failed to run servers: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
