package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/api"
	"github.com/yourusername/ncea-extract-go/api/handlers"
	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.NewDefault().Fatal("Failed to load config", zap.Error(err))
	}

	rt, err := app.NewRuntime(config)
	if err != nil {
		logger.NewDefault().Fatal("Failed to initialize", zap.Error(err))
	}
	defer rt.Close()

	rt.Logger.Info("Starting NCEA extract server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("base_dir", config.Download.BaseDir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx, rt); err != nil {
		rt.Logger.Error("Server failed", zap.Error(err))
		rt.Close()
		os.Exit(1)
	}
}
