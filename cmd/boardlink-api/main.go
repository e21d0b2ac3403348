package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/boardlink-dev/boardlink/internal/config"
	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/router"
	"github.com/boardlink-dev/boardlink/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	// optional: secrets may come from an .env file instead of private.yaml
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("no .env file found, using environment as is")
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		return
	}
	defer deps.Cleanup()

	deps.Sweeper.StartBackground(ctx, cfg.SweepInterval())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Public.Server.Port),
		Handler: router.New(deps.Handler, cfg),
	}

	go func() {
		logger.Log.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("shutdown error", "error", err)
	}
	logger.Log.Info("server stopped")
}
