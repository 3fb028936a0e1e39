package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/text-extractor/api/handlers"
	"github.com/feichai0017/text-extractor/api/routes"
	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/internal/service/extraction"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

func main() {
	appCfg := cfg.GetAppConfig()

	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel(appCfg.LogLevel),
		logger.WithEncoding(appCfg.LogEncoding),
		logger.WithOutputPaths(appCfg.LogOutputPaths),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// every start begins with an empty table
	records, err := store.Open(appCfg.DatabasePath, log)
	if err != nil {
		log.Fatal("Failed to open record store", logger.Error(err))
	}
	defer records.Close()
	if err := records.Reset(ctx); err != nil {
		log.Fatal("Failed to reset record store", logger.Error(err))
	}

	// init extraction service
	svc, closeService, err := extraction.GetService(ctx, appCfg, records, log)
	if err != nil {
		log.Fatal("Failed to get extraction service", logger.Error(err))
	}
	defer closeService()

	// init handlers
	h := handlers.NewHandlers(svc, log, appCfg.MaxBatchBytes())
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 32 << 20
	routes.SetupRoutes(r, h, appCfg.CORSOrigins)

	srv := &http.Server{
		Addr:    appCfg.Addr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", appCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
