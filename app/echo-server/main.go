package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recosim/app/echo-server/router"
	"recosim/business/eval"
	"recosim/business/runs"
	"recosim/business/sim"
	"recosim/internal/middleware"
	memoryRepo "recosim/internal/repository/memory"
	"recosim/internal/rest"
	"recosim/pkg/config"
	"recosim/pkg/logger"
	"recosim/pkg/metrics"
	"recosim/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting RecoSim", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Init()

	// Simulation defaults: server-level env settings on top of the built-in
	// parameter set
	simDefaults := sim.DefaultConfig()
	simDefaults.RandomSeed = cfg.Sim.RandomSeed
	simDefaults.NumProducts = cfg.Sim.NumProducts
	if err := simDefaults.Validate(); err != nil {
		logger.Fatal("Invalid simulation defaults", "error", err)
	}

	// Init repo
	runRepo := memoryRepo.NewRunRepository()
	cfgRepo := memoryRepo.NewSimConfigRepository()

	// Init service
	runsService := runs.NewService(runRepo, cfgRepo, simDefaults, cfg.Replay.TokenKey)
	evalService := eval.NewService(cfgRepo, simDefaults, eval.NewHarness())

	// Init handler
	authHandler := rest.NewAuthHandler(cfg.Auth)
	simulationHandler := rest.NewSimulationHandler(runsService)
	evaluationHandler := rest.NewEvaluationHandler(evalService)
	simAdminHandler := rest.NewSimAdminHandler(cfgRepo, simDefaults)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.TraceMiddleware())

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, authHandler)
	router.SetupSimulationRoutes(api, simulationHandler)
	router.SetupEvaluationRoutes(api, evaluationHandler)
	router.SetupSimAdminRoutes(api, simAdminHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
