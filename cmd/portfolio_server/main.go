package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soroban_portfolio/internal/app/bootstrap"
	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/infrastructure/restapi"
	"soroban_portfolio/internal/infrastructure/walletloader"
	"soroban_portfolio/internal/pkg/logger"
	"soroban_portfolio/internal/pkg/metrics"
	"soroban_portfolio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Soroban portfolio service starting", "config", cfgPath)

	metrics.MustRegisterMetrics()
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := bootstrap.Build(cfg, appLogger, bootstrap.Options{})
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	refreshPrices := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := app.Prices.LoadAndCacheTokenPrices(ctx, app.Symbols()); err != nil {
			appLogger.Warn("Token price refresh failed, serving cached and static prices", "error", err)
		}
	}
	refreshPrices()

	if address := initialAddress(cfg, appLogger); address != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if _, err := app.Portfolio.LoadPortfolio(ctx, address); err != nil {
			appLogger.Error("Initial portfolio load failed", "address", address, "error", err)
		}
		cancel()
	}

	scheduler := cron.New()
	if spec := cfg.TokenPriceSvc.RefreshSchedule; spec != "" {
		if _, err := scheduler.AddFunc(spec, refreshPrices); err != nil {
			logger.Fatal("Invalid price refresh schedule", "schedule", spec, "error", err)
		}
	}
	if spec := cfg.Portfolio.RefreshSchedule; spec != "" {
		_, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := app.Portfolio.RefreshPortfolio(ctx); err != nil {
				appLogger.Warn("Scheduled portfolio refresh failed", "error", err)
			}
		})
		if err != nil {
			logger.Fatal("Invalid portfolio refresh schedule", "schedule", spec, "error", err)
		}
	}
	scheduler.Start()

	router := restapi.SetupRouter(
		restapi.NewPortfolioHandler(app.Portfolio, app.Prices),
		restapi.NewNetworkHandler(app.Gateway, app.Networks, appLogger),
		zapLogger,
		restapi.RouterConfig{AllowedOrigins: cfg.Server.AllowedOrigins},
	)
	if cfg.Server.EnablePprof {
		registerPprof(router)
		appLogger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP server starting",
			zap.String("addr", srv.Addr), zap.String("network", app.Gateway.ActiveNetwork().Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	<-scheduler.Stop().Done()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

// initialAddress picks the portfolio loaded at startup: the configured wallet
// address, else the first watchlist entry.
func initialAddress(cfg *configloader.Config, l port.Logger) string {
	if cfg.Portfolio.WalletAddress != "" {
		return cfg.Portfolio.WalletAddress
	}
	if cfg.Portfolio.WatchlistFile == "" {
		return ""
	}
	addresses, err := walletloader.NewWatchlistLoader(cfg.Portfolio.WatchlistFile, l).Addresses()
	if err != nil {
		l.Warn("Watchlist unavailable", "error", err)
		return ""
	}
	if len(addresses) == 0 {
		return ""
	}
	return addresses[0]
}

func registerPprof(router *gin.Engine) {
	g := router.Group("/debug/pprof")
	g.GET("/", gin.WrapF(pprof.Index))
	g.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	g.GET("/profile", gin.WrapF(pprof.Profile))
	g.POST("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/trace", gin.WrapF(pprof.Trace))
	g.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	g.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	g.GET("/heap", gin.WrapH(pprof.Handler("heap")))
}
