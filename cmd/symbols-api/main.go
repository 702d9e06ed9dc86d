package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"usdt-perp-symbols/internal/application/services"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/exchange/binance"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/ratelimit"
	"usdt-perp-symbols/internal/infrastructure/repositories/snapshot"
	"usdt-perp-symbols/internal/infrastructure/web/handlers"
	"usdt-perp-symbols/internal/infrastructure/web/server"
)

func main() {
	flags := pflag.NewFlagSet("symbols-api", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	flags.IntP("port", "p", 8080, "HTTP listen port")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	log := logging.GetLogger()

	// Load configuration
	loader := config.NewLoader(config.VariantAPI).WithConfigFile(*configFile)
	if err := loader.BindFlags(flags, map[string]string{
		"server.port":   "port",
		"logging.level": "log-level",
	}); err != nil {
		log.WithError(err).Fatal("Failed to bind flags")
	}

	cfg, err := loader.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := validator.ValidateServer(cfg.Server); err != nil {
		log.WithError(err).Fatal("Invalid server configuration")
	}

	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	ctx := logging.WithRunID(context.Background())

	// Initialize components
	store, err := snapshot.NewStoreFromConfig(ctx, cfg.Snapshot)
	if err != nil {
		log.WithError(err).Fatal("Failed to create snapshot store")
	}
	defer store.Close()

	client := binance.NewRestClientWithConfig(cfg.Exchange.Binance)
	resolver := services.NewFallbackResolver(
		services.NewSymbolService(client, services.WithDeduplication()),
		store,
		services.FrontEndSymbolsAPI,
	)

	router := server.NewRouter(
		handlers.NewSymbolsHandler(resolver),
		handlers.NewHealthHandler(store.Backend()),
		ratelimit.NewMiddleware(cfg.Server.RateLimit).Handler,
	)
	srv := server.NewServer(router, cfg.Server.Port)

	logging.LogServiceEvent(ctx, "service_started", "USDT perpetual symbols API is running", logrus.Fields{
		"port":               cfg.Server.Port,
		"config_file":        loader.ConfigFileUsed(),
		logging.FieldBackend: store.Backend(),
		logging.FieldURL:     client.URL(),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server...")
	case err, ok := <-serverErr:
		if ok {
			_ = store.Close()
			log.WithError(err).Fatal("Failed to start server")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return
	}

	log.Info("Server shutdown completed")
}
