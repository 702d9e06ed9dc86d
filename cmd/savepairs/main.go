package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"usdt-perp-symbols/internal/application/services"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/exchange/binance"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
	"usdt-perp-symbols/internal/infrastructure/output"
	"usdt-perp-symbols/internal/infrastructure/repositories/snapshot"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run exports the symbols and returns the process exit code. Exchange
// failures are absorbed by the snapshot; configuration and write failures are not.
func run(args []string, stdout io.Writer) int {
	flags := pflag.NewFlagSet("savepairs", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	flags.StringP("output", "o", "pairs.json", "destination JSON file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = flags.Parse(args)

	log := logging.GetLogger()

	// Load configuration
	loader := config.NewLoader(config.VariantFile).WithConfigFile(*configFile)
	if err := loader.BindFlags(flags, map[string]string{
		"output.path":   "output",
		"logging.level": "log-level",
	}); err != nil {
		log.WithError(err).Error("Failed to bind flags")
		return 1
	}

	cfg, err := loader.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		log.WithError(err).Error("Invalid configuration")
		return 1
	}

	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	ctx := logging.WithStartTime(logging.WithRunID(context.Background()))
	logging.LogServiceEvent(ctx, "run_started", "Exporting USDT perpetual symbols", logrus.Fields{
		"config_file":        loader.ConfigFileUsed(),
		logging.FieldPath:    cfg.Output.Path,
		logging.FieldBackend: cfg.Snapshot.Backend,
	})

	store, err := snapshot.NewStoreFromConfig(ctx, cfg.Snapshot)
	if err != nil {
		logging.WithContext(ctx).WithError(err).Error("Failed to create snapshot store")
		return 1
	}
	defer store.Close()

	client := binance.NewRestClientWithConfig(cfg.Exchange.Binance)
	symbolService := services.NewSymbolService(client, services.WithDeduplication())
	exporter := services.NewFileExporter(
		services.NewFallbackResolver(symbolService, store, services.FrontEndSavePairs),
		output.NewJSONFileWriter(cfg.Output.Path),
		cfg.Output.Path,
	)

	result, err := exporter.Export(ctx)
	if metricsErr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); metricsErr != nil {
		logging.WithContext(ctx).WithError(metricsErr).Warn("Failed to write metrics textfile")
	}
	if err != nil {
		logging.WithContext(ctx).WithError(err).Error("Failed to export symbols")
		return 1
	}

	fmt.Fprintf(stdout, "Saved %d symbols to %s\n", result.Count, result.Path)
	return 0
}
