package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"usdt-perp-symbols/internal/application/services"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/exchange/binance"
	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
	"usdt-perp-symbols/internal/infrastructure/output"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run prints the symbols on stdout and returns the process exit code
func run(args []string) int {
	flags := pflag.NewFlagSet("listpairs", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = flags.Parse(args)

	loader := config.NewLoader(config.VariantConsole).WithConfigFile(*configFile)
	if err := loader.BindFlags(flags, map[string]string{
		"logging.level": "log-level",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		return 1
	}

	cfg, err := loader.Load()
	if err == nil {
		err = config.NewValidator().Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithStartTime(logging.WithRunID(context.Background()))

	client := binance.NewRestClientWithConfig(cfg.Exchange.Binance)
	lister := services.NewConsoleLister(services.NewSymbolService(client), output.NewConsoleWriter(os.Stdout))

	count, err := lister.List(ctx)
	if metricsErr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); metricsErr != nil {
		logging.WithContext(ctx).WithError(metricsErr).Warn("Failed to write metrics textfile")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve symbols: %v\n", err)
		return 1
	}

	logging.WithContext(ctx).WithField(logging.FieldCount, count).Debug("Symbols listed")
	return 0
}
