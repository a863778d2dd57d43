// Package main is the entry point for the treasury withdrawal service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/treasury-bot/business/gateway"
	"github.com/fd1az/treasury-bot/business/treasury"
	treasuryDI "github.com/fd1az/treasury-bot/business/treasury/di"
	"github.com/fd1az/treasury-bot/business/withdrawal"
	withdrawalApp "github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/business/withdrawal/infra/report"
	"github.com/fd1az/treasury-bot/internal/apm"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/config"
	"github.com/fd1az/treasury-bot/internal/health"
	"github.com/fd1az/treasury-bot/internal/logger"
	"github.com/fd1az/treasury-bot/internal/metrics"
	"github.com/fd1az/treasury-bot/internal/monolith"
	"github.com/fd1az/treasury-bot/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const statusPollInterval = 5 * time.Second

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("treasury-bot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// CLI is the default for a server process, TUI is the ops dashboard
	tuiMode := !*cliMode && isTerminal()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	// Setup logger (suppress stderr logs under the TUI)
	logLevel := logger.ParseLevel(cfg.App.LogLevel)
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting treasury withdrawal service",
			"version", version,
			"environment", cfg.App.Environment,
			"chain_id", cfg.Ethereum.ChainID,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Register the reporter before modules resolve it
	var reporter withdrawalApp.Reporter
	var tuiReporter *ui.TUIReporter
	if tuiMode {
		tuiReporter = ui.NewTUIReporter()
		reporter = tuiReporter
	} else {
		reporter = report.NewConsoleReporter(log)
	}
	mono.Container().Register("reporter", reporter)

	// Define modules in dependency order
	treasuryModule := &treasury.Module{}
	gatewayModule := &gateway.Module{}
	modules := []monolith.Module{
		treasuryModule,       // Must be first - owns the connection and signer
		&withdrawal.Module{}, // Depends on treasury for the transfer engine
		gatewayModule,        // Depends on both
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Start health check server
	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	healthServer.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
		svc := treasuryDI.GetTreasuryService(mono.Services())
		status, err := svc.Status(ctx)
		if err != nil {
			return false, err.Error()
		}
		if !status.Connected {
			return false, "no endpoint connected"
		}
		return true, "connected"
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
	}
	defer healthServer.Stop(ctx)

	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	// Push treasury snapshots to the reporter
	go pollStatus(ctx, mono, reporter)

	log.Info(ctx, "treasury service ready", "gateway_port", cfg.Gateway.Port)

	// Block until shutdown: signal/cancel in CLI mode, dashboard quit in TUI
	if tuiReporter != nil {
		select {
		case <-ctx.Done():
		case <-tuiReporter.Done():
		}
	} else {
		<-ctx.Done()
	}

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := gatewayModule.Shutdown(shutdownCtx, mono); err != nil {
		log.Error(shutdownCtx, "gateway shutdown error", "error", err)
	}
	if err := reporter.Stop(); err != nil {
		log.Error(shutdownCtx, "reporter shutdown error", "error", err)
	}
	treasuryModule.Shutdown(shutdownCtx, mono)

	return nil
}

// pollStatus periodically reads the treasury snapshot and forwards it to the
// reporter. Read errors are throttled to one log line per tick.
func pollStatus(ctx context.Context, mono monolith.Monolith, reporter withdrawalApp.Reporter) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	svc := treasuryDI.GetTreasuryService(mono.Services())
	log := mono.Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := svc.Status(ctx)
		if err != nil {
			if !apperror.HasCode(err, apperror.CodeConnectivityError) {
				log.Warn(ctx, "status poll failed", "error", err)
			}
			continue
		}
		reporter.UpdateTreasury(status.Address, status.NextNonce, status.BalanceWei)
	}
}
