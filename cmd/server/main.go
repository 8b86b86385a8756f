package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ipg"
	"github.com/kevin07696/ipg-gateway/internal/adapters/lookup"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/config"
	gatewayHandler "github.com/kevin07696/ipg-gateway/internal/handlers/gateway"
	gatewayService "github.com/kevin07696/ipg-gateway/internal/services/gateway"
	"github.com/kevin07696/ipg-gateway/pkg/middleware"
	"github.com/kevin07696/ipg-gateway/pkg/observability"
	"github.com/kevin07696/ipg-gateway/pkg/resilience"
	"github.com/kevin07696/ipg-gateway/pkg/shutdown"
)

const (
	certSweepInterval = 10 * time.Minute
	certMaxAge        = time.Hour
)

func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("Failed to load .env file", zap.Error(envErr))
	}

	logger.Info("Starting IPG gateway service",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Environment),
		zap.Int("http_port", cfg.Server.Port),
		zap.String("config_store", cfg.ConfigStore.Backend),
	)

	ctx := context.Background()

	configStore, err := initConfigStore(ctx, cfg.ConfigStore, logger)
	if err != nil {
		logger.Fatal("Failed to initialize config store", zap.Error(err))
	}

	timeouts := resilience.DefaultTimeoutConfig().WithExternalAPI(cfg.IPG.Timeout)

	ipgConfig := ipg.DefaultConfig()
	ipgConfig.SandboxURL = cfg.IPG.SandboxURL
	ipgConfig.ProductionURL = cfg.IPG.ProductionURL
	ipgConfig.Timeout = cfg.IPG.Timeout
	ipgConfig.CertDir = cfg.IPG.CertDir
	ipgClient := ipg.NewClient(ipgConfig, logger)

	service := gatewayService.NewGatewayService(
		ipgClient,
		configStore,
		lookup.NewCountryCodes(),
		lookup.NewCurrencyCodes(),
		logger,
	)

	mux := http.NewServeMux()
	gatewayHandler.NewHandler(service, timeouts, logger).RegisterRoutes(mux)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	inFlight := shutdown.NewInFlightTracker("http", logger)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Logger.Development)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           inFlight.Middleware(securityHeaders.Middleware(rateLimiter.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeouts.HTTPHandler + 5*time.Second,
	}

	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("config_store", configStoreCheck(configStore))
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker, logger)

	certSweeper := shutdown.NewPeriodicWorker("cert-sweeper", certSweepInterval, logger)
	certSweeper.Start(sweepCertificates(ipg.NewCertificateProvisioner(cfg.IPG.CertDir), logger))

	go func() {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Reverse order on shutdown: stop accepting requests, wait for gateway
	// calls already in flight, then stop the background pieces
	sm := shutdown.NewManager(logger, timeouts.HTTPHandler+10*time.Second)
	sm.RegisterHTTPServer("metrics-server", metricsServer)
	sm.Register("cert-sweeper", certSweeper.Shutdown)
	sm.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)
	sm.Register("in-flight", inFlight.Shutdown)
	sm.RegisterHTTPServer("http-server", httpServer)

	sm.WaitForShutdown()
	logger.Info("Servers stopped")
}

// initLogger builds a production JSON logger in production and a
// development console logger otherwise
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// configStoreCheck reports the service ready once the plugin configuration
// can be read
func configStoreCheck(store ports.ConfigStore) observability.CheckFunc {
	return func(ctx context.Context) error {
		_, err := store.Load(ctx)
		return err
	}
}

func sweepCertificates(provisioner *ipg.CertificateProvisioner, logger *zap.Logger) func(context.Context) {
	return func(ctx context.Context) {
		removed, err := provisioner.SweepStale(certMaxAge)
		if err != nil {
			logger.Warn("Certificate sweep failed", zap.Error(err))
		}
		if removed > 0 {
			logger.Info("Removed stale client certificate files", zap.Int("removed", removed))
		}
	}
}
