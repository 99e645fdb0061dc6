package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/nulln0ne/dex-engine/internal/config"
	"github.com/nulln0ne/dex-engine/internal/eth"
	"github.com/nulln0ne/dex-engine/internal/handler"
	"github.com/nulln0ne/dex-engine/internal/logging"
	"github.com/nulln0ne/dex-engine/internal/metrics"
	"github.com/nulln0ne/dex-engine/internal/service"
	"github.com/nulln0ne/dex-engine/pkg/amm"
)

const serviceName = "dex-engine"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	m, metricsHandler, err := metrics.Setup(serviceName)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}

	fee, err := amm.FeeFromBps(cfg.SwapFeeBps)
	if err != nil {
		return err
	}
	pricer, err := amm.NewPricer(fee)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ethereumClient, chainID, err := eth.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	reader, err := eth.NewReader(ethereumClient, eth.Options{
		RateLimit: cfg.RPCRateLimit,
		Timeout:   cfg.RPCTimeout,
		Logger:    logger,
		Metrics:   m,
	})
	if err != nil {
		ethereumClient.Close()
		return err
	}

	contracts := service.PoolContracts{
		Pool:   cfg.Contracts.Swap,
		TokenA: cfg.Contracts.TokenA,
		TokenB: cfg.Contracts.TokenB,
	}
	healthService := service.NewHealthService(logger, reader)
	tokenService := service.NewTokenService(logger, reader)
	swapService := service.NewSwapService(logger, reader, contracts, pricer, cfg.DefaultSlippageBps)
	poolService := service.NewPoolService(logger, reader, contracts)
	stakingService := service.NewStakingService(logger, reader, cfg.Contracts.Staking, cfg.APYPeriods)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	handler.Register(app, handler.Routes{
		Health:  handler.NewHealthHandler(logger, healthService),
		Token:   handler.NewTokenHandler(logger, tokenService),
		Swap:    handler.NewSwapHandler(logger, swapService),
		Pool:    handler.NewPoolHandler(logger, poolService),
		Staking: handler.NewStakingHandler(logger, stakingService),
		Metrics: metricsHandler,
	}, m, cfg.RequestTimeout)

	logger.Info("starting server", "addr", cfg.Addr, "chain_id", chainID.String(), "fee_bps", cfg.SwapFeeBps, "pool", contracts.Pool.Hex())

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			ethereumClient.Close()
			return fmt.Errorf("server error: %w", err)
		}
		ethereumClient.Close()
		return nil
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "err", err)
	}
	if err := m.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown", "err", err)
	}

	ethereumClient.Close()
	return nil
}
