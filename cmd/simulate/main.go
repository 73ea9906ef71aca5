package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexandruValeanu/IceBook/pkg/backend/memory"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/AlexandruValeanu/IceBook/pkg/simulator"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load configuration
	cfg, err := simulator.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Initialize the matching engine
	clock := core.NewLogicalClock()
	engine := core.NewMatchingEngine(memory.NewMemoryBackend(clock), clock)

	// Initialize the flow generation strategy
	generator := simulator.NewLayeredRandomFlow(cfg, logger, clock, rng)

	// Create and start the simulator
	sim := simulator.NewSimulator(cfg, logger, engine, generator, rng)
	if err := sim.Start(ctx); err != nil {
		logger.Error("Failed to start simulator", "error", err)
		os.Exit(1)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	// Create a context with timeout for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sim.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Simulator stopped successfully")
}
